package results

import (
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"uetp/internal/config"
	"uetp/internal/domain"

	"github.com/google/uuid"
)

// envPrefixes selects which environment variables are recorded on the
// report
var envPrefixes = []string{"UNREAL_", "TEST_", "CI_", "GITHUB_"}

// Collector gathers outcomes from concurrently running tests into one
// run report. AddResult is safe to call from multiple goroutines; the
// per-status counts always sum to the number of appended outcomes.
type Collector struct {
	mu      sync.Mutex
	report  domain.RunReport
	current *domain.SuiteResult
	counts  map[domain.Status]int
	total   int
}

// NewCollector creates a new Collector
func NewCollector() *Collector {
	return &Collector{counts: make(map[domain.Status]int)}
}

// StartRun opens the report and captures the environment snapshot
func (c *Collector) StartRun(cfg *config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hostname, _ := os.Hostname()
	c.report = domain.RunReport{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
		Environment: domain.Environment{
			OS:            runtime.GOOS,
			Arch:          runtime.GOARCH,
			GoVersion:     runtime.Version(),
			Hostname:      hostname,
			RunnerVersion: config.RunnerVersion,
			EnvVars:       captureEnv(),
		},
		Config: domain.ConfigSnapshot{
			Host:           cfg.Host,
			Port:           cfg.Port,
			ConnectTimeout: cfg.ConnectTimeout.String(),
			CommandTimeout: cfg.CommandTimeout.String(),
			UseMock:        cfg.UseMock,
			Parallel:       cfg.Parallel,
			MaxWorkers:     cfg.MaxWorkers,
			TestRoot:       cfg.TestRoot,
			OutputDir:      cfg.OutputDir,
		},
	}
}

// StartSuite opens a new suite on the report. Suites run one at a
// time, so the previous suite is always complete by now.
func (c *Collector) StartSuite(name string, category domain.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = &domain.SuiteResult{
		Name:      name,
		Category:  category,
		StartTime: time.Now(),
	}
}

// AddResult appends one outcome to the running suite
func (c *Collector) AddResult(outcome domain.TestOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		c.current = &domain.SuiteResult{Name: outcome.Suite, Category: outcome.Category, StartTime: time.Now()}
	}
	c.current.Outcomes = append(c.current.Outcomes, outcome)
	c.counts[outcome.Status]++
	c.total++
}

// CompleteSuite seals the running suite. Outcomes recorded by parallel
// workers are put back into declaration order.
func (c *Collector) CompleteSuite() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return
	}
	sort.SliceStable(c.current.Outcomes, func(i, j int) bool {
		return c.current.Outcomes[i].Seq < c.current.Outcomes[j].Seq
	})
	c.current.EndTime = time.Now()
	c.report.Suites = append(c.report.Suites, *c.current)
	c.current = nil
}

// CompleteRun stamps the end time and returns the finished report.
// Call after the last suite finished.
func (c *Collector) CompleteRun() *domain.RunReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.report.Suites = append(c.report.Suites, *c.current)
		c.current = nil
	}
	c.report.EndTime = time.Now()
	report := c.report
	return &report
}

// Progress reports the running totals for the progress bar
func (c *Collector) Progress() (completed, passed, failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bad := c.counts[domain.StatusFailed] + c.counts[domain.StatusError] + c.counts[domain.StatusTimeout]
	return c.total, c.counts[domain.StatusPassed], bad
}

// Counts returns a copy of the per-status counters
func (c *Collector) Counts() map[domain.Status]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := make(map[domain.Status]int, len(c.counts))
	for status, n := range c.counts {
		counts[status] = n
	}
	return counts
}

// Total reports how many outcomes have been recorded
func (c *Collector) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Report hands out the collected report. Call only after CompleteRun;
// the returned pointer shares no lock with the collector.
func (c *Collector) Report() *domain.RunReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	report := c.report
	return &report
}

// captureEnv records the environment variables relevant to a run
func captureEnv() map[string]string {
	vars := make(map[string]string)
	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		for _, prefix := range envPrefixes {
			if strings.HasPrefix(key, prefix) {
				vars[key] = value
				break
			}
		}
	}
	if len(vars) == 0 {
		return nil
	}
	return vars
}
