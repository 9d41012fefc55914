package domain

import "time"

// Environment captures where a run executed
type Environment struct {
	OS            string            `json:"os"`
	Arch          string            `json:"arch"`
	GoVersion     string            `json:"go_version"`
	Hostname      string            `json:"hostname"`
	RunnerVersion string            `json:"runner_version"`
	EnvVars       map[string]string `json:"env_vars,omitempty"`
}

// ConfigSnapshot is the run configuration recorded on the report
type ConfigSnapshot struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	ConnectTimeout string `json:"connect_timeout"`
	CommandTimeout string `json:"command_timeout"`
	UseMock        bool   `json:"use_mock"`
	Parallel       bool   `json:"parallel"`
	MaxWorkers     int    `json:"max_workers"`
	TestRoot       string `json:"test_root"`
	OutputDir      string `json:"output_dir"`
}

// SuiteResult holds the outcomes of one completed suite
type SuiteResult struct {
	Name      string        `json:"name"`
	Category  Category      `json:"category"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Outcomes  []TestOutcome `json:"outcomes"`
}

// Duration is the suite's wall-clock time
func (s *SuiteResult) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// CountByStatus counts the suite's outcomes with the given status
func (s *SuiteResult) CountByStatus(status Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// RunReport aggregates every outcome of one run. Counters are derived
// from the stored outcomes on demand so they can never drift.
type RunReport struct {
	RunID       string         `json:"run_id"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	Environment Environment    `json:"environment"`
	Config      ConfigSnapshot `json:"config"`
	Suites      []SuiteResult  `json:"suites"`
}

// TotalTests counts every recorded outcome
func (r *RunReport) TotalTests() int {
	n := 0
	for i := range r.Suites {
		n += len(r.Suites[i].Outcomes)
	}
	return n
}

// CountByStatus counts outcomes with the given status across all suites
func (r *RunReport) CountByStatus(status Status) int {
	n := 0
	for i := range r.Suites {
		n += r.Suites[i].CountByStatus(status)
	}
	return n
}

func (r *RunReport) Passed() int   { return r.CountByStatus(StatusPassed) }
func (r *RunReport) Failed() int   { return r.CountByStatus(StatusFailed) }
func (r *RunReport) Errors() int   { return r.CountByStatus(StatusError) }
func (r *RunReport) Timeouts() int { return r.CountByStatus(StatusTimeout) }
func (r *RunReport) Skipped() int  { return r.CountByStatus(StatusSkipped) }

// SuccessRate is the percentage of recorded tests that passed
func (r *RunReport) SuccessRate() float64 {
	total := r.TotalTests()
	if total == 0 {
		return 0
	}
	return float64(r.Passed()) / float64(total) * 100
}

// Duration is the run's wall-clock time
func (r *RunReport) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Failures returns every failed, errored and timed-out outcome in
// reporting order
func (r *RunReport) Failures() []TestOutcome {
	var failures []TestOutcome
	for i := range r.Suites {
		for _, o := range r.Suites[i].Outcomes {
			if o.Bad() {
				failures = append(failures, o)
			}
		}
	}
	return failures
}

// Succeeded reports whether the run finished with nothing failed,
// errored or timed out
func (r *RunReport) Succeeded() bool {
	return len(r.Failures()) == 0
}
