package execution

import (
	"context"
	"fmt"
	"sync/atomic"

	"uetp/internal/config"
	"uetp/internal/domain"
	"uetp/internal/results"

	"golang.org/x/sync/errgroup"
	log15 "gopkg.in/inconshreveable/log15.v2"
)

// Progress receives completion updates as outcomes are recorded
type Progress interface {
	Update(completed, passed, failed int)
	Finish()
}

// Scheduler drives suites through setup, execution and teardown.
// Suites run strictly one after another; units inside a parallel-safe
// suite may run concurrently.
type Scheduler struct {
	config    *config.Config
	runner    *Runner
	collector *results.Collector
	progress  Progress
	aborted   atomic.Bool
}

// NewScheduler creates a new Scheduler
func NewScheduler(cfg *config.Config, runner *Runner, collector *results.Collector) *Scheduler {
	return &Scheduler{config: cfg, runner: runner, collector: collector}
}

// SetProgress sets the progress sink for the run
func (s *Scheduler) SetProgress(progress Progress) {
	s.progress = progress
}

// Run executes every suite in deterministic order: integration first,
// then unit, then validation, alphabetical within a category
func (s *Scheduler) Run(ctx context.Context, suites map[string]*domain.TestSuite) {
	for _, suite := range sortSuites(suites) {
		s.runSuite(ctx, suite)
	}
	if s.progress != nil {
		s.progress.Finish()
	}
}

func sortSuites(suites map[string]*domain.TestSuite) []*domain.TestSuite {
	ordered := make([]*domain.TestSuite, 0, len(suites))
	for _, suite := range suites {
		ordered = append(ordered, suite)
	}
	domain.SortSuites(ordered)
	return ordered
}

func (s *Scheduler) runSuite(ctx context.Context, suite *domain.TestSuite) {
	s.collector.StartSuite(suite.Name, suite.Category)
	defer s.collector.CompleteSuite()

	if s.aborted.Load() || ctx.Err() != nil {
		s.skipAll(ctx, suite)
		return
	}

	log15.Debug("suite starting", "suite", suite.Name, "category", suite.Category, "units", len(suite.Units))

	if err := s.runner.RunHook(ctx, suite, suite.Setup); err != nil {
		log15.Error("suite setup failed", "suite", suite.Name, "err", err)
		// No teardown after a failed setup; nothing was set up.
		reason := fmt.Sprintf("suite setup failed: %v", err)
		for _, unit := range suite.Units {
			s.record(s.runner.SkipUnit(suite, unit, reason))
		}
		return
	}

	if s.parallelEligible(suite) {
		s.runParallel(ctx, suite)
	} else {
		s.runSequential(ctx, suite)
	}

	if err := s.runner.RunHook(ctx, suite, suite.Teardown); err != nil {
		log15.Error("suite teardown failed", "suite", suite.Name, "err", err)
	}
}

func (s *Scheduler) runSequential(ctx context.Context, suite *domain.TestSuite) {
	for _, unit := range suite.Units {
		if s.aborted.Load() || ctx.Err() != nil {
			s.record(s.runner.SkipUnit(suite, unit, abortReason(ctx)))
			continue
		}
		s.record(s.runner.RunUnit(ctx, suite, unit))
	}
}

func (s *Scheduler) runParallel(ctx context.Context, suite *domain.TestSuite) {
	g := new(errgroup.Group)
	g.SetLimit(s.workerCount(len(suite.Units)))

	for _, unit := range suite.Units {
		unit := unit
		g.Go(func() error {
			if s.aborted.Load() || ctx.Err() != nil {
				s.record(s.runner.SkipUnit(suite, unit, abortReason(ctx)))
				return nil
			}
			s.record(s.runner.RunUnit(ctx, suite, unit))
			return nil
		})
	}
	g.Wait()
}

// skipAll marks every unit of a suite skipped without running hooks
func (s *Scheduler) skipAll(ctx context.Context, suite *domain.TestSuite) {
	reason := abortReason(ctx)
	for _, unit := range suite.Units {
		s.record(s.runner.SkipUnit(suite, unit, reason))
	}
}

func abortReason(ctx context.Context) string {
	if ctx.Err() != nil {
		return "run cancelled"
	}
	return "fail-fast: earlier test failed"
}

func (s *Scheduler) parallelEligible(suite *domain.TestSuite) bool {
	return s.config.Parallel && suite.ParallelSafe && len(suite.Units) > 1
}

func (s *Scheduler) workerCount(units int) int {
	workers := s.config.MaxWorkers
	if workers <= 0 {
		workers = 1
	}
	if units < workers {
		workers = units
	}
	return workers
}

func (s *Scheduler) record(outcome domain.TestOutcome) {
	s.collector.AddResult(outcome)
	if outcome.Bad() && s.config.FailFast {
		s.aborted.Store(true)
	}
	if s.progress != nil {
		s.progress.Update(s.collector.Progress())
	}
}
