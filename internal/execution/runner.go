package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"uetp/internal/config"
	"uetp/internal/domain"
	"uetp/internal/transport"

	"github.com/google/uuid"
)

// Runner executes a single test unit against the editor
type Runner struct {
	config *config.Config
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{config: cfg}
}

// RunUnit executes one test unit on a fresh connection and classifies
// the result. The context carries run-level cancellation; the suite
// timeout bounds the unit on top of it.
func (r *Runner) RunUnit(ctx context.Context, suite *domain.TestSuite, unit domain.TestUnit) domain.TestOutcome {
	outcome := domain.TestOutcome{
		ID:       uuid.NewString(),
		Name:     unit.Name,
		Suite:    suite.Name,
		Category: suite.Category,
		Seq:      unit.Seq,
		Duration: "0s",
	}

	if unit.SkipReason != "" {
		outcome.Status = domain.StatusSkipped
		outcome.SkipReason = unit.SkipReason
		return outcome
	}

	start := time.Now()
	conn := r.connect()
	defer conn.Disconnect()

	if err := conn.Connect(); err != nil {
		outcome.Status = domain.StatusError
		outcome.Error = err.Error()
		r.stamp(&outcome, start, conn.Retries())
		return outcome
	}

	runCtx, cancel := context.WithTimeout(ctx, suite.Timeout)
	defer cancel()

	err := r.invoke(runCtx, conn, unit.Run)
	r.stamp(&outcome, start, conn.Retries())

	var assertion *domain.AssertionError
	switch {
	case err == nil:
		outcome.Status = domain.StatusPassed
	case errors.Is(err, context.DeadlineExceeded):
		outcome.Status = domain.StatusTimeout
		outcome.Error = fmt.Sprintf("test timed out after %s", suite.Timeout)
	case errors.As(err, &assertion):
		outcome.Status = domain.StatusFailed
		outcome.Error = err.Error()
	default:
		outcome.Status = domain.StatusError
		outcome.Error = err.Error()
	}
	return outcome
}

// RunHook executes a suite setup or teardown function on its own
// connection, bounded by the suite timeout
func (r *Runner) RunHook(ctx context.Context, suite *domain.TestSuite, hook domain.RunFunc) error {
	if hook == nil {
		return nil
	}
	conn := r.connect()
	defer conn.Disconnect()

	if err := conn.Connect(); err != nil {
		return err
	}
	hookCtx, cancel := context.WithTimeout(ctx, suite.Timeout)
	defer cancel()
	return r.invoke(hookCtx, conn, hook)
}

// SkipUnit produces a skipped outcome without touching the editor
func (r *Runner) SkipUnit(suite *domain.TestSuite, unit domain.TestUnit, reason string) domain.TestOutcome {
	return domain.TestOutcome{
		ID:         uuid.NewString(),
		Name:       unit.Name,
		Suite:      suite.Name,
		Category:   suite.Category,
		Status:     domain.StatusSkipped,
		SkipReason: reason,
		Duration:   "0s",
		Seq:        unit.Seq,
	}
}

// invoke runs the test body in its own goroutine so a stalled socket
// cannot wedge the scheduler. On timeout the connection is torn down
// to unblock the pending read; the goroutine exits on its own once the
// socket errors out.
func (r *Runner) invoke(ctx context.Context, conn *transport.Connection, run domain.RunFunc) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- fmt.Errorf("test panicked: %v", rec)
			}
		}()
		done <- run(ctx, conn)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		conn.Disconnect()
		return ctx.Err()
	}
}

func (r *Runner) connect() *transport.Connection {
	return transport.New(transport.Config{
		Host:           r.config.Host,
		Port:           r.config.Port,
		ConnectTimeout: r.config.ConnectTimeout,
		CommandTimeout: r.config.CommandTimeout,
		RetryOnFailure: r.config.RetryOnFailure,
		MaxRetries:     r.config.MaxRetries,
		RetryDelay:     r.config.RetryDelay,
	})
}

func (r *Runner) stamp(outcome *domain.TestOutcome, start time.Time, retries int) {
	elapsed := time.Since(start)
	outcome.Duration = elapsed.Round(time.Millisecond).String()
	outcome.DurationSeconds = elapsed.Seconds()
	outcome.RetryCount = retries
}
