package domain

// Status classifies one test outcome
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
	StatusTimeout Status = "timeout"
	StatusSkipped Status = "skipped"
)

// Statuses lists every outcome status in reporting order
var Statuses = []Status{StatusPassed, StatusFailed, StatusError, StatusTimeout, StatusSkipped}

// TestOutcome is the immutable record of one executed or skipped test.
// The result collector owns every outcome after AddResult.
type TestOutcome struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Suite           string   `json:"suite"`
	Category        Category `json:"category"`
	Status          Status   `json:"status"`
	Duration        string   `json:"duration"`
	DurationSeconds float64  `json:"duration_seconds"`
	Error           string   `json:"error,omitempty"`
	SkipReason      string   `json:"skip_reason,omitempty"`
	RetryCount      int      `json:"retry_count"`
	Resolved        bool     `json:"resolved,omitempty"` // set by the fails viewer, never during a run
	Seq             int      `json:"-"`
}

// Bad reports whether the outcome should fail the run
func (o TestOutcome) Bad() bool {
	return o.Status == StatusFailed || o.Status == StatusError || o.Status == StatusTimeout
}
