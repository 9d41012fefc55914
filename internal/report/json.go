package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"uetp/internal/domain"
)

// Meta contains the headline numbers of a test run
type Meta struct {
	RunID           string  `json:"run_id"`
	TotalTests      int     `json:"total_tests"`
	Passed          int     `json:"passed"`
	Failed          int     `json:"failed"`
	Errors          int     `json:"errors"`
	Timeouts        int     `json:"timeouts"`
	Skipped         int     `json:"skipped"`
	SuccessRate     float64 `json:"success_rate"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
	Timestamp       string  `json:"timestamp"`
}

// Document is the complete JSON structure written to disk. The fails
// viewer reads it back and rewrites it when failures get resolved.
type Document struct {
	Meta        Meta                  `json:"meta"`
	Environment domain.Environment    `json:"environment"`
	Config      domain.ConfigSnapshot `json:"config"`
	Suites      []domain.SuiteResult  `json:"suites"`
}

// Failures returns the document's failed, errored and timed-out
// outcomes in suite order
func (d *Document) Failures() []domain.TestOutcome {
	var failures []domain.TestOutcome
	for i := range d.Suites {
		for _, o := range d.Suites[i].Outcomes {
			if o.Bad() {
				failures = append(failures, o)
			}
		}
	}
	return failures
}

// BuildDocument derives the JSON document from a finished run
func BuildDocument(r *domain.RunReport) *Document {
	duration := r.Duration()
	return &Document{
		Meta: Meta{
			RunID:           r.RunID,
			TotalTests:      r.TotalTests(),
			Passed:          r.Passed(),
			Failed:          r.Failed(),
			Errors:          r.Errors(),
			Timeouts:        r.Timeouts(),
			Skipped:         r.Skipped(),
			SuccessRate:     r.SuccessRate(),
			Duration:        duration.Round(time.Millisecond).String(),
			DurationSeconds: duration.Seconds(),
			Workers:         r.Config.MaxWorkers,
			Timestamp:       r.StartTime.Format(time.RFC3339),
		},
		Environment: r.Environment,
		Config:      r.Config,
		Suites:      r.Suites,
	}
}

// WriteJSON renders the run as a JSON document at the given path
func WriteJSON(path string, r *domain.RunReport) error {
	return SaveDocument(path, BuildDocument(r))
}

// LoadDocument reads a previously written results file
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &doc, nil
}

// SaveDocument writes the document back (e.g. after resolving failures
// in the viewer)
func SaveDocument(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
