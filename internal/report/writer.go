package report

import (
	"fmt"
	"os"
	"path/filepath"

	"uetp/internal/domain"

	log15 "gopkg.in/inconshreveable/log15.v2"
)

// Report artifact names, kept stable for CI pipelines that collect them
const (
	TextReportFile  = "test_report.txt"
	JSONReportFile  = "test_results.json"
	JUnitReportFile = "test_results.xml"
	HTMLReportFile  = "test_report.html"
)

// Writer renders every report format into one output directory
type Writer struct {
	dir string
}

// NewWriter creates a new Writer rooted at the output directory
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// JSONPath is where the machine-readable results land; the fails
// viewer reads this file back
func (w *Writer) JSONPath() string {
	return filepath.Join(w.dir, JSONReportFile)
}

// WriteAll renders the text, JSON, JUnit and HTML reports. Any write
// failure is fatal for the run.
func (w *Writer) WriteAll(r *domain.RunReport) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	text := RenderText(r)
	if err := os.WriteFile(filepath.Join(w.dir, TextReportFile), []byte(text), 0644); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}

	if err := WriteJSON(w.JSONPath(), r); err != nil {
		return err
	}

	junit, err := RenderJUnit(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(w.dir, JUnitReportFile), junit, 0644); err != nil {
		return fmt.Errorf("write junit report: %w", err)
	}

	html, err := RenderHTML(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(w.dir, HTMLReportFile), html, 0644); err != nil {
		return fmt.Errorf("write html report: %w", err)
	}

	log15.Debug("reports written", "dir", w.dir)
	return nil
}
