package report

import (
	"fmt"
	"strings"
	"time"

	"uetp/internal/domain"

	"github.com/jedib0t/go-pretty/v6/table"
)

const headerBar = "================================================================================"

// RenderText produces the plain text report written to test_report.txt
func RenderText(r *domain.RunReport) string {
	var b strings.Builder

	b.WriteString(headerBar + "\n")
	b.WriteString("UNREAL EDITOR TEST REPORT\n")
	b.WriteString(headerBar + "\n\n")

	fmt.Fprintf(&b, "Run ID:   %s\n", r.RunID)
	fmt.Fprintf(&b, "Started:  %s\n", r.StartTime.Format(time.RFC3339))
	fmt.Fprintf(&b, "Duration: %s\n", r.Duration().Round(time.Millisecond))
	fmt.Fprintf(&b, "Target:   %s:%d", r.Config.Host, r.Config.Port)
	if r.Config.UseMock {
		b.WriteString(" (mock)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Runner:   %s on %s/%s\n\n", r.Environment.RunnerVersion, r.Environment.OS, r.Environment.Arch)

	b.WriteString("SUMMARY\n")
	fmt.Fprintf(&b, "  Total: %d  Passed: %d  Failed: %d  Errors: %d  Timeouts: %d  Skipped: %d\n",
		r.TotalTests(), r.Passed(), r.Failed(), r.Errors(), r.Timeouts(), r.Skipped())
	fmt.Fprintf(&b, "  Success rate: %.1f%%\n\n", r.SuccessRate())

	if len(r.Suites) > 0 {
		b.WriteString(suitesTable(r))
		b.WriteString("\n")
	}

	if failures := r.Failures(); len(failures) > 0 {
		b.WriteString("FAILED TESTS\n")
		for _, o := range failures {
			fmt.Fprintf(&b, "  [%s] %s (%s)\n", strings.ToUpper(string(o.Status)), o.Name, o.Duration)
			fmt.Fprintf(&b, "      %s\n", o.Error)
		}
		b.WriteString("\n")
	}

	b.WriteString(headerBar + "\n")
	return b.String()
}

// suitesTable renders the per-suite counters
func suitesTable(r *domain.RunReport) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Suite", "Category", "Tests", "Passed", "Failed", "Errors", "Timeouts", "Skipped", "Duration"})
	for i := range r.Suites {
		s := &r.Suites[i]
		t.AppendRow(table.Row{
			s.Name,
			s.Category,
			len(s.Outcomes),
			s.CountByStatus(domain.StatusPassed),
			s.CountByStatus(domain.StatusFailed),
			s.CountByStatus(domain.StatusError),
			s.CountByStatus(domain.StatusTimeout),
			s.CountByStatus(domain.StatusSkipped),
			s.Duration().Round(time.Millisecond).String(),
		})
	}
	return t.Render() + "\n"
}
