package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"uetp/internal/domain"
)

// htmlSuiteView precomputes per-suite numbers; templates cannot call
// the pointer-receiver counters on ranged values
type htmlSuiteView struct {
	Name     string
	Category domain.Category
	Duration string
	Passed   int
	Failed   int
	Errors   int
	Timeouts int
	Skipped  int
	Outcomes []domain.TestOutcome
}

type htmlData struct {
	Report *domain.RunReport
	Suites []htmlSuiteView
}

var htmlTemplate = template.Must(template.New("report").Parse(htmlPage))

// RenderHTML produces the standalone HTML report written to
// test_report.html
func RenderHTML(r *domain.RunReport) ([]byte, error) {
	data := htmlData{Report: r}
	for i := range r.Suites {
		s := &r.Suites[i]
		data.Suites = append(data.Suites, htmlSuiteView{
			Name:     s.Name,
			Category: s.Category,
			Duration: s.Duration().Round(time.Millisecond).String(),
			Passed:   s.CountByStatus(domain.StatusPassed),
			Failed:   s.CountByStatus(domain.StatusFailed),
			Errors:   s.CountByStatus(domain.StatusError),
			Timeouts: s.CountByStatus(domain.StatusTimeout),
			Skipped:  s.CountByStatus(domain.StatusSkipped),
			Outcomes: s.Outcomes,
		})
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render html report: %w", err)
	}
	return buf.Bytes(), nil
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Unreal Editor Test Report</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem; color: #1d2129; }
  h1 { margin-bottom: 0.25rem; }
  .meta { color: #65676b; margin-bottom: 1.5rem; }
  .cards { display: flex; gap: 0.75rem; flex-wrap: wrap; margin-bottom: 2rem; }
  .card { border: 1px solid #d4d6d9; border-radius: 6px; padding: 0.75rem 1.25rem; min-width: 90px; text-align: center; }
  .card .num { font-size: 1.6rem; font-weight: 600; display: block; }
  .card.passed .num { color: #1a7f37; }
  .card.failed .num, .card.error .num, .card.timeout .num { color: #cf222e; }
  .card.skipped .num { color: #9a6700; }
  table { border-collapse: collapse; width: 100%; margin-bottom: 2rem; }
  th, td { border: 1px solid #d4d6d9; padding: 0.4rem 0.6rem; text-align: left; font-size: 0.9rem; }
  th { background: #f6f8fa; }
  .badge { padding: 0.1rem 0.5rem; border-radius: 10px; font-size: 0.8rem; color: #fff; }
  .badge.passed { background: #1a7f37; }
  .badge.failed { background: #cf222e; }
  .badge.error { background: #a40e26; }
  .badge.timeout { background: #bc4c00; }
  .badge.skipped { background: #9a6700; }
  .detail { color: #65676b; font-size: 0.85rem; }
  h2 small { color: #65676b; font-weight: normal; font-size: 0.8rem; }
</style>
</head>
<body>
<h1>Unreal Editor Test Report</h1>
<p class="meta">
  Run {{.Report.RunID}} &middot; {{.Report.StartTime.Format "2006-01-02 15:04:05"}} &middot;
  {{.Report.Config.Host}}:{{.Report.Config.Port}}{{if .Report.Config.UseMock}} (mock){{end}} &middot;
  runner {{.Report.Environment.RunnerVersion}} on {{.Report.Environment.OS}}/{{.Report.Environment.Arch}}
</p>

<div class="cards">
  <div class="card"><span class="num">{{.Report.TotalTests}}</span>total</div>
  <div class="card passed"><span class="num">{{.Report.Passed}}</span>passed</div>
  <div class="card failed"><span class="num">{{.Report.Failed}}</span>failed</div>
  <div class="card error"><span class="num">{{.Report.Errors}}</span>errors</div>
  <div class="card timeout"><span class="num">{{.Report.Timeouts}}</span>timeouts</div>
  <div class="card skipped"><span class="num">{{.Report.Skipped}}</span>skipped</div>
  <div class="card"><span class="num">{{printf "%.1f%%" .Report.SuccessRate}}</span>success</div>
</div>

{{range .Suites}}
<h2>{{.Name}} <small>{{.Category}} &middot; {{.Duration}} &middot; {{.Passed}} passed, {{.Failed}} failed, {{.Errors}} errors, {{.Timeouts}} timeouts, {{.Skipped}} skipped</small></h2>
<table>
  <tr><th>Test</th><th>Status</th><th>Duration</th><th>Detail</th></tr>
  {{range .Outcomes}}
  <tr>
    <td>{{.Name}}</td>
    <td><span class="badge {{.Status}}">{{.Status}}</span></td>
    <td>{{.Duration}}</td>
    <td class="detail">{{if .Error}}{{.Error}}{{else if .SkipReason}}{{.SkipReason}}{{end}}</td>
  </tr>
  {{end}}
</table>
{{end}}
</body>
</html>
`
