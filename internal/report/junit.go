package report

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"uetp/internal/domain"
)

// JUnit schema subset understood by CI systems. Timeouts map to
// <error type="timeout"> since JUnit has no timeout class of its own.

type junitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Errors   int              `xml:"errors,attr"`
	Skipped  int              `xml:"skipped,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      string          `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr"`
	Cases     []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFault   `xml:"failure,omitempty"`
	Error     *junitFault   `xml:"error,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
}

type junitFault struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

type junitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// RenderJUnit produces the JUnit XML report written to test_results.xml
func RenderJUnit(r *domain.RunReport) ([]byte, error) {
	doc := junitTestSuites{
		Name:     "uetp",
		Tests:    r.TotalTests(),
		Failures: r.Failed(),
		Errors:   r.Errors() + r.Timeouts(),
		Skipped:  r.Skipped(),
		Time:     junitSeconds(r.Duration().Seconds()),
	}

	for i := range r.Suites {
		s := &r.Suites[i]
		suite := junitTestSuite{
			Name:      s.Name,
			Tests:     len(s.Outcomes),
			Failures:  s.CountByStatus(domain.StatusFailed),
			Errors:    s.CountByStatus(domain.StatusError) + s.CountByStatus(domain.StatusTimeout),
			Skipped:   s.CountByStatus(domain.StatusSkipped),
			Time:      junitSeconds(s.Duration().Seconds()),
			Timestamp: s.StartTime.Format(time.RFC3339),
		}
		for _, o := range s.Outcomes {
			suite.Cases = append(suite.Cases, junitCase(s, o))
		}
		doc.Suites = append(doc.Suites, suite)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal junit report: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}

func junitCase(s *domain.SuiteResult, o domain.TestOutcome) junitTestCase {
	c := junitTestCase{
		Name:      o.Name,
		Classname: fmt.Sprintf("%s.%s", s.Category, s.Name),
		Time:      junitSeconds(o.DurationSeconds),
	}
	switch o.Status {
	case domain.StatusFailed:
		c.Failure = &junitFault{Message: o.Error, Type: "assertion"}
	case domain.StatusError:
		c.Error = &junitFault{Message: o.Error, Type: "error"}
	case domain.StatusTimeout:
		c.Error = &junitFault{Message: o.Error, Type: "timeout"}
	case domain.StatusSkipped:
		c.Skipped = &junitSkipped{Message: o.SkipReason}
	}
	return c
}

func junitSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
