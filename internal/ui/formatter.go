package ui

import (
	"fmt"
	"time"

	"uetp/internal/domain"

	"github.com/fatih/color"
)

// Formatter prints run summaries and suite listings to the terminal
type Formatter struct{}

// NewFormatter creates a new Formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// PrintSummary displays the run statistics after a run
func (f *Formatter) PrintSummary(r *domain.RunReport) {
	fmt.Print("\n")
	color.Cyan("╔═══════════════════════════════════════════════════════════════╗")
	color.Cyan("║                     Test Run Statistics                       ║")
	color.Cyan("╚═══════════════════════════════════════════════════════════════╝\n")

	fmt.Println("┌─────────────────────────────────┬─────────────────────────────┐")

	fmt.Printf("│ %-31s │ ", "Total Tests")
	color.White("%-27d │\n", r.TotalTests())
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Passed")
	color.Green("%-27d │\n", r.Passed())
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Failed")
	color.Red("%-27d │\n", r.Failed())
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Errors")
	color.Red("%-27d │\n", r.Errors())
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Timeouts")
	color.Red("%-27d │\n", r.Timeouts())
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Skipped")
	color.Yellow("%-27d │\n", r.Skipped())
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Success Rate")
	rateStr := fmt.Sprintf("%.1f%%", r.SuccessRate())
	color.White("%-27s │\n", rateStr)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Duration")
	durationStr := r.Duration().Round(time.Millisecond).String()
	color.White("%-27s │\n", durationStr)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Target")
	target := fmt.Sprintf("%s:%d", r.Config.Host, r.Config.Port)
	if r.Config.UseMock {
		target += " (mock)"
	}
	color.White("%-27s │\n", target)

	fmt.Println("└─────────────────────────────────┴─────────────────────────────┘")

	fmt.Println()
	if r.Succeeded() {
		color.Green("✓ All tests passed!")
	} else {
		color.Red("✗ %d test(s) did not pass", len(r.Failures()))
		fmt.Println()
		f.printFailuresTree(r)
	}
}

// printFailuresTree groups the bad outcomes under their suites
func (f *Formatter) printFailuresTree(r *domain.RunReport) {
	for i := range r.Suites {
		suite := &r.Suites[i]
		var bad []domain.TestOutcome
		for _, o := range suite.Outcomes {
			if o.Bad() {
				bad = append(bad, o)
			}
		}
		if len(bad) == 0 {
			continue
		}

		color.Cyan("%s (%s)", suite.Name, suite.Category)
		for j, o := range bad {
			connector := "├──"
			if j == len(bad)-1 {
				connector = "└──"
			}
			color.Red("%s %s [%s]", connector, o.Name, o.Status)
			if o.Error != "" {
				prefix := "│   "
				if j == len(bad)-1 {
					prefix = "    "
				}
				fmt.Printf("%s%s\n", prefix, o.Error)
			}
		}
	}
}

// PrintSuiteList displays the discovered suites as a tree, optionally
// with their units
func (f *Formatter) PrintSuiteList(suites map[string]*domain.TestSuite, showUnits bool) {
	ordered := make([]*domain.TestSuite, 0, len(suites))
	total := 0
	for _, suite := range suites {
		ordered = append(ordered, suite)
		total += len(suite.Units)
	}
	domain.SortSuites(ordered)

	color.Green("Found %d suite(s) with %d test(s):\n", len(ordered), total)

	for i, suite := range ordered {
		isLastSuite := i == len(ordered)-1

		label := fmt.Sprintf("%s (%s, %d tests", suite.Name, suite.Category, len(suite.Units))
		if suite.ParallelSafe {
			label += ", parallel-safe"
		}
		label += ")"

		if isLastSuite {
			color.Cyan("└── %s", label)
		} else {
			color.Cyan("├── %s", label)
		}

		if !showUnits {
			continue
		}

		for j, unit := range suite.Units {
			isLastUnit := j == len(suite.Units)-1

			var prefix string
			if isLastSuite {
				if isLastUnit {
					prefix = "    └── "
				} else {
					prefix = "    ├── "
				}
			} else {
				if isLastUnit {
					prefix = "│   └── "
				} else {
					prefix = "│   ├── "
				}
			}

			display := color.YellowString(unit.Name)
			if unit.SkipReason != "" {
				display += fmt.Sprintf(" [skip: %s]", unit.SkipReason)
			}
			fmt.Printf("%s%s\n", prefix, display)
		}

		if showUnits && i < len(ordered)-1 {
			fmt.Println()
		}
	}
}
