package domain

import (
	"context"
	"sort"
	"time"

	"uetp/internal/protocol"
)

// Category identifies which test tree a suite came from
type Category string

const (
	CategoryIntegration Category = "integration"
	CategoryUnit        Category = "unit"
	CategoryValidation  Category = "validation"
)

// Categories lists every known category in scheduling order.
// Integration suites run first because they mutate shared editor state.
var Categories = []Category{CategoryIntegration, CategoryUnit, CategoryValidation}

// Commander sends one command to the editor and returns the normalized
// reply. The transport connection satisfies it; tests substitute stubs.
type Commander interface {
	Send(command string, params map[string]any) protocol.Response
}

// RunFunc is the body of a test unit or a suite hook
type RunFunc func(ctx context.Context, conn Commander) error

// TestUnit is a single runnable test
type TestUnit struct {
	Name       string   // qualified name, module.test_name
	Module     string   // owning module file stem
	Category   Category // category of the owning suite
	Tags       []string
	SkipReason string // non-empty: recorded as skipped without running
	Seq        int    // discovery order within the suite
	Run        RunFunc
}

// TestSuite groups the units of one test module. Built once by
// discovery, consumed once by the scheduler.
type TestSuite struct {
	Name         string
	Category     Category
	Description  string
	Tags         []string
	Units        []TestUnit
	Setup        RunFunc // optional, runs before any unit
	Teardown     RunFunc // optional, runs after all units
	ParallelSafe bool
	Timeout      time.Duration
}

// CategoryIndex returns the category's position in scheduling order;
// unknown categories sort last
func CategoryIndex(c Category) int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return len(Categories)
}

// SortSuites orders suites the way the scheduler runs them: by
// category, then alphabetically
func SortSuites(suites []*TestSuite) {
	sort.Slice(suites, func(i, j int) bool {
		if suites[i].Category != suites[j].Category {
			return CategoryIndex(suites[i].Category) < CategoryIndex(suites[j].Category)
		}
		return suites[i].Name < suites[j].Name
	})
}
