package discovery

import (
	"path/filepath"
	"strings"

	"uetp/internal/domain"
)

// Filter narrows discovered suites and the units inside them. Category
// flags prune whole suites first, then the module and pattern lists
// apply to individual units. Exclusion always beats inclusion.
type Filter struct {
	IntegrationOnly bool
	UnitOnly        bool
	ValidationOnly  bool

	Modules         []string
	ExcludeModules  []string
	Patterns        []string
	ExcludePatterns []string
	Tags            []string
	ExcludeTags     []string
}

// CategoryAllowed reports whether suites of the given category survive
// the category-exclusive flags. With no flag set every category runs.
func (f *Filter) CategoryAllowed(c domain.Category) bool {
	if !f.IntegrationOnly && !f.UnitOnly && !f.ValidationOnly {
		return true
	}
	switch c {
	case domain.CategoryIntegration:
		return f.IntegrationOnly
	case domain.CategoryUnit:
		return f.UnitOnly
	case domain.CategoryValidation:
		return f.ValidationOnly
	}
	return false
}

// PruneUnits drops the suite's units that do not pass the module,
// pattern and tag criteria
func (f *Filter) PruneUnits(suite *domain.TestSuite) {
	var kept []domain.TestUnit
	for _, unit := range suite.Units {
		if f.unitAllowed(suite, unit) {
			kept = append(kept, unit)
		}
	}
	suite.Units = kept
}

func (f *Filter) unitAllowed(suite *domain.TestSuite, unit domain.TestUnit) bool {
	if len(f.Modules) > 0 && !matchAny(f.Modules, unit.Module) {
		return false
	}
	if matchAny(f.ExcludeModules, unit.Module) {
		return false
	}
	if len(f.Patterns) > 0 && !matchAny(f.Patterns, unit.Name) {
		return false
	}
	if matchAny(f.ExcludePatterns, unit.Name) {
		return false
	}

	tags := append(append([]string{}, unit.Tags...), suite.Tags...)
	if len(f.Tags) > 0 && !anyTag(f.Tags, tags) {
		return false
	}
	if anyTag(f.ExcludeTags, tags) {
		return false
	}
	return true
}

// matchAny reports whether the name matches at least one pattern
func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if matchName(pattern, name) {
			return true
		}
	}
	return false
}

// matchName matches a name against a pattern using wildcard matching.
// Supports patterns like "test_spawn*" or "*actor*".
func matchName(pattern, name string) bool {
	// Try to match using filepath.Match (supports * and ? wildcards)
	matched, err := filepath.Match(pattern, name)
	if err == nil && matched {
		return true
	}

	// If the pattern contains wildcards but filepath.Match didn't match,
	// try a more flexible substring match for patterns like "*actor*"
	if strings.Contains(pattern, "*") {
		parts := strings.Split(pattern, "*")
		hasNonEmptyPart := false
		for _, part := range parts {
			if part == "" {
				continue
			}
			hasNonEmptyPart = true
			if !strings.Contains(name, part) {
				return false
			}
		}
		return hasNonEmptyPart
	}

	// If no wildcards, do a simple contains check
	if !strings.Contains(pattern, "?") {
		return strings.Contains(name, pattern)
	}
	return false
}

// anyTag reports whether any wanted tag appears in the tag set
func anyTag(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}
