package discovery

import (
	"testing"

	"uetp/internal/domain"

	"github.com/stretchr/testify/assert"
)

func sampleSuite() *domain.TestSuite {
	return &domain.TestSuite{
		Name:     "test_actor",
		Category: domain.CategoryUnit,
		Tags:     []string{"editor"},
		Units: []domain.TestUnit{
			{Name: "test_actor.test_spawn", Module: "test_actor", Tags: []string{"smoke"}},
			{Name: "test_actor.test_delete", Module: "test_actor"},
			{Name: "test_actor.test_listing", Module: "test_actor", Tags: []string{"slow"}},
		},
	}
}

func unitNames(suite *domain.TestSuite) []string {
	var names []string
	for _, u := range suite.Units {
		names = append(names, u.Name)
	}
	return names
}

func TestFilterCategoryAllowed(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		category domain.Category
		want     bool
	}{
		{"no flags allows integration", Filter{}, domain.CategoryIntegration, true},
		{"no flags allows unit", Filter{}, domain.CategoryUnit, true},
		{"unit only allows unit", Filter{UnitOnly: true}, domain.CategoryUnit, true},
		{"unit only blocks integration", Filter{UnitOnly: true}, domain.CategoryIntegration, false},
		{"integration only blocks validation", Filter{IntegrationOnly: true}, domain.CategoryValidation, false},
		{"validation only allows validation", Filter{ValidationOnly: true}, domain.CategoryValidation, true},
		{"two flags allow both", Filter{UnitOnly: true, ValidationOnly: true}, domain.CategoryValidation, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.CategoryAllowed(tt.category))
		})
	}
}

func TestFilterPruneUnits(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name:   "empty filter keeps everything",
			filter: Filter{},
			want:   []string{"test_actor.test_spawn", "test_actor.test_delete", "test_actor.test_listing"},
		},
		{
			name:   "module allow list",
			filter: Filter{Modules: []string{"test_actor"}},
			want:   []string{"test_actor.test_spawn", "test_actor.test_delete", "test_actor.test_listing"},
		},
		{
			name:   "module allow list misses",
			filter: Filter{Modules: []string{"test_blueprint"}},
			want:   nil,
		},
		{
			name:   "module exclusion beats inclusion",
			filter: Filter{Modules: []string{"test_actor"}, ExcludeModules: []string{"test_actor"}},
			want:   nil,
		},
		{
			name:   "pattern with wildcard",
			filter: Filter{Patterns: []string{"*spawn*"}},
			want:   []string{"test_actor.test_spawn"},
		},
		{
			name:   "pattern plain substring",
			filter: Filter{Patterns: []string{"delete"}},
			want:   []string{"test_actor.test_delete"},
		},
		{
			name:   "exclude pattern",
			filter: Filter{ExcludePatterns: []string{"*listing*"}},
			want:   []string{"test_actor.test_spawn", "test_actor.test_delete"},
		},
		{
			name:   "unit tag match",
			filter: Filter{Tags: []string{"smoke"}},
			want:   []string{"test_actor.test_spawn"},
		},
		{
			name:   "suite tag applies to every unit",
			filter: Filter{Tags: []string{"editor"}},
			want:   []string{"test_actor.test_spawn", "test_actor.test_delete", "test_actor.test_listing"},
		},
		{
			name:   "exclude tag",
			filter: Filter{ExcludeTags: []string{"slow"}},
			want:   []string{"test_actor.test_spawn", "test_actor.test_delete"},
		},
		{
			name:   "exclude suite tag drops everything",
			filter: Filter{ExcludeTags: []string{"editor"}},
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suite := sampleSuite()
			tt.filter.PruneUnits(suite)
			assert.Equal(t, tt.want, unitNames(suite))
		})
	}
}

func TestMatchName(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"test_actor.test_spawn", "test_actor.test_spawn", true},
		{"test_spawn", "test_actor.test_spawn", true}, // substring without wildcards
		{"*spawn*", "test_actor.test_spawn", true},
		{"*actor*spawn*", "test_actor.test_spawn", true},
		{"test_blueprint*", "test_actor.test_spawn", false},
		{"*missing*", "test_actor.test_spawn", false},
		{"test_?ctor", "test_actor", true},
		{"test_?zzz", "test_actor", false}, // ? disables the substring fallback
		{"test_?ctor*", "test_actor.test_spawn", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchName(tt.pattern, tt.name), "pattern %q against %q", tt.pattern, tt.name)
	}
}
