package discovery

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"uetp/internal/domain"
	"uetp/internal/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefaults() map[domain.Category]Defaults {
	return map[domain.Category]Defaults{
		domain.CategoryIntegration: {ParallelSafe: false, Timeout: 300 * time.Second},
		domain.CategoryUnit:        {ParallelSafe: true, Timeout: 60 * time.Second},
		domain.CategoryValidation:  {ParallelSafe: true, Timeout: 120 * time.Second},
	}
}

func writeModule(t *testing.T, name, content string, category domain.Category) ModuleFile {
	t.Helper()
	path := writeTestFile(t, t.TempDir(), name, content)
	return ModuleFile{Path: path, Category: category}
}

// fakeCommander replays canned responses and records the commands it saw
type fakeCommander struct {
	responses map[string]protocol.Response
	calls     []string
}

func (f *fakeCommander) Send(command string, params map[string]any) protocol.Response {
	f.calls = append(f.calls, command)
	if resp, ok := f.responses[command]; ok {
		return resp
	}
	return protocol.Response{OK: true, Result: "ok"}
}

func TestParserParse(t *testing.T) {
	content := `
description: Actor lifecycle checks
parallel_safe: true
timeout: 45s
tags: [actors]
setup:
  - command: spawn_actor
    params: {name: probe}
teardown:
  - command: delete_actor
    params: {name: probe}
tests:
  - name: test_spawn
    tags: [smoke]
    steps:
      - command: spawn_actor
        params: {name: cube1, type: StaticMeshActor}
  - name: test_listing
    skip: flaky on CI
  - name: helper_entry
    steps:
      - command: noop
`
	file := writeModule(t, "integration/test_actor.yaml", content, domain.CategoryIntegration)
	parser := NewParser(testDefaults())

	suite, err := parser.Parse(file)
	require.NoError(t, err)

	assert.Equal(t, "test_actor", suite.Name)
	assert.Equal(t, domain.CategoryIntegration, suite.Category)
	assert.Equal(t, "Actor lifecycle checks", suite.Description)
	assert.Equal(t, []string{"actors"}, suite.Tags)
	assert.True(t, suite.ParallelSafe, "module override should beat the category default")
	assert.Equal(t, 45*time.Second, suite.Timeout)
	assert.NotNil(t, suite.Setup)
	assert.NotNil(t, suite.Teardown)

	// helper_entry has no test_ prefix and is dropped
	require.Len(t, suite.Units, 2)
	assert.Equal(t, "test_actor.test_spawn", suite.Units[0].Name)
	assert.Equal(t, "test_actor", suite.Units[0].Module)
	assert.Equal(t, []string{"smoke"}, suite.Units[0].Tags)
	assert.Equal(t, "test_actor.test_listing", suite.Units[1].Name)
	assert.Equal(t, "flaky on CI", suite.Units[1].SkipReason)
	assert.Nil(t, suite.Units[1].Run)
}

func TestParserParseCategoryDefaults(t *testing.T) {
	content := `
tests:
  - name: test_minimal
    steps:
      - command: ping
`
	file := writeModule(t, "unit/test_minimal.yaml", content, domain.CategoryUnit)
	parser := NewParser(testDefaults())

	suite, err := parser.Parse(file)
	require.NoError(t, err)
	assert.True(t, suite.ParallelSafe)
	assert.Equal(t, 60*time.Second, suite.Timeout)
	assert.Nil(t, suite.Setup)
	assert.Nil(t, suite.Teardown)
}

func TestParserParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no tests",
			content: "description: empty\n",
			wantErr: "no tests",
		},
		{
			name:    "malformed yaml",
			content: "tests: [unclosed",
			wantErr: "parse module",
		},
		{
			name: "duplicate test name",
			content: `
tests:
  - name: test_a
    steps: [{command: ping}]
  - name: test_a
    steps: [{command: ping}]
`,
			wantErr: "duplicate test name",
		},
		{
			name: "test without steps or skip",
			content: `
tests:
  - name: test_empty
`,
			wantErr: "has no steps",
		},
		{
			name: "nothing follows naming convention",
			content: `
tests:
  - name: check_stuff
    steps: [{command: ping}]
`,
			wantErr: "naming convention",
		},
		{
			name: "bad timeout",
			content: `
timeout: soon
tests:
  - name: test_a
    steps: [{command: ping}]
`,
			wantErr: "invalid timeout",
		},
	}

	parser := NewParser(testDefaults())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := writeModule(t, "unit/test_bad.yaml", tt.content, domain.CategoryUnit)
			_, err := parser.Parse(file)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCompiledStepsRunInOrder(t *testing.T) {
	content := `
tests:
  - name: test_sequence
    steps:
      - command: spawn_actor
        params: {name: cube1}
      - command: get_actors_in_level
      - command: delete_actor
        params: {name: cube1}
`
	file := writeModule(t, "unit/test_seq.yaml", content, domain.CategoryUnit)
	suite, err := NewParser(testDefaults()).Parse(file)
	require.NoError(t, err)

	conn := &fakeCommander{}
	require.NoError(t, suite.Units[0].Run(context.Background(), conn))
	assert.Equal(t, []string{"spawn_actor", "get_actors_in_level", "delete_actor"}, conn.calls)
}

func TestCompiledStepsCheckExpectations(t *testing.T) {
	t.Run("error reply without expectation is an assertion failure", func(t *testing.T) {
		content := `
tests:
  - name: test_fails
    steps: [{command: broken}]
`
		file := writeModule(t, "unit/test_f.yaml", content, domain.CategoryUnit)
		suite, err := NewParser(testDefaults()).Parse(file)
		require.NoError(t, err)

		conn := &fakeCommander{responses: map[string]protocol.Response{
			"broken": protocol.Errorf("no such command"),
		}}
		err = suite.Units[0].Run(context.Background(), conn)
		require.Error(t, err)

		var assertion *domain.AssertionError
		assert.True(t, errors.As(err, &assertion), "expectation mismatch should be an assertion error, got %T", err)
		assert.Contains(t, err.Error(), "no such command")
	})

	t.Run("expected failure passes when server errors", func(t *testing.T) {
		content := `
tests:
  - name: test_expected_error
    steps:
      - command: delete_actor
        params: {name: ghost}
        expect:
          ok: false
          error_contains: not found
`
		file := writeModule(t, "unit/test_e.yaml", content, domain.CategoryUnit)
		suite, err := NewParser(testDefaults()).Parse(file)
		require.NoError(t, err)

		conn := &fakeCommander{responses: map[string]protocol.Response{
			"delete_actor": protocol.Errorf("actor ghost not found"),
		}}
		assert.NoError(t, suite.Units[0].Run(context.Background(), conn))
	})

	t.Run("result equality survives the yaml to json type gap", func(t *testing.T) {
		content := `
tests:
  - name: test_result
    steps:
      - command: get_stats
        expect:
          result: {count: 3, names: [a, b]}
`
		file := writeModule(t, "unit/test_r.yaml", content, domain.CategoryUnit)
		suite, err := NewParser(testDefaults()).Parse(file)
		require.NoError(t, err)

		// The wire decoder produces float64 and map[string]any
		conn := &fakeCommander{responses: map[string]protocol.Response{
			"get_stats": {OK: true, Result: map[string]any{"count": float64(3), "names": []any{"a", "b"}}},
		}}
		assert.NoError(t, suite.Units[0].Run(context.Background(), conn))
	})

	t.Run("result_contains mismatch fails", func(t *testing.T) {
		content := `
tests:
  - name: test_contains
    steps:
      - command: ping
        expect:
          result_contains: pong
`
		file := writeModule(t, "unit/test_c.yaml", content, domain.CategoryUnit)
		suite, err := NewParser(testDefaults()).Parse(file)
		require.NoError(t, err)

		conn := &fakeCommander{responses: map[string]protocol.Response{
			"ping": {OK: true, Result: "nothing here"},
		}}
		err = suite.Units[0].Run(context.Background(), conn)
		var assertion *domain.AssertionError
		assert.True(t, errors.As(err, &assertion))
	})
}

func TestCompiledStepsHonorContext(t *testing.T) {
	content := `
tests:
  - name: test_cancelled
    steps: [{command: ping}, {command: ping}]
`
	file := writeModule(t, "unit/test_ctx.yaml", content, domain.CategoryUnit)
	suite, err := NewParser(testDefaults()).Parse(file)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conn := &fakeCommander{}
	err = suite.Units[0].Run(ctx, conn)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, conn.calls)
}

func TestModuleName(t *testing.T) {
	assert.Equal(t, "test_actor", moduleName(filepath.Join("tests", "unit", "test_actor.yaml")))
	assert.Equal(t, "test_math", moduleName("test_math.yml"))
}
