package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"uetp/internal/domain"

	log15 "gopkg.in/inconshreveable/log15.v2"
	"gopkg.in/yaml.v3"
)

// Defaults holds the category-level suite policies applied when a
// module does not override them
type Defaults struct {
	ParallelSafe bool
	Timeout      time.Duration
}

// Parser builds test suites from module files
type Parser struct {
	defaults map[domain.Category]Defaults
}

// NewParser creates a new Parser with the given per-category defaults
func NewParser(defaults map[domain.Category]Defaults) *Parser {
	return &Parser{defaults: defaults}
}

// moduleSpec is the YAML schema of a test module file
type moduleSpec struct {
	Description  string     `yaml:"description"`
	ParallelSafe *bool      `yaml:"parallel_safe"`
	Timeout      string     `yaml:"timeout"`
	Tags         []string   `yaml:"tags"`
	Setup        []stepSpec `yaml:"setup"`
	Teardown     []stepSpec `yaml:"teardown"`
	Tests        []testSpec `yaml:"tests"`
}

type testSpec struct {
	Name  string     `yaml:"name"`
	Tags  []string   `yaml:"tags"`
	Skip  string     `yaml:"skip"`
	Steps []stepSpec `yaml:"steps"`
}

type stepSpec struct {
	Command string         `yaml:"command"`
	Params  map[string]any `yaml:"params"`
	Expect  *expectSpec    `yaml:"expect"`
}

type expectSpec struct {
	OK             *bool  `yaml:"ok"`
	Result         any    `yaml:"result"`
	ResultContains string `yaml:"result_contains"`
	ErrorContains  string `yaml:"error_contains"`
}

// Parse loads one module file and compiles it into a test suite. The
// suite takes its name from the module file stem and every unit is
// named module.test_name.
func (p *Parser) Parse(file ModuleFile) (*domain.TestSuite, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}

	var spec moduleSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse module: %w", err)
	}
	if len(spec.Tests) == 0 {
		return nil, fmt.Errorf("module defines no tests")
	}

	name := moduleName(file.Path)
	def := p.defaults[file.Category]

	parallelSafe := def.ParallelSafe
	if spec.ParallelSafe != nil {
		parallelSafe = *spec.ParallelSafe
	}

	timeout := def.Timeout
	if spec.Timeout != "" {
		timeout, err = time.ParseDuration(spec.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", spec.Timeout, err)
		}
	}
	if timeout <= 0 {
		timeout = time.Minute
	}

	seen := make(map[string]bool)
	var units []domain.TestUnit
	for i, test := range spec.Tests {
		if !strings.HasPrefix(test.Name, "test_") {
			log15.Debug("ignoring entry without test_ prefix", "module", name, "entry", test.Name)
			continue
		}
		if seen[test.Name] {
			return nil, fmt.Errorf("duplicate test name %q", test.Name)
		}
		seen[test.Name] = true
		if len(test.Steps) == 0 && test.Skip == "" {
			return nil, fmt.Errorf("test %q has no steps", test.Name)
		}

		units = append(units, domain.TestUnit{
			Name:       name + "." + test.Name,
			Module:     name,
			Category:   file.Category,
			Tags:       test.Tags,
			SkipReason: test.Skip,
			Seq:        i,
			Run:        compileSteps(test.Steps),
		})
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("no tests follow the test_ naming convention")
	}

	return &domain.TestSuite{
		Name:         name,
		Category:     file.Category,
		Description:  spec.Description,
		Tags:         spec.Tags,
		Units:        units,
		Setup:        compileSteps(spec.Setup),
		Teardown:     compileSteps(spec.Teardown),
		ParallelSafe: parallelSafe,
		Timeout:      timeout,
	}, nil
}

// moduleName derives the suite name from the module file path
func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// compileSteps turns a step list into a runnable function. An empty
// list compiles to nil so callers can tell absent hooks apart.
func compileSteps(steps []stepSpec) domain.RunFunc {
	if len(steps) == 0 {
		return nil
	}
	return func(ctx context.Context, conn domain.Commander) error {
		for i, step := range steps {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := runStep(conn, i, step); err != nil {
				return err
			}
		}
		return nil
	}
}

// runStep sends one command and checks the reply against the step's
// expectations. Expectation mismatches come back as assertion errors
// so the scheduler reports them as failures rather than errors.
func runStep(conn domain.Commander, idx int, step stepSpec) error {
	if step.Command == "" {
		return fmt.Errorf("step %d has no command", idx+1)
	}
	resp := conn.Send(step.Command, step.Params)

	wantOK := true
	if step.Expect != nil && step.Expect.OK != nil {
		wantOK = *step.Expect.OK
	}
	if resp.OK != wantOK {
		if wantOK {
			return domain.Failf("step %d (%s): expected success, got error: %s", idx+1, step.Command, resp.Error)
		}
		return domain.Failf("step %d (%s): expected failure, got success", idx+1, step.Command)
	}
	if step.Expect == nil {
		return nil
	}

	if step.Expect.Result != nil {
		want := jsonNormalize(step.Expect.Result)
		if !reflect.DeepEqual(want, resp.Result) {
			return domain.Failf("step %d (%s): result mismatch: want %v, got %v", idx+1, step.Command, want, resp.Result)
		}
	}
	if step.Expect.ResultContains != "" {
		if !strings.Contains(fmt.Sprint(resp.Result), step.Expect.ResultContains) {
			return domain.Failf("step %d (%s): result %v does not contain %q", idx+1, step.Command, resp.Result, step.Expect.ResultContains)
		}
	}
	if step.Expect.ErrorContains != "" {
		if !strings.Contains(resp.Error, step.Expect.ErrorContains) {
			return domain.Failf("step %d (%s): error %q does not contain %q", idx+1, step.Command, resp.Error, step.Expect.ErrorContains)
		}
	}
	return nil
}

// jsonNormalize round-trips a value decoded from YAML through JSON so
// expected values compare equal to what the wire decoder produced
// (ints become float64, nested maps become map[string]any).
func jsonNormalize(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
