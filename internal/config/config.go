package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a run. It is assembled once from
// defaults, environment and flags, and treated as read-only afterwards.
type Config struct {
	// Connection settings
	Host           string
	Port           int
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
	RetryOnFailure bool
	MaxRetries     int
	RetryDelay     time.Duration
	UseMock        bool

	// Execution settings
	Parallel   bool
	MaxWorkers int
	FailFast   bool

	// Suite timeouts by category
	IntegrationTimeout time.Duration
	UnitTimeout        time.Duration
	ValidationTimeout  time.Duration

	// Paths
	TestRoot  string
	OutputDir string

	// Canned replies for the mock server, loaded from --mock-responses
	MockResponses map[string]map[string]any

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	Host            string
	Port            int
	ConnectTimeout  time.Duration
	CommandTimeout  time.Duration
	Mock            bool
	MockResponses   string
	IntegrationOnly bool
	UnitOnly        bool
	ValidationOnly  bool
	Modules         []string
	ExcludeModules  []string
	Patterns        []string
	ExcludePatterns []string
	Tags            []string
	ExcludeTags     []string
	Parallel        bool
	Workers         int
	FailFast        bool
	TestRoot        string
	OutputDir       string
	OpenFails       bool
	Units           bool
	Verbose         bool
	Quiet           bool
	LogFile         string
	EnvFile         string
}

// New creates a new Config with defaults
func New() *Config {
	return &Config{
		Host:               DefaultHost,
		Port:               DefaultPort,
		ConnectTimeout:     DefaultConnectTimeout,
		CommandTimeout:     DefaultCommandTimeout,
		RetryOnFailure:     true,
		MaxRetries:         DefaultMaxRetries,
		RetryDelay:         DefaultRetryDelay,
		Parallel:           true,
		MaxWorkers:         DefaultMaxWorkers,
		IntegrationTimeout: DefaultIntegrationTimeout,
		UnitTimeout:        DefaultUnitTimeout,
		ValidationTimeout:  DefaultValidationTimeout,
		TestRoot:           DefaultTestRoot,
		OutputDir:          DefaultOutputDir,
	}
}

// Apply layers environment overrides and command-line flags onto the
// defaults. Flags win over environment, environment over defaults.
func (c *Config) Apply(flags Flags) {
	c.Flags = flags
	c.applyEnv()

	if flags.Host != "" {
		c.Host = flags.Host
	}
	if flags.Port > 0 {
		c.Port = flags.Port
	}
	if flags.ConnectTimeout > 0 {
		c.ConnectTimeout = flags.ConnectTimeout
	}
	if flags.CommandTimeout > 0 {
		c.CommandTimeout = flags.CommandTimeout
	}
	if flags.Mock {
		c.UseMock = true
	}
	if flags.Workers > 0 {
		c.MaxWorkers = flags.Workers
	}
	c.Parallel = flags.Parallel
	c.FailFast = flags.FailFast
	if flags.TestRoot != "" {
		c.TestRoot = flags.TestRoot
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
}

// applyEnv picks up the override variables the original test pipeline
// exports. Timeout values accept plain seconds ("15") or a Go duration
// string ("15s").
func (c *Config) applyEnv() {
	if host := os.Getenv("TEST_UNREAL_HOST"); host != "" {
		c.Host = host
	}
	if port := os.Getenv("TEST_UNREAL_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			c.Port = p
		}
	}
	if timeout := os.Getenv("TEST_CONNECTION_TIMEOUT"); timeout != "" {
		if d, err := parseSeconds(timeout); err == nil {
			c.ConnectTimeout = d
		}
	}
	if timeout := os.Getenv("TEST_COMMAND_TIMEOUT"); timeout != "" {
		if d, err := parseSeconds(timeout); err == nil {
			c.CommandTimeout = d
		}
	}
	if mock := os.Getenv("TEST_USE_MOCK"); mock != "" {
		if b, err := strconv.ParseBool(mock); err == nil {
			c.UseMock = b
		}
	}
}

// parseSeconds reads a timeout value as plain seconds or as a Go
// duration string
func parseSeconds(value string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("timeout must be positive, got %q", value)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %q", value)
	}
	return d, nil
}

// LoadMockResponses reads a YAML file mapping command names to canned
// reply documents for the mock server
func LoadMockResponses(path string) (map[string]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mock responses: %w", err)
	}
	responses := make(map[string]map[string]any)
	if err := yaml.Unmarshal(data, &responses); err != nil {
		return nil, fmt.Errorf("parse mock responses %s: %w", path, err)
	}
	return responses, nil
}
