package cli

import (
	"time"

	"uetp/internal/config"
)

// Flags holds command-line flags. Cobra writes into this struct during
// parsing; ToConfigFlags converts it for the config layer afterwards.
type Flags struct {
	Host            string
	Port            int
	ConnectTimeout  float64
	CommandTimeout  float64
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

// ToConfigFlags converts CLI flags to config flags. Timeouts are given
// in seconds on the command line, matching the environment variables.
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Host:            f.Host,
		Port:            f.Port,
		ConnectTimeout:  secondsToDuration(f.ConnectTimeout),
		CommandTimeout:  secondsToDuration(f.CommandTimeout),
		Mock:            f.Mock,
		MockResponses:   f.MockResponses,
		IntegrationOnly: f.IntegrationOnly,
		UnitOnly:        f.UnitOnly,
		ValidationOnly:  f.ValidationOnly,
		Modules:         f.Modules,
		ExcludeModules:  f.ExcludeModules,
		Patterns:        f.Patterns,
		ExcludePatterns: f.ExcludePatterns,
		Tags:            f.Tags,
		ExcludeTags:     f.ExcludeTags,
		Parallel:        f.Parallel,
		Workers:         f.Workers,
		FailFast:        f.FailFast,
		TestRoot:        f.TestRoot,
		OutputDir:       f.OutputDir,
		OpenFails:       f.OpenFails,
		Units:           f.Units,
		Verbose:         f.Verbose,
		Quiet:           f.Quiet,
		LogFile:         f.LogFile,
		EnvFile:         f.EnvFile,
	}
}

func secondsToDuration(secs float64) time.Duration {
	if secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
