package commands

import (
	"fmt"
	"os"

	"uetp/internal/cli"
	"uetp/internal/config"
	"uetp/internal/discovery"
	"uetp/internal/domain"
	"uetp/internal/ui"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	log15 "gopkg.in/inconshreveable/log15.v2"
)

// skipDirs are directories under the test root that hold fixture data
// rather than test modules
var skipDirs = []string{"fixtures", "data"}

// Commands holds all CLI commands
type Commands struct {
	Run   *RunCommand
	List  *ListCommand
	Fails *FailsCommand
	Check *CheckCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	// Initialize dependencies
	scanner := discovery.NewScanner(skipDirs)
	parser := discovery.NewParser(categoryDefaults(cfg))
	disc := discovery.NewDiscovery(scanner, parser)
	formatter := ui.NewFormatter()

	return &Commands{
		Run:   NewRunCommand(cfg, disc, formatter),
		List:  NewListCommand(cfg, disc, formatter),
		Fails: NewFailsCommand(cfg),
		Check: NewCheckCommand(cfg),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.PersistentFlags().StringVar(&flags.EnvFile, "env-file", "", "Load environment variables from this file before reading overrides")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log debug detail (disables the progress bar)")
	rootCmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Only log errors and skip the console summary")
	rootCmd.PersistentFlags().StringVar(&flags.LogFile, "log-file", "", "Write logs to this file instead of stderr")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if flags.EnvFile != "" {
			if err := godotenv.Load(flags.EnvFile); err != nil {
				return fmt.Errorf("load env file %s: %w", flags.EnvFile, err)
			}
		} else {
			// A .env in the working directory is optional.
			godotenv.Load()
		}
		return setupLogging(flags)
	}

	applyFlags := func(cmd *cobra.Command, args []string) error {
		cfg.Apply(flags.ToConfigFlags())
		if flags.MockResponses != "" {
			responses, err := config.LoadMockResponses(flags.MockResponses)
			if err != nil {
				return err
			}
			cfg.MockResponses = responses
		}
		return nil
	}

	// Run command
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Run editor tests",
		Long:    "Discover test modules, execute them against the editor bridge and write report artifacts",
		RunE:    c.Run.Execute,
		PreRunE: applyFlags,
	}
	addConnectionFlags(runCmd, flags)
	addFilterFlags(runCmd, flags)
	runCmd.Flags().BoolVar(&flags.Parallel, "parallel", true, "Run parallel-safe suites on the worker pool")
	runCmd.Flags().IntVarP(&flags.Workers, "workers", "w", 0, "Number of parallel workers (default 4)")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop scheduling new tests after the first failure")
	runCmd.Flags().StringVarP(&flags.TestRoot, "tests", "t", "", "Directory holding the test category trees (default \"tests\")")
	runCmd.Flags().StringVarP(&flags.OutputDir, "output", "o", "", "Directory for report artifacts (default \"test_output\")")
	runCmd.Flags().BoolVar(&flags.OpenFails, "open-fails", false, "Open the failures viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List discovered tests",
		Long:    "Scan and list all test modules without executing them",
		RunE:    c.List.Execute,
		PreRunE: applyFlags,
	}
	addFilterFlags(listCmd, flags)
	listCmd.Flags().StringVarP(&flags.TestRoot, "tests", "t", "", "Directory holding the test category trees (default \"tests\")")
	listCmd.Flags().BoolVarP(&flags.Units, "units", "u", false, "List individual tests under each module")
	rootCmd.AddCommand(listCmd)

	// Fails command
	failsCmd := &cobra.Command{
		Use:     "fails",
		Short:   "View test failures interactively",
		Long:    "Display failures from the last test run in an interactive viewer",
		RunE:    c.Fails.Execute,
		PreRunE: applyFlags,
	}
	failsCmd.Flags().StringVarP(&flags.OutputDir, "output", "o", "", "Directory the run wrote its artifacts to (default \"test_output\")")
	rootCmd.AddCommand(failsCmd)

	// Check command
	checkCmd := &cobra.Command{
		Use:     "check",
		Short:   "Check the editor connection",
		Long:    "Dial the editor bridge and send a ping to verify it is reachable",
		RunE:    c.Check.Execute,
		PreRunE: applyFlags,
	}
	addConnectionFlags(checkCmd, flags)
	rootCmd.AddCommand(checkCmd)
}

func addConnectionFlags(cmd *cobra.Command, flags *cli.Flags) {
	cmd.Flags().StringVar(&flags.Host, "host", "", "Editor bridge host (default \"127.0.0.1\")")
	cmd.Flags().IntVar(&flags.Port, "port", 0, "Editor bridge port (default 55557)")
	cmd.Flags().Float64Var(&flags.ConnectTimeout, "connect-timeout", 0, "Connection timeout in seconds (default 10)")
	cmd.Flags().Float64Var(&flags.CommandTimeout, "command-timeout", 0, "Per-command timeout in seconds (default 30)")
	cmd.Flags().BoolVar(&flags.Mock, "mock", false, "Run against an in-process mock editor instead of a live one")
	cmd.Flags().StringVar(&flags.MockResponses, "mock-responses", "", "YAML file of canned mock replies by command name")
}

func addFilterFlags(cmd *cobra.Command, flags *cli.Flags) {
	cmd.Flags().BoolVar(&flags.IntegrationOnly, "integration-only", false, "Only integration suites")
	cmd.Flags().BoolVar(&flags.UnitOnly, "unit-only", false, "Only unit suites")
	cmd.Flags().BoolVar(&flags.ValidationOnly, "validation-only", false, "Only validation suites")
	cmd.Flags().StringSliceVar(&flags.Modules, "modules", nil, "Only these modules (by name)")
	cmd.Flags().StringSliceVar(&flags.ExcludeModules, "exclude-modules", nil, "Skip these modules (by name)")
	cmd.Flags().StringSliceVarP(&flags.Patterns, "patterns", "f", nil, "Only tests matching these name patterns (wildcards supported)")
	cmd.Flags().StringSliceVar(&flags.ExcludePatterns, "exclude-patterns", nil, "Skip tests matching these name patterns")
	cmd.Flags().StringSliceVar(&flags.Tags, "tags", nil, "Only tests carrying one of these tags")
	cmd.Flags().StringSliceVar(&flags.ExcludeTags, "exclude-tags", nil, "Skip tests carrying one of these tags")
}

// setupLogging routes log15 output. The default level is warn so test
// output stays clean; --verbose lowers it to debug, --quiet raises it
// to error.
func setupLogging(flags *cli.Flags) error {
	level := log15.LvlWarn
	if flags.Verbose {
		level = log15.LvlDebug
	}
	if flags.Quiet {
		level = log15.LvlError
	}
	handler := log15.StreamHandler(os.Stderr, log15.TerminalFormat())
	if flags.LogFile != "" {
		fileHandler, err := log15.FileHandler(flags.LogFile, log15.LogfmtFormat())
		if err != nil {
			return fmt.Errorf("open log file %s: %w", flags.LogFile, err)
		}
		handler = fileHandler
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(level, handler))
	return nil
}

// categoryDefaults maps each test category to the parallel-safety and
// timeout a module inherits when it does not set its own
func categoryDefaults(cfg *config.Config) map[domain.Category]discovery.Defaults {
	return map[domain.Category]discovery.Defaults{
		domain.CategoryIntegration: {ParallelSafe: false, Timeout: cfg.IntegrationTimeout},
		domain.CategoryUnit:        {ParallelSafe: true, Timeout: cfg.UnitTimeout},
		domain.CategoryValidation:  {ParallelSafe: true, Timeout: cfg.ValidationTimeout},
	}
}

// filterFromConfig builds the discovery filter from the parsed flags
func filterFromConfig(cfg *config.Config) *discovery.Filter {
	f := cfg.Flags
	return &discovery.Filter{
		IntegrationOnly: f.IntegrationOnly,
		UnitOnly:        f.UnitOnly,
		ValidationOnly:  f.ValidationOnly,
		Modules:         f.Modules,
		ExcludeModules:  f.ExcludeModules,
		Patterns:        f.Patterns,
		ExcludePatterns: f.ExcludePatterns,
		Tags:            f.Tags,
		ExcludeTags:     f.ExcludeTags,
	}
}
