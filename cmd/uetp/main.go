package main

import (
	"fmt"
	"os"

	"uetp/internal/cli"
	"uetp/internal/cli/commands"
	"uetp/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:     "uetp",
		Short:   "Unreal Editor test processor",
		Long:    `A socket-driven test processor for Unreal Editor automation. Discovers YAML test modules, drives the editor over its TCP bridge and executes suites in parallel with full reporting.`,
		Version: config.RunnerVersion,

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
