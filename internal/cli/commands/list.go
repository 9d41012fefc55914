package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"uetp/internal/config"
	"uetp/internal/discovery"
	"uetp/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	discovery *discovery.Discovery
	formatter *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config, disc *discovery.Discovery, formatter *ui.Formatter) *ListCommand {
	return &ListCommand{
		config:    cfg,
		discovery: disc,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	suites, err := lc.discovery.Discover(lc.config.TestRoot, filterFromConfig(lc.config))
	if err != nil {
		return err
	}
	if len(suites) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	lc.formatter.PrintSuiteList(suites, lc.config.Flags.Units)
	return nil
}
