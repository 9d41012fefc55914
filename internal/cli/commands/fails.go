package commands

import (
	"github.com/spf13/cobra"

	"uetp/internal/config"
	"uetp/internal/report"
	"uetp/internal/ui"
)

// FailsCommand handles the fails command
type FailsCommand struct {
	config *config.Config
}

// NewFailsCommand creates a new FailsCommand
func NewFailsCommand(cfg *config.Config) *FailsCommand {
	return &FailsCommand{config: cfg}
}

// Execute runs the command
func (fc *FailsCommand) Execute(cmd *cobra.Command, args []string) error {
	path := report.NewWriter(fc.config.OutputDir).JSONPath()
	return viewFailures(path, ui.NewFailsViewer(path))
}

// viewFailures loads the results document at path and hands it to the
// viewer. Shared by the fails command and run's --open-fails.
func viewFailures(path string, viewer ui.Viewer) error {
	doc, err := report.LoadDocument(path)
	if err != nil {
		return err
	}
	return viewer.View(doc)
}
