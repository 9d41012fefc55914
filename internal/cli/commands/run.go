package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"uetp/internal/config"
	"uetp/internal/discovery"
	"uetp/internal/execution"
	"uetp/internal/mockserver"
	"uetp/internal/report"
	"uetp/internal/results"
	"uetp/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	log15 "gopkg.in/inconshreveable/log15.v2"
)

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	discovery *discovery.Discovery
	formatter *ui.Formatter
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(cfg *config.Config, disc *discovery.Discovery, formatter *ui.Formatter) *RunCommand {
	return &RunCommand{
		config:    cfg,
		discovery: disc,
		formatter: formatter,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if rc.config.UseMock {
		mock, err := rc.startMock()
		if err != nil {
			return err
		}
		defer mock.Stop()
	}

	// Discover tests
	suites, err := rc.discovery.Discover(rc.config.TestRoot, filterFromConfig(rc.config))
	if err != nil {
		return err
	}
	total := discovery.CountUnits(suites)
	if total == 0 {
		color.Yellow("No tests to execute")
		return nil
	}

	collector := results.NewCollector()
	collector.StartRun(rc.config)

	scheduler := execution.NewScheduler(rc.config, execution.NewRunner(rc.config), collector)
	if !rc.config.Flags.Verbose && !rc.config.Flags.Quiet {
		scheduler.SetProgress(ui.NewProgressBar(total))
	}

	// Execute tests
	scheduler.Run(ctx, suites)
	runReport := collector.CompleteRun()

	// Write report artifacts
	writer := report.NewWriter(rc.config.OutputDir)
	if err := writer.WriteAll(runReport); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}

	if !rc.config.Flags.Quiet {
		rc.formatter.PrintSummary(runReport)
		fmt.Printf("Reports written to %s\n\n", rc.config.OutputDir)
	}

	if rc.config.Flags.OpenFails && !runReport.Succeeded() {
		if err := viewFailures(writer.JSONPath(), ui.NewFailsViewer(writer.JSONPath())); err != nil {
			return err
		}
	}

	if !runReport.Succeeded() {
		return fmt.Errorf("%d failed, %d errors, %d timeouts",
			runReport.Failed(), runReport.Errors(), runReport.Timeouts())
	}
	return nil
}

// startMock serves the editor protocol in-process. The bound port is
// written back into the config so the workers dial the right place
// when port 0 asked for an ephemeral one.
func (rc *RunCommand) startMock() (*mockserver.Server, error) {
	mock := mockserver.New(rc.config.Host, rc.config.Port)
	mock.RegisterDefaults()
	for command, response := range rc.config.MockResponses {
		mock.Register(command, response)
	}
	if err := mock.Start(); err != nil {
		return nil, err
	}
	rc.config.Port = mock.Port()
	log15.Info("mock editor listening", "addr", mock.Addr())
	return mock, nil
}
