package commands

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"uetp/internal/config"
	"uetp/internal/mockserver"
	"uetp/internal/transport"
)

// CheckCommand handles the check command
type CheckCommand struct {
	config *config.Config
}

// NewCheckCommand creates a new CheckCommand
func NewCheckCommand(cfg *config.Config) *CheckCommand {
	return &CheckCommand{config: cfg}
}

// Execute runs the command
func (cc *CheckCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := cc.config

	if cfg.UseMock {
		mock := mockserver.New(cfg.Host, cfg.Port)
		mock.RegisterDefaults()
		if err := mock.Start(); err != nil {
			return err
		}
		defer mock.Stop()
		cfg.Port = mock.Port()
	}

	target := transport.Config{
		Host:           cfg.Host,
		Port:           cfg.Port,
		ConnectTimeout: cfg.ConnectTimeout,
		CommandTimeout: cfg.CommandTimeout,
		RetryOnFailure: cfg.RetryOnFailure,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	}
	conn := transport.New(target)
	defer conn.Disconnect()

	fmt.Printf("Checking editor bridge at %s...\n", target.Addr())
	start := time.Now()
	if err := conn.Connect(); err != nil {
		color.Red("✗ Cannot reach the editor: %v", err)
		return fmt.Errorf("connection check failed")
	}
	dialTime := time.Since(start).Round(time.Millisecond)

	resp := conn.Send("ping", nil)
	roundTrip := time.Since(start).Round(time.Millisecond)
	if !resp.OK {
		color.Red("✗ Editor rejected ping: %s", resp.Error)
		return fmt.Errorf("connection check failed")
	}

	color.Green("✓ Editor reachable (dial %s, ping round trip %s)", dialTime, roundTrip)
	if resp.Result != nil {
		fmt.Printf("  ping reply: %v\n", resp.Result)
	}
	return nil
}
