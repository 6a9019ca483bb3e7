// Package cmd implements the auditdeck CLI commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/auditdeck/auditdeck/internal/config"
	"github.com/auditdeck/auditdeck/internal/constants"
	"github.com/auditdeck/auditdeck/internal/logger"
	"github.com/auditdeck/auditdeck/internal/output"

	"github.com/spf13/cobra"
)

var (
	debug         bool
	verbose       bool
	timeout       string
	timeoutCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   constants.ProjectName,
	Short: "Operator console for multi-agent security audits",
	Long: fmt.Sprintf(`%s attaches to a running security-audit task and shows its activity in
near real time: reasoning traces, tool invocations, findings, phase
transitions, and the agent hierarchy behind them.`, constants.ProjectName),
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if verbose {
			output.Header(output.Bold(constants.ProjectName) + " " + *constants.GetVersion())
		}

		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}
		logger.Initialize(constants.CLI, logLevel)

		if timeout == "0" {
			return nil
		}

		timeoutDuration, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("error parsing timeout: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeoutDuration)
		timeoutCancel = cancel
		cmd.SetContext(ctx)

		return nil
	},
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if timeoutCancel != nil {
		timeoutCancel()
	}

	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&timeout, "timeout", "0", "Timeout for the command (e.g. 10m, 30s; 0 disables)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debugging logs")
}

// loadConfig loads and validates the CLI configuration, requiring an API
// endpoint to be present.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.APIEndpoint == "" {
		return nil, fmt.Errorf("no API endpoint configured; run '%s configure' first", constants.ProjectName)
	}
	return cfg, nil
}
