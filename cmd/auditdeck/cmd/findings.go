package cmd

import (
	"log/slog"

	"github.com/auditdeck/auditdeck/internal/client"
	"github.com/auditdeck/auditdeck/internal/output"

	"github.com/spf13/cobra"
)

var findingsCmd = &cobra.Command{
	Use:   "findings <task-id>",
	Short: "List the findings reported by a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		c := client.New(cfg, slog.Default())
		findings, err := c.ListFindings(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		output.PrintFindings(findings)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(findingsCmd)
}
