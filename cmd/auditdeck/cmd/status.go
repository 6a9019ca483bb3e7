package cmd

import (
	"log/slog"

	"github.com/auditdeck/auditdeck/internal/client"
	"github.com/auditdeck/auditdeck/internal/console"
	"github.com/auditdeck/auditdeck/internal/output"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <task-id>",
	Short: "Show the status and agent tree of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		c := client.New(cfg, slog.Default())

		task, err := c.GetTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		output.Header(task.Name)
		output.PrintTaskStatus(task)

		records, err := c.GetAgentTree(cmd.Context(), args[0])
		if err != nil {
			output.Warning("could not fetch agent tree: %v", err)
			return nil
		}

		output.Blank()
		output.PrintAgentTree(console.BuildTree(records))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
