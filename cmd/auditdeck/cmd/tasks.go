package cmd

import (
	"log/slog"

	"github.com/auditdeck/auditdeck/internal/client"
	"github.com/auditdeck/auditdeck/internal/output"

	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List audit tasks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		c := client.New(cfg, slog.Default())
		tasks, err := c.ListTasks(cmd.Context())
		if err != nil {
			return err
		}

		if len(tasks) == 0 {
			output.Info("no tasks found")
			return nil
		}

		rows := make([][]string, 0, len(tasks))
		for _, t := range tasks {
			rows = append(rows, []string{t.TaskID, t.Name, t.Target, string(t.Status), t.CreatedAt})
		}
		output.Table([]string{"Task", "Name", "Target", "Status", "Created"}, rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tasksCmd)
}
