package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/auditdeck/auditdeck/internal/client"
	"github.com/auditdeck/auditdeck/internal/config"
	"github.com/auditdeck/auditdeck/internal/console"
	"github.com/auditdeck/auditdeck/internal/constants"
	"github.com/auditdeck/auditdeck/internal/output"

	"github.com/spf13/cobra"
)

var (
	watchAgent       string
	watchAll         bool
	watchNoThinking  bool
	watchNoToolCalls bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <task-id>",
	Short: "Attach to a task and stream its activity",
	Long: `Attach to an audit task: replay its historical activity, then follow
the live event stream until the task reaches a terminal state. Use
--agent to focus on one agent's activity, or --all to lift the filter.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runWatch(cmd.Context(), cfg, args[0])
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchAgent, "agent", "", "Only show entries from this agent id (loose name match)")
	watchCmd.Flags().BoolVar(&watchAll, "all", false, "Show entries from every agent")
	watchCmd.Flags().BoolVar(&watchNoThinking, "no-thinking", false, "Do not stream reasoning traces")
	watchCmd.Flags().BoolVar(&watchNoToolCalls, "no-tool-calls", false, "Do not stream tool invocations")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(ctx context.Context, cfg *config.Config, taskID string) error {
	log := slog.Default()

	c := client.New(cfg, log)
	feed := console.NewWebSocketFeed(cfg.APIEndpoint, cfg.APIKey, log)
	session := console.NewSession(c, feed, log, console.SessionOptions{
		HistoryLimit:     cfg.HistoryLimit,
		IncludeThinking:  cfg.IncludeThinking && !watchNoThinking,
		IncludeToolCalls: cfg.IncludeToolCalls && !watchNoToolCalls,
	})
	defer session.Close()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := session.SwitchTask(ctx, taskID); err != nil {
		return err
	}

	task := session.Task()
	if task != nil {
		output.Header(task.Name)
		output.PrintTaskStatus(task)
		output.Blank()
	}
	if tree := session.Tree(); len(tree) > 0 {
		output.PrintAgentTree(tree)
		output.Blank()
	}

	printed := make(map[string]bool)
	flushEntries(session, printed)

	if task != nil && console.IsTaskComplete(task.Status) {
		printSummary(session)
		return nil
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = constants.TaskPollInterval
	}
	lastPoll := time.Now()

	for {
		select {
		case <-ctx.Done():
			output.Blank()
			output.Info("detached from task %s", taskID)
			return nil

		case <-ticker.C:
			flushEntries(session, printed)

			if time.Since(lastPoll) >= pollInterval {
				lastPoll = time.Now()
				if refreshed, err := session.RefreshTask(ctx); err == nil {
					task = refreshed
				}
			} else {
				task = session.Task()
			}

			if task != nil && console.IsTaskComplete(task.Status) && !session.IsFeedConnected() {
				flushEntries(session, printed)
				printSummary(session)
				return nil
			}
		}
	}
}

// flushEntries prints entries that have stabilized since the last flush.
// Streaming entries are still mutating in place and are held back until
// their reasoning burst finalizes.
func flushEntries(session *console.Session, printed map[string]bool) {
	for _, e := range session.FilteredEntries(watchAgent, watchAll) {
		if printed[e.ID] || e.IsStreaming {
			continue
		}
		printed[e.ID] = true
		output.PrintEntry(e)
	}
}

func printSummary(session *console.Session) {
	task := session.Task()
	if task == nil {
		return
	}

	output.Blank()
	output.PrintTaskStatus(task)

	if findings := session.Findings(); len(findings) > 0 {
		output.Blank()
		output.PrintFindings(findings)
	}

	switch task.Status {
	case constants.TaskFailed:
		output.Error("task failed: %s", task.Error)
	case constants.TaskCancelled:
		output.Warning("task was cancelled")
	default:
		output.Success("task completed")
	}
}
