package output

import (
	"fmt"
	"strings"

	"github.com/auditdeck/auditdeck/internal/api"
	"github.com/auditdeck/auditdeck/internal/console"
	"github.com/auditdeck/auditdeck/internal/constants"

	"github.com/fatih/color"
)

// entryGlyphs maps entry kinds to their display glyph.
var entryGlyphs = map[console.EntryKind]string{
	console.KindThinking: "∴",
	console.KindTool:     "⚙",
	console.KindPhase:    "▸",
	console.KindFinding:  "◆",
	console.KindInfo:     "·",
	console.KindError:    "✗",
	console.KindUser:     "»",
	console.KindDispatch: "↳",
}

// PrintEntry prints one activity log entry.
func PrintEntry(e console.LogEntry) {
	glyph, ok := entryGlyphs[e.Kind]
	if !ok {
		glyph = "·"
	}

	var attribution string
	if e.AgentName != "" {
		attribution = gray.Sprintf(" [%s]", e.AgentName)
	}

	title := e.Title
	switch e.Kind {
	case console.KindError:
		title = red.Sprint(title)
	case console.KindFinding:
		title = severityColor(api.FindingSeverity(e.Severity)).Sprint(title)
	case console.KindDispatch:
		title = cyan.Sprint(title)
	case console.KindThinking:
		title = gray.Sprint(title)
		if e.IsStreaming {
			title += gray.Sprint(" …")
		}
	}

	if e.Tool != nil {
		title = fmt.Sprintf("%s %s", e.Tool.Name, toolStatusLabel(e.Tool))
	}

	fmt.Fprintf(Stdout, "%s %s %s%s\n", gray.Sprint(e.Timestamp), glyph, title, attribution)
}

func toolStatusLabel(tc *console.ToolCall) string {
	switch tc.Status {
	case console.ToolRunning:
		return yellow.Sprint("running")
	case console.ToolCompleted:
		if tc.DurationMs > 0 {
			return green.Sprintf("done (%dms)", tc.DurationMs)
		}
		return green.Sprint("done")
	case console.ToolFailed:
		return red.Sprint("failed")
	}
	return string(tc.Status)
}

func severityColor(sev api.FindingSeverity) *color.Color {
	switch sev {
	case api.SeverityCritical, api.SeverityHigh:
		return red
	case api.SeverityMedium:
		return yellow
	case api.SeverityLow:
		return cyan
	}
	return gray
}

// PrintAgentTree prints the agent forest with indentation and status glyphs.
func PrintAgentTree(nodes []*console.AgentNode) {
	for _, node := range nodes {
		printAgentNode(node, 0)
	}
}

func printAgentNode(node *console.AgentNode, depth int) {
	indent := strings.Repeat("  ", depth)
	status := agentStatusLabel(node.Status)
	fmt.Fprintf(Stdout, "%s%s %s %s\n",
		indent,
		status,
		Bold(node.AgentName),
		gray.Sprintf("(%d findings, %d tool calls)", node.FindingsCount, node.ToolCalls),
	)
	for _, child := range node.Children {
		printAgentNode(child, depth+1)
	}
}

func agentStatusLabel(status constants.AgentStatus) string {
	switch status {
	case constants.AgentRunning:
		return yellow.Sprint("●")
	case constants.AgentCompleted:
		return green.Sprint("●")
	case constants.AgentFailed:
		return red.Sprint("●")
	case constants.AgentWaiting:
		return cyan.Sprint("○")
	}
	return gray.Sprint("○")
}

// PrintFindings prints the findings table, severity-colored.
func PrintFindings(findings []api.Finding) {
	if len(findings) == 0 {
		Info("no findings reported")
		return
	}

	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		verified := ""
		if f.Verified {
			verified = "✓"
		}
		rows = append(rows, []string{
			severityColor(f.Severity).Sprint(string(f.Severity)),
			f.Title,
			f.AgentName,
			verified,
		})
	}
	Table([]string{"Severity", "Finding", "Agent", "Verified"}, rows)
}

// PrintTaskStatus prints the one-line task status summary.
func PrintTaskStatus(task *api.TaskResponse) {
	if task == nil {
		return
	}
	phase := task.Phase
	if phase == "" {
		phase = "-"
	}
	fmt.Fprintf(Stdout, "%s %s  %s %s  %s %.0f%%  %s %d/%d agents  %s %d findings\n",
		gray.Sprint("status:"), statusLabel(task.Status),
		gray.Sprint("phase:"), phase,
		gray.Sprint("progress:"), task.Progress*100,
		gray.Sprint("agents:"), task.Counters.AgentsDone, task.Counters.AgentsTotal,
		gray.Sprint("findings:"), task.Counters.FindingsCount,
	)
}

func statusLabel(status constants.TaskStatus) string {
	switch status {
	case constants.TaskRunning:
		return yellow.Sprint(string(status))
	case constants.TaskCompleted:
		return green.Sprint(string(status))
	case constants.TaskFailed:
		return red.Sprint(string(status))
	case constants.TaskCancelled:
		return gray.Sprint(string(status))
	}
	return string(status)
}
