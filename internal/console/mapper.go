package console

import (
	"regexp"
	"strings"

	"github.com/auditdeck/auditdeck/internal/api"
	"github.com/auditdeck/auditdeck/internal/constants"
)

// FoldOutcome reports what folding one event into the log did.
type FoldOutcome struct {
	// Recorded is true when a durable entry was created or updated.
	Recorded bool
	// TreeDirty is true for dispatch-class events; the agent tree should be
	// refreshed (debounced) when set.
	TreeDirty bool
	// Streaming is true for transient streaming signals that are never
	// persisted as standalone entries.
	Streaming bool
}

// progressPattern recognizes progress-style messages such as
// "indexing 40/120"; the leading word becomes the coalescing key.
var progressPattern = regexp.MustCompile(`^([A-Za-z][\w-]*)\s+\d+\s*/\s*\d+`)

// Streaming-only event types. These drive the live reasoning accumulator and
// never appear in the persisted history fold.
const (
	eventThinkingToken = "thinking_token"
	eventThinkingStart = "thinking_start"
	eventThinkingEnd   = "thinking_end"
)

// IsStreamingOnly reports whether the event type is a transient streaming
// signal that must not be persisted or counted toward the watermark.
func IsStreamingOnly(eventType string) bool {
	switch eventType {
	case eventThinkingToken, eventThinkingStart, eventThinkingEnd:
		return true
	}
	return false
}

// FoldEvent maps one raw event to a log mutation. Unknown event types that
// carry a message degrade to an info entry; events with no user-visible text
// are skipped silently. Never returns an error: a malformed event must
// degrade the view, not crash it.
func FoldEvent(log *Log, ev api.RawEvent) FoldOutcome {
	agentName := ev.AgentName()

	switch ev.EventType {
	case "thinking", "llm_thought", "llm_decision", "llm_start", "llm_complete",
		"llm_action", "llm_observation":
		cleaned := CleanReasoningText(ev.Message)
		if cleaned == "" {
			return FoldOutcome{}
		}
		log.Append(LogEntry{
			Kind:      KindThinking,
			Title:     titleOf(cleaned),
			Content:   cleaned,
			AgentName: agentName,
		})
		return FoldOutcome{Recorded: true}

	case "tool_call":
		log.Append(LogEntry{
			Kind:      KindTool,
			Title:     ev.ToolName,
			Content:   ev.PrettyToolInput(),
			AgentName: agentName,
			Tool: &ToolCall{
				Name:   ev.ToolName,
				Status: ToolRunning,
			},
		})
		return FoldOutcome{Recorded: true}

	case "tool_result":
		log.ResolveTool(ev.ToolName, Truncate(ev.ToolOutput, constants.MaxToolOutputChars), ev.ToolDurationMs)
		return FoldOutcome{Recorded: true}

	case "finding", "finding_new", "finding_verified":
		severity := ev.MetadataString("severity")
		if severity == "" {
			severity = string(api.SeverityMedium)
		}
		log.Append(LogEntry{
			Kind:      KindFinding,
			Title:     titleOf(ev.Message),
			Content:   ev.Message,
			Severity:  severity,
			AgentName: agentName,
		})
		return FoldOutcome{Recorded: true}

	case "dispatch", "dispatch_complete", "phase_start", "phase_complete",
		"node_start", "node_complete":
		log.Append(LogEntry{
			Kind:      KindDispatch,
			Title:     titleOf(ev.Message),
			AgentName: agentName,
		})
		return FoldOutcome{Recorded: true, TreeDirty: true}

	case "task_complete":
		log.Append(LogEntry{
			Kind:  KindInfo,
			Title: orDefault(ev.Message, "Task completed"),
		})
		return FoldOutcome{Recorded: true}

	case "task_error":
		log.Append(LogEntry{
			Kind:    KindError,
			Title:   orDefault(titleOf(ev.Message), "Task failed"),
			Content: ev.Message,
		})
		return FoldOutcome{Recorded: true}

	case "task_cancel":
		log.Append(LogEntry{
			Kind:  KindInfo,
			Title: orDefault(ev.Message, "Task cancelled"),
		})
		return FoldOutcome{Recorded: true}

	case "progress":
		if ev.Message == "" {
			return FoldOutcome{}
		}
		if key := progressKey(&ev); key != "" {
			log.CoalesceProgress(key, ev.Message, agentName)
		} else {
			log.Append(LogEntry{
				Kind:      KindInfo,
				Title:     titleOf(ev.Message),
				AgentName: agentName,
			})
		}
		return FoldOutcome{Recorded: true}

	case "info", "complete", "warning":
		if ev.Message == "" {
			return FoldOutcome{}
		}
		log.Append(LogEntry{
			Kind:      KindInfo,
			Title:     titleOf(ev.Message),
			AgentName: agentName,
		})
		return FoldOutcome{Recorded: true}

	case "error":
		log.Append(LogEntry{
			Kind:      KindError,
			Title:     orDefault(titleOf(ev.Message), "Error"),
			Content:   ev.Message,
			AgentName: agentName,
		})
		return FoldOutcome{Recorded: true}

	case eventThinkingToken, eventThinkingStart, eventThinkingEnd:
		return FoldOutcome{Streaming: true}

	default:
		// Never silently drop an event that carries user-visible text.
		if ev.Message == "" {
			return FoldOutcome{}
		}
		log.Append(LogEntry{
			Kind:      KindInfo,
			Title:     titleOf(ev.Message),
			AgentName: agentName,
		})
		return FoldOutcome{Recorded: true}
	}
}

// progressKey derives the coalescing key for a progress event: an explicit
// metadata key when present, otherwise the leading word of a recognized
// "<word> N/M" message.
func progressKey(ev *api.RawEvent) string {
	if key := ev.MetadataString("progress_key"); key != "" {
		return key
	}
	if m := progressPattern.FindStringSubmatch(ev.Message); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}

// titleOf returns the first EntryTitleMaxChars characters of the message.
func titleOf(message string) string {
	if len(message) > constants.EntryTitleMaxChars {
		return message[:constants.EntryTitleMaxChars]
	}
	return message
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
