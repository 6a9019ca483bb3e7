// Package console implements the event stream reconstruction engine behind
// the auditdeck operator view. It hydrates an ordered activity log from the
// persisted event history, attaches to the live feed exactly once per task,
// merges the two sources without duplication, derives the agent tree from
// flat records, and projects filtered views for a selected agent.
package console

// EntryKind classifies a log entry for rendering.
type EntryKind string

const (
	// KindThinking is a reasoning trace
	KindThinking EntryKind = "thinking"
	// KindTool is a tool invocation with running/completed/failed lifecycle
	KindTool EntryKind = "tool"
	// KindPhase marks an audit phase boundary
	KindPhase EntryKind = "phase"
	// KindFinding is a security finding
	KindFinding EntryKind = "finding"
	// KindInfo is a generic informational entry
	KindInfo EntryKind = "info"
	// KindError is an error surfaced to the operator
	KindError EntryKind = "error"
	// KindUser is operator input echoed into the log
	KindUser EntryKind = "user"
	// KindDispatch marks agent creation, handoff, or phase change
	KindDispatch EntryKind = "dispatch"
)

// ToolStatus is the lifecycle state of a tool entry. A tool entry transitions
// running -> completed|failed exactly once.
type ToolStatus string

const (
	// ToolRunning means the tool call has started and no result has arrived
	ToolRunning ToolStatus = "running"
	// ToolCompleted means the tool call finished successfully
	ToolCompleted ToolStatus = "completed"
	// ToolFailed means the tool call finished with an error
	ToolFailed ToolStatus = "failed"
)

// ToolCall is the tool-specific state attached to a KindTool entry.
type ToolCall struct {
	Name       string
	Status     ToolStatus
	DurationMs int64
}

// LogEntry is one visual unit of activity. The ID is generated locally and
// stable for the lifetime of the entry; Timestamp is the local capture time,
// not the event's origin time.
type LogEntry struct {
	ID          string
	Timestamp   string
	Kind        EntryKind
	Title       string
	Content     string
	IsStreaming bool
	Tool        *ToolCall
	Severity    string
	AgentName   string

	// progressKey tags coalescable progress entries so a burst of progress
	// events updates one row in place instead of appending per tick.
	progressKey string
}
