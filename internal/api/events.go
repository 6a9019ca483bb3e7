// Package api defines the wire types shared by the auditdeck client and the
// replay server. All types mirror the orchestrator's JSON surface.
package api

import "encoding/json"

// RawEvent is the unit delivered by both the historical event endpoint and
// the live feed. Sequence is monotonically increasing and unique per task; it
// is the only field safe to use for ordering or "have I seen this" checks.
// EventType strings are not exhaustive: consumers must degrade unknown types
// to a generic informational entry rather than dropping them.
type RawEvent struct {
	Sequence       int64          `json:"sequence" yaml:"sequence"`
	EventType      string         `json:"event_type" yaml:"event_type"`
	Message        string         `json:"message,omitempty" yaml:"message,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	ToolName       string         `json:"tool_name,omitempty" yaml:"tool_name,omitempty"`
	ToolInput      map[string]any `json:"tool_input,omitempty" yaml:"tool_input,omitempty"`
	ToolOutput     string         `json:"tool_output,omitempty" yaml:"tool_output,omitempty"`
	ToolDurationMs int64          `json:"tool_duration_ms,omitempty" yaml:"tool_duration_ms,omitempty"`
	Timestamp      int64          `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// AgentName returns the agent attribution carried in the event metadata, or
// empty string when the event is not attributed.
func (e *RawEvent) AgentName() string {
	if e.Metadata == nil {
		return ""
	}
	if name, ok := e.Metadata["agent_name"].(string); ok {
		return name
	}
	return ""
}

// MetadataString returns a string metadata field by key, or empty string.
func (e *RawEvent) MetadataString(key string) string {
	if e.Metadata == nil {
		return ""
	}
	if v, ok := e.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// PrettyToolInput renders the tool input as indented JSON for display.
// Returns empty string when there is no input or it cannot be marshaled.
func (e *RawEvent) PrettyToolInput() string {
	if len(e.ToolInput) == 0 {
		return ""
	}
	data, err := json.MarshalIndent(e.ToolInput, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

// EventsResponse is the payload of GET /api/v1/tasks/{id}/events.
// Events are NOT guaranteed to be ordered; callers must sort by Sequence.
type EventsResponse struct {
	TaskID string     `json:"task_id" yaml:"task_id"`
	Events []RawEvent `json:"events" yaml:"events"`
}
