package api

import "github.com/auditdeck/auditdeck/internal/constants"

// TaskCounters aggregates progress metrics reported by the orchestrator.
type TaskCounters struct {
	AgentsTotal   int `json:"agents_total" yaml:"agents_total"`
	AgentsDone    int `json:"agents_done" yaml:"agents_done"`
	ToolCalls     int `json:"tool_calls" yaml:"tool_calls"`
	FindingsCount int `json:"findings_count" yaml:"findings_count"`
	TokensUsed    int `json:"tokens_used" yaml:"tokens_used"`
}

// TaskResponse is the payload of GET /api/v1/tasks/{id}.
type TaskResponse struct {
	TaskID    string               `json:"task_id" yaml:"task_id"`
	Name      string               `json:"name,omitempty" yaml:"name,omitempty"`
	Target    string               `json:"target,omitempty" yaml:"target,omitempty"`
	Status    constants.TaskStatus `json:"status" yaml:"status"`
	Phase     string               `json:"phase,omitempty" yaml:"phase,omitempty"`
	Progress  float64              `json:"progress" yaml:"progress"`
	Counters  TaskCounters         `json:"counters" yaml:"counters"`
	CreatedAt string               `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt string               `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Error     string               `json:"error,omitempty" yaml:"error,omitempty"`
}

// TaskSummary is one row of GET /api/v1/tasks.
type TaskSummary struct {
	TaskID    string               `json:"task_id" yaml:"task_id"`
	Name      string               `json:"name,omitempty" yaml:"name,omitempty"`
	Target    string               `json:"target,omitempty" yaml:"target,omitempty"`
	Status    constants.TaskStatus `json:"status" yaml:"status"`
	CreatedAt string               `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// ErrorResponse is the standard error payload returned by the orchestrator.
type ErrorResponse struct {
	Error   string `json:"error" yaml:"error"`
	Details string `json:"details,omitempty" yaml:"details,omitempty"`
}
