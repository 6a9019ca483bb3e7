package api

import "github.com/auditdeck/auditdeck/internal/constants"

// AgentRecord is one flat row of the orchestration hierarchy as transmitted
// by GET /api/v1/tasks/{id}/agents. ParentAgentID references another record's
// AgentID; the tree shape is computed client-side and never transmitted.
type AgentRecord struct {
	AgentID       string                `json:"agent_id" yaml:"agent_id"`
	ParentAgentID string                `json:"parent_agent_id,omitempty" yaml:"parent_agent_id,omitempty"`
	AgentName     string                `json:"agent_name" yaml:"agent_name"`
	AgentType     string                `json:"agent_type,omitempty" yaml:"agent_type,omitempty"`
	Status        constants.AgentStatus `json:"status" yaml:"status"`
	Iterations    int                   `json:"iterations" yaml:"iterations"`
	ToolCalls     int                   `json:"tool_calls" yaml:"tool_calls"`
	TokensUsed    int                   `json:"tokens_used" yaml:"tokens_used"`
	FindingsCount int                   `json:"findings_count" yaml:"findings_count"`
}

// AgentTreeResponse is the payload of GET /api/v1/tasks/{id}/agents.
type AgentTreeResponse struct {
	TaskID string        `json:"task_id" yaml:"task_id"`
	Agents []AgentRecord `json:"agents" yaml:"agents"`
}
