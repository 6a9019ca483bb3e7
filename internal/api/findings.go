package api

// FindingSeverity ranks a security finding.
type FindingSeverity string

const (
	// SeverityCritical is the highest severity
	SeverityCritical FindingSeverity = "critical"
	// SeverityHigh indicates a serious issue
	SeverityHigh FindingSeverity = "high"
	// SeverityMedium is the default severity when the orchestrator omits one
	SeverityMedium FindingSeverity = "medium"
	// SeverityLow indicates a minor issue
	SeverityLow FindingSeverity = "low"
	// SeverityInfo is informational only
	SeverityInfo FindingSeverity = "info"
)

// Finding is one confirmed or candidate security finding.
type Finding struct {
	FindingID string          `json:"finding_id" yaml:"finding_id"`
	Title     string          `json:"title" yaml:"title"`
	Severity  FindingSeverity `json:"severity" yaml:"severity"`
	AgentName string          `json:"agent_name,omitempty" yaml:"agent_name,omitempty"`
	Location  string          `json:"location,omitempty" yaml:"location,omitempty"`
	Verified  bool            `json:"verified" yaml:"verified"`
	CreatedAt string          `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// FindingsResponse is the payload of GET /api/v1/tasks/{id}/findings.
type FindingsResponse struct {
	TaskID   string    `json:"task_id" yaml:"task_id"`
	Findings []Finding `json:"findings" yaml:"findings"`
}
