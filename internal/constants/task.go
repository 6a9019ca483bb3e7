package constants

// TaskStatus represents the lifecycle status of an audit task.
type TaskStatus string

const (
	// TaskPending means the task is queued but not yet running
	TaskPending TaskStatus = "pending"
	// TaskRunning means the task is actively producing events
	TaskRunning TaskStatus = "running"
	// TaskCompleted means the task finished successfully
	TaskCompleted TaskStatus = "completed"
	// TaskFailed means the task terminated with an error
	TaskFailed TaskStatus = "failed"
	// TaskCancelled means the task was stopped by an operator
	TaskCancelled TaskStatus = "cancelled"
)

// ActiveTaskStatuses are the statuses under which a task may still emit events.
var ActiveTaskStatuses = []TaskStatus{TaskPending, TaskRunning}

// TerminalTaskStatuses are the statuses a task never leaves.
var TerminalTaskStatuses = []TaskStatus{TaskCompleted, TaskFailed, TaskCancelled}

// IsTerminalTaskStatus reports whether the status is terminal.
func IsTerminalTaskStatus(status TaskStatus) bool {
	for _, s := range TerminalTaskStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// AgentStatus represents the lifecycle status of one agent in the hierarchy.
type AgentStatus string

const (
	// AgentCreated means the agent exists but has not been scheduled
	AgentCreated AgentStatus = "created"
	// AgentWaiting means the agent is blocked on a dependency
	AgentWaiting AgentStatus = "waiting"
	// AgentRunning means the agent is actively working
	AgentRunning AgentStatus = "running"
	// AgentCompleted means the agent finished
	AgentCompleted AgentStatus = "completed"
	// AgentFailed means the agent terminated with an error
	AgentFailed AgentStatus = "failed"
)
