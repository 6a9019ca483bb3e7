package console

import (
	"strings"

	"github.com/auditdeck/auditdeck/internal/constants"
)

// IsTaskRunning reports whether the task may still produce live events.
func IsTaskRunning(status constants.TaskStatus) bool {
	return status == constants.TaskRunning || status == constants.TaskPending
}

// IsTaskComplete reports whether the task reached a terminal status.
func IsTaskComplete(status constants.TaskStatus) bool {
	return constants.IsTerminalTaskStatus(status)
}

// FilterByAgent returns the subset of entries attributed to the selected
// agent. With showAll or no selection the input is returned unchanged. The
// selected id is resolved to a name via the agent forest; matching is
// case-insensitive with a secondary loose match on the name's first
// underscore-delimited segment, which tolerates agent-name drift between
// dispatch time and later reference. An unresolvable selection fails open
// and returns all entries rather than an empty screen.
func FilterByAgent(entries []LogEntry, selectedID string, tree []*AgentNode, showAll bool) []LogEntry {
	if showAll || selectedID == "" {
		return entries
	}

	name := FindAgentName(tree, selectedID)
	if name == "" {
		return entries
	}

	prefix := firstSegment(name)
	filtered := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		if e.AgentName == "" {
			continue
		}
		if strings.EqualFold(e.AgentName, name) || strings.EqualFold(firstSegment(e.AgentName), prefix) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// firstSegment returns the part of name before the first underscore.
func firstSegment(name string) string {
	if idx := strings.Index(name, "_"); idx != -1 {
		return name[:idx]
	}
	return name
}
