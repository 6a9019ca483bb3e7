package console

import (
	"testing"

	"github.com/auditdeck/auditdeck/internal/api"
	"github.com/auditdeck/auditdeck/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStatePredicates(t *testing.T) {
	assert.True(t, IsTaskRunning(constants.TaskRunning))
	assert.True(t, IsTaskRunning(constants.TaskPending))
	assert.False(t, IsTaskRunning(constants.TaskCompleted))

	assert.True(t, IsTaskComplete(constants.TaskCompleted))
	assert.True(t, IsTaskComplete(constants.TaskFailed))
	assert.True(t, IsTaskComplete(constants.TaskCancelled))
	assert.False(t, IsTaskComplete(constants.TaskRunning))
}

func TestFilterByAgent(t *testing.T) {
	tree := BuildTree([]api.AgentRecord{
		{AgentID: "root", AgentName: "orchestrator"},
		{AgentID: "a", ParentAgentID: "root", AgentName: "recon_web_surface"},
		{AgentID: "b", ParentAgentID: "root", AgentName: "sqli_login_form"},
	})

	entries := []LogEntry{
		{Title: "one", AgentName: "recon_web_surface"},
		{Title: "two", AgentName: "sqli_login_form"},
		{Title: "three", AgentName: "recon_dns"},
		{Title: "four"},
	}

	t.Run("show all returns input unchanged", func(t *testing.T) {
		got := FilterByAgent(entries, "a", tree, true)
		assert.Equal(t, entries, got)
	})

	t.Run("empty selection returns input unchanged", func(t *testing.T) {
		got := FilterByAgent(entries, "", tree, false)
		assert.Equal(t, entries, got)
	})

	t.Run("unresolvable selection fails open", func(t *testing.T) {
		got := FilterByAgent(entries, "missing", tree, false)
		assert.Equal(t, entries, got)
	})

	t.Run("exact name match", func(t *testing.T) {
		got := FilterByAgent(entries, "b", tree, false)
		require.Len(t, got, 1)
		assert.Equal(t, "two", got[0].Title)
	})

	t.Run("loose first segment match", func(t *testing.T) {
		// Selecting recon_web_surface also matches recon_dns: the first
		// underscore segment tolerates agent-name drift.
		got := FilterByAgent(entries, "a", tree, false)
		require.Len(t, got, 2)
		assert.Equal(t, "one", got[0].Title)
		assert.Equal(t, "three", got[1].Title)
	})

	t.Run("unattributed entries are excluded", func(t *testing.T) {
		got := FilterByAgent(entries, "b", tree, false)
		for _, e := range got {
			assert.NotEmpty(t, e.AgentName)
		}
	})

	t.Run("matching is case insensitive", func(t *testing.T) {
		mixed := []LogEntry{{Title: "up", AgentName: "SQLI_login_FORM"}}
		got := FilterByAgent(mixed, "b", tree, false)
		require.Len(t, got, 1)
	})
}
