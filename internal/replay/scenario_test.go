package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/auditdeck/auditdeck/internal/api"
	"github.com/auditdeck/auditdeck/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validScenario() *Scenario {
	return &Scenario{
		Task: api.TaskResponse{TaskID: "task-1", Status: constants.TaskRunning},
		History: []api.RawEvent{
			{Sequence: 1, EventType: "info", Message: "one"},
			{Sequence: 2, EventType: "info", Message: "two"},
		},
		Live: []TimedEvent{
			{DelayMs: 10, Event: api.RawEvent{Sequence: 3, EventType: "info", Message: "three"}},
			{DelayMs: 10, Event: api.RawEvent{EventType: "thinking_token", Message: "tok"}},
		},
	}
}

func TestScenarioValidate(t *testing.T) {
	t.Run("valid scenario passes", func(t *testing.T) {
		require.NoError(t, validScenario().Validate())
	})

	t.Run("requires task id", func(t *testing.T) {
		sc := validScenario()
		sc.Task.TaskID = ""
		assert.ErrorContains(t, sc.Validate(), "task_id")
	})

	t.Run("rejects duplicate sequences", func(t *testing.T) {
		sc := validScenario()
		sc.Live = append(sc.Live, TimedEvent{Event: api.RawEvent{Sequence: 1, EventType: "info"}})
		assert.ErrorContains(t, sc.Validate(), "duplicate")
	})

	t.Run("rejects non-positive sequences", func(t *testing.T) {
		sc := validScenario()
		sc.History = append(sc.History, api.RawEvent{Sequence: 0, EventType: "info"})
		assert.ErrorContains(t, sc.Validate(), "positive")
	})

	t.Run("rejects streaming-only events in history", func(t *testing.T) {
		sc := validScenario()
		sc.History = append(sc.History, api.RawEvent{Sequence: 5, EventType: "thinking_token"})
		assert.ErrorContains(t, sc.Validate(), "streaming-only")
	})

	t.Run("streaming-only live events need no sequence", func(t *testing.T) {
		sc := validScenario()
		sc.Live = append(sc.Live,
			TimedEvent{Event: api.RawEvent{EventType: "thinking_start"}},
			TimedEvent{Event: api.RawEvent{EventType: "thinking_end"}},
		)
		require.NoError(t, sc.Validate())
	})
}

func TestLoadScenario(t *testing.T) {
	t.Run("loads a valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scenario.yaml")
		content := `task:
  task_id: task-demo
  name: Demo audit
  status: running
agents:
  - agent_id: root
    agent_name: orchestrator
    status: running
history:
  - sequence: 1
    event_type: info
    message: started
live:
  - delay_ms: 100
    event:
      sequence: 2
      event_type: task_complete
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		sc, err := LoadScenario(path)
		require.NoError(t, err)
		assert.Equal(t, "task-demo", sc.Task.TaskID)
		require.Len(t, sc.History, 1)
		assert.Equal(t, "started", sc.History[0].Message)
		require.Len(t, sc.Live, 1)
		assert.Equal(t, int64(100), sc.Live[0].DelayMs)
	})

	t.Run("rejects missing file", func(t *testing.T) {
		_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("task: [unclosed"), 0o600))

		_, err := LoadScenario(path)
		assert.ErrorContains(t, err, "parse")
	})

	t.Run("rejects invalid scenario", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("task:\n  name: no id\n"), 0o600))

		_, err := LoadScenario(path)
		assert.ErrorContains(t, err, "task_id")
	})
}
