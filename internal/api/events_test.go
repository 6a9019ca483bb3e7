package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawEventAgentName(t *testing.T) {
	t.Run("reads agent name from metadata", func(t *testing.T) {
		ev := RawEvent{Metadata: map[string]any{"agent_name": "recon_web"}}
		assert.Equal(t, "recon_web", ev.AgentName())
	})

	t.Run("empty when metadata missing or wrong type", func(t *testing.T) {
		assert.Empty(t, (&RawEvent{}).AgentName())

		ev := RawEvent{Metadata: map[string]any{"agent_name": 42}}
		assert.Empty(t, ev.AgentName())
	})
}

func TestRawEventMetadataString(t *testing.T) {
	ev := RawEvent{Metadata: map[string]any{"severity": "high", "count": 3}}
	assert.Equal(t, "high", ev.MetadataString("severity"))
	assert.Empty(t, ev.MetadataString("count"))
	assert.Empty(t, ev.MetadataString("missing"))
}

func TestRawEventPrettyToolInput(t *testing.T) {
	t.Run("renders indented json", func(t *testing.T) {
		ev := RawEvent{ToolInput: map[string]any{"url": "https://x"}}
		got := ev.PrettyToolInput()
		assert.Contains(t, got, "\"url\": \"https://x\"")
	})

	t.Run("empty input yields empty string", func(t *testing.T) {
		assert.Empty(t, (&RawEvent{}).PrettyToolInput())
	})
}
