package console

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAppendAndGet(t *testing.T) {
	log := NewLog()

	id := log.Append(LogEntry{Kind: KindInfo, Title: "hello"})
	require.NotEmpty(t, id)

	entry, ok := log.Get(id)
	require.True(t, ok)
	assert.Equal(t, "hello", entry.Title)
	assert.NotEmpty(t, entry.Timestamp)
	assert.Equal(t, 1, log.Len())

	_, ok = log.Get("unknown")
	assert.False(t, ok)
}

func TestLogPatch(t *testing.T) {
	log := NewLog()
	id := log.Append(LogEntry{Kind: KindThinking, Title: "draft", IsStreaming: true})

	log.Patch(id, func(e *LogEntry) {
		e.Title = "final"
		e.IsStreaming = false
	})

	entry, ok := log.Get(id)
	require.True(t, ok)
	assert.Equal(t, "final", entry.Title)
	assert.False(t, entry.IsStreaming)

	// Patching an unknown id is a no-op.
	log.Patch("unknown", func(e *LogEntry) { e.Title = "boom" })
	assert.Equal(t, 1, log.Len())
}

func TestLogRemove(t *testing.T) {
	log := NewLog()
	keep := log.Append(LogEntry{Kind: KindInfo, Title: "keep"})
	drop := log.Append(LogEntry{Kind: KindThinking, Title: "drop"})

	log.Remove(drop)

	assert.Equal(t, 1, log.Len())
	_, ok := log.Get(drop)
	assert.False(t, ok)
	_, ok = log.Get(keep)
	assert.True(t, ok)

	log.Remove("unknown")
	assert.Equal(t, 1, log.Len())
}

func TestLogCoalesceProgress(t *testing.T) {
	t.Run("same key updates in place", func(t *testing.T) {
		log := NewLog()
		first := log.CoalesceProgress("scanning", "scanning 1/10", "")
		second := log.CoalesceProgress("scanning", "scanning 5/10", "")

		assert.Equal(t, first, second)
		assert.Equal(t, 1, log.Len())

		entry, _ := log.Get(first)
		assert.Equal(t, "scanning 5/10", entry.Title)
	})

	t.Run("different key appends", func(t *testing.T) {
		log := NewLog()
		log.CoalesceProgress("scanning", "scanning 1/10", "")
		log.CoalesceProgress("indexing", "indexing 1/4", "")

		assert.Equal(t, 2, log.Len())
	})

	t.Run("intervening entry of another kind breaks coalescing", func(t *testing.T) {
		log := NewLog()
		first := log.CoalesceProgress("scanning", "scanning 1/10", "")
		log.Append(LogEntry{Kind: KindTool, Title: "http_probe", Tool: &ToolCall{Name: "http_probe", Status: ToolRunning}})
		third := log.CoalesceProgress("scanning", "scanning 2/10", "")

		assert.NotEqual(t, first, third)
		assert.Equal(t, 3, log.Len())
	})
}

func TestLogResolveTool(t *testing.T) {
	t.Run("resolves running tool entry", func(t *testing.T) {
		log := NewLog()
		id := log.Append(LogEntry{
			Kind:  KindTool,
			Title: "http_probe",
			Tool:  &ToolCall{Name: "http_probe", Status: ToolRunning},
		})

		resolved := log.ResolveTool("http_probe", "200 OK", 412)

		assert.Equal(t, id, resolved)
		assert.Equal(t, 1, log.Len())

		entry, _ := log.Get(id)
		require.NotNil(t, entry.Tool)
		assert.Equal(t, ToolCompleted, entry.Tool.Status)
		assert.Equal(t, int64(412), entry.Tool.DurationMs)
		assert.Equal(t, "200 OK", entry.Content)
	})

	t.Run("missing start appends completed entry", func(t *testing.T) {
		log := NewLog()
		id := log.ResolveTool("run_sqlmap", "injectable", 2390)

		assert.Equal(t, 1, log.Len())
		entry, ok := log.Get(id)
		require.True(t, ok)
		require.NotNil(t, entry.Tool)
		assert.Equal(t, ToolCompleted, entry.Tool.Status)
	})

	t.Run("resolves most recent running entry of the name", func(t *testing.T) {
		log := NewLog()
		log.Append(LogEntry{Kind: KindTool, Title: "grep", Tool: &ToolCall{Name: "grep", Status: ToolCompleted}})
		running := log.Append(LogEntry{Kind: KindTool, Title: "grep", Tool: &ToolCall{Name: "grep", Status: ToolRunning}})

		resolved := log.ResolveTool("grep", "3 matches", 10)
		assert.Equal(t, running, resolved)
	})
}

func TestLogEntriesSnapshot(t *testing.T) {
	log := NewLog()
	for i := 0; i < 3; i++ {
		log.Append(LogEntry{Kind: KindInfo, Title: fmt.Sprintf("entry %d", i)})
	}

	snapshot := log.Entries()
	require.Len(t, snapshot, 3)

	// Mutating the snapshot must not affect the log.
	snapshot[0].Title = "mutated"
	fresh := log.Entries()
	assert.Equal(t, "entry 0", fresh[0].Title)
}

func TestLogReset(t *testing.T) {
	log := NewLog()
	id := log.Append(LogEntry{Kind: KindInfo, Title: "stale"})

	log.Reset()

	assert.Equal(t, 0, log.Len())
	_, ok := log.Get(id)
	assert.False(t, ok)
}
