package console

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Log is the ordered, append/patch/remove entry store behind the activity
// view. Entries are keyed by a locally generated id so streaming content and
// tool completions can be correlated back to the row they update. All methods
// are safe for concurrent use; the feed reader and the render loop share one
// Log.
type Log struct {
	mu      sync.Mutex
	entries []*LogEntry
	byID    map[string]*LogEntry
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{byID: make(map[string]*LogEntry)}
}

// Append inserts the entry at the end, assigning a fresh id and capture
// timestamp, and returns the id so the caller can patch it later.
func (l *Log) Append(entry LogEntry) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.append(entry)
}

func (l *Log) append(entry LogEntry) string {
	entry.ID = uuid.NewString()
	entry.Timestamp = time.Now().Format(time.TimeOnly)
	stored := entry
	l.entries = append(l.entries, &stored)
	l.byID[stored.ID] = &stored
	return stored.ID
}

// Patch applies mutate to the entry with the given id, in place.
// No-op when the id is unknown.
func (l *Log) Patch(id string, mutate func(*LogEntry)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.byID[id]; ok {
		mutate(entry)
	}
}

// Remove deletes the entry with the given id. Used when a streaming reasoning
// burst cleans down to nothing and must be discarded rather than shown.
func (l *Log) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.byID[id]; !ok {
		return
	}
	delete(l.byID, id)
	for i, entry := range l.entries {
		if entry.ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			break
		}
	}
}

// CoalesceProgress updates the latest progress row in place when it carries
// the same key, otherwise appends a new one. Progress events arrive at high
// frequency and must not flood the log with one row per tick.
func (l *Log) CoalesceProgress(progressKey, title, agentName string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Only coalesce into the most recent info-kind entry; anything newer of
	// another kind means the progress line has scrolled past and a fresh row
	// reads better than mutating history.
	for i := len(l.entries) - 1; i >= 0; i-- {
		entry := l.entries[i]
		if entry.Kind != KindInfo {
			continue
		}
		if entry.progressKey == progressKey {
			entry.Title = title
			return entry.ID
		}
		break
	}

	return l.append(LogEntry{
		Kind:        KindInfo,
		Title:       title,
		AgentName:   agentName,
		progressKey: progressKey,
	})
}

// ResolveTool transitions the most recent running tool entry with the given
// name to completed, attaching output and duration. When no matching running
// entry exists (the start event may have been missed), a new completed entry
// is appended instead.
func (l *Log) ResolveTool(toolName, output string, durationMs int64) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := len(l.entries) - 1; i >= 0; i-- {
		entry := l.entries[i]
		if entry.Tool == nil || entry.Tool.Name != toolName || entry.Tool.Status != ToolRunning {
			continue
		}
		entry.Tool.Status = ToolCompleted
		entry.Tool.DurationMs = durationMs
		if output != "" {
			entry.Content = output
		}
		return entry.ID
	}

	return l.append(LogEntry{
		Kind:    KindTool,
		Title:   toolName,
		Content: output,
		Tool: &ToolCall{
			Name:       toolName,
			Status:     ToolCompleted,
			DurationMs: durationMs,
		},
	})
}

// Entries returns a snapshot copy of all entries in order.
func (l *Log) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]LogEntry, len(l.entries))
	for i, entry := range l.entries {
		out[i] = *entry
	}
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Get returns a copy of the entry with the given id.
func (l *Log) Get(id string) (LogEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.byID[id]; ok {
		return *entry, true
	}
	return LogEntry{}, false
}

// Reset discards all entries. Called on task switch.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.byID = make(map[string]*LogEntry)
}
