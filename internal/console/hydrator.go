package console

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/auditdeck/auditdeck/internal/api"
)

// HistorySource fetches the durable event history for a task. The page is
// bounded by limit and carries no ordering guarantee.
type HistorySource interface {
	ListEvents(ctx context.Context, taskID string, limit int) ([]api.RawEvent, error)
}

// Hydrator performs the one-time fold of persisted events into the log before
// live events are accepted. It runs at most once per task epoch: the latch is
// cleared only by Reset on a task switch. The watermark it produces is the
// live feed's resume cursor and never decreases within an epoch.
type Hydrator struct {
	source HistorySource
	log    *Log
	logger *slog.Logger
	limit  int

	mu        sync.Mutex
	loaded    bool
	watermark int64
}

// NewHydrator creates a hydrator folding into the given log.
func NewHydrator(source HistorySource, log *Log, limit int, logger *slog.Logger) *Hydrator {
	return &Hydrator{
		source: source,
		log:    log,
		limit:  limit,
		logger: logger,
	}
}

// Hydrate fetches the historical event page, sorts it ascending by sequence,
// folds every event into the log, and returns the highest sequence folded.
// A second call within the same epoch is a no-op returning the existing
// watermark. A fetch failure still marks the hydrator loaded and returns
// watermark 0: the live connection must never be blocked indefinitely on a
// historical-fetch error.
func (h *Hydrator) Hydrate(ctx context.Context, taskID string) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.loaded {
		return h.watermark
	}
	h.loaded = true

	events, err := h.source.ListEvents(ctx, taskID, h.limit)
	if err != nil {
		h.logger.Warn("historical event fetch failed, proceeding without backlog",
			"task_id", taskID, "error", err)
		return 0
	}

	slices.SortFunc(events, func(a, b api.RawEvent) int {
		switch {
		case a.Sequence < b.Sequence:
			return -1
		case a.Sequence > b.Sequence:
			return 1
		}
		return 0
	})

	for _, ev := range events {
		if IsStreamingOnly(ev.EventType) {
			continue
		}
		FoldEvent(h.log, ev)
		if ev.Sequence > h.watermark {
			h.watermark = ev.Sequence
		}
	}

	h.logger.Debug("hydration complete",
		"task_id", taskID,
		"events", len(events),
		"watermark", h.watermark)

	return h.watermark
}

// Loaded reports whether hydration has run (or failed) for this epoch.
func (h *Hydrator) Loaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loaded
}

// Watermark returns the highest sequence folded so far.
func (h *Hydrator) Watermark() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.watermark
}

// Reset clears the latch and watermark. Called only on task switch.
func (h *Hydrator) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loaded = false
	h.watermark = 0
}
