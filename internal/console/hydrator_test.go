package console

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/auditdeck/auditdeck/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistorySource struct {
	events []api.RawEvent
	err    error
	calls  int
}

func (f *fakeHistorySource) ListEvents(_ context.Context, _ string, _ int) ([]api.RawEvent, error) {
	f.calls++
	return f.events, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHydrate(t *testing.T) {
	t.Run("folds unordered page and returns watermark", func(t *testing.T) {
		source := &fakeHistorySource{events: []api.RawEvent{
			{Sequence: 3, EventType: "info", Message: "third"},
			{Sequence: 1, EventType: "info", Message: "first"},
			{Sequence: 2, EventType: "info", Message: "second"},
		}}
		log := NewLog()
		h := NewHydrator(source, log, 100, discardLogger())

		watermark := h.Hydrate(context.Background(), "task-1")

		assert.Equal(t, int64(3), watermark)
		entries := log.Entries()
		require.Len(t, entries, 3)
		assert.Equal(t, "first", entries[0].Title)
		assert.Equal(t, "second", entries[1].Title)
		assert.Equal(t, "third", entries[2].Title)
	})

	t.Run("runs at most once per epoch", func(t *testing.T) {
		source := &fakeHistorySource{events: []api.RawEvent{
			{Sequence: 7, EventType: "info", Message: "only"},
		}}
		log := NewLog()
		h := NewHydrator(source, log, 100, discardLogger())

		first := h.Hydrate(context.Background(), "task-1")
		second := h.Hydrate(context.Background(), "task-1")

		assert.Equal(t, first, second)
		assert.Equal(t, 1, source.calls)
		assert.Equal(t, 1, log.Len())
	})

	t.Run("streaming-only events are skipped and do not advance the watermark", func(t *testing.T) {
		source := &fakeHistorySource{events: []api.RawEvent{
			{Sequence: 1, EventType: "info", Message: "durable"},
			{Sequence: 99, EventType: "thinking_token", Message: "tok"},
		}}
		log := NewLog()
		h := NewHydrator(source, log, 100, discardLogger())

		watermark := h.Hydrate(context.Background(), "task-1")

		assert.Equal(t, int64(1), watermark)
		assert.Equal(t, 1, log.Len())
	})

	t.Run("watermark advances even when the fold records nothing", func(t *testing.T) {
		// An event with no user-visible text is skipped by the fold but its
		// sequence is durable and must move the resume cursor.
		source := &fakeHistorySource{events: []api.RawEvent{
			{Sequence: 5, EventType: "quantum_flux"},
		}}
		log := NewLog()
		h := NewHydrator(source, log, 100, discardLogger())

		watermark := h.Hydrate(context.Background(), "task-1")

		assert.Equal(t, int64(5), watermark)
		assert.Equal(t, 0, log.Len())
	})

	t.Run("fetch failure still latches with watermark zero", func(t *testing.T) {
		source := &fakeHistorySource{err: errors.New("backend down")}
		log := NewLog()
		h := NewHydrator(source, log, 100, discardLogger())

		watermark := h.Hydrate(context.Background(), "task-1")

		assert.Equal(t, int64(0), watermark)
		assert.True(t, h.Loaded())

		// The latch must hold: no retry within the epoch.
		h.Hydrate(context.Background(), "task-1")
		assert.Equal(t, 1, source.calls)
	})

	t.Run("reset clears latch and watermark", func(t *testing.T) {
		source := &fakeHistorySource{events: []api.RawEvent{
			{Sequence: 4, EventType: "info", Message: "x"},
		}}
		log := NewLog()
		h := NewHydrator(source, log, 100, discardLogger())

		h.Hydrate(context.Background(), "task-1")
		h.Reset()

		assert.False(t, h.Loaded())
		assert.Equal(t, int64(0), h.Watermark())

		h.Hydrate(context.Background(), "task-2")
		assert.Equal(t, 2, source.calls)
	})
}
