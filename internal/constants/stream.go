package constants

import "time"

const (
	// DefaultHistoryLimit bounds the historical event page fetched on attach.
	DefaultHistoryLimit = 500

	// TreeReloadDebounce is the minimum interval between agent tree reloads
	// triggered by dispatch-class events.
	TreeReloadDebounce = 2 * time.Second

	// TaskPollInterval is how often the task snapshot is refreshed while the
	// task is running.
	TaskPollInterval = 5 * time.Second

	// FeedDialTimeout bounds the WebSocket handshake.
	FeedDialTimeout = 15 * time.Second

	// FeedReconnectBaseDelay is the first reconnect backoff step; it doubles
	// on every failed attempt.
	FeedReconnectBaseDelay = time.Second

	// FeedReconnectMaxAttempts bounds reconnection before the feed gives up
	// and reports a terminal error.
	FeedReconnectMaxAttempts = 5

	// MaxToolOutputChars truncates tool output stored on a log entry.
	MaxToolOutputChars = 1000

	// EntryTitleMaxChars caps the derived title of a log entry.
	EntryTitleMaxChars = 100
)
