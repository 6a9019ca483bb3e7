package logger

import (
	"context"
	"time"
)

// GetDeadlineInfo returns slog key/value pairs describing the context
// deadline, for attaching to outbound request logs.
func GetDeadlineInfo(ctx context.Context) []any {
	deadline, ok := ctx.Deadline()
	if !ok {
		return []any{"hasDeadline", false}
	}
	return []any{
		"hasDeadline", true,
		"deadline", deadline.Format(time.RFC3339),
		"remaining", time.Until(deadline).String(),
	}
}
