package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("message without cause", func(t *testing.T) {
		err := ErrNotFound("task not found", nil)
		assert.Equal(t, "task not found", err.Error())
	})

	t.Run("message with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := ErrFeed("event stream connection failed", cause)
		assert.Equal(t, "event stream connection failed: connection refused", err.Error())
	})

	t.Run("unwraps to the cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := ErrInternal("something broke", cause)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("is matches by code", func(t *testing.T) {
		err := ErrFeed("stream lost", nil)
		assert.ErrorIs(t, err, &AppError{Code: ErrCodeFeedError})
		assert.NotErrorIs(t, err, &AppError{Code: ErrCodeNotFound})
	})
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeInvalidRequest, GetErrorCode(ErrInvalidRequest("bad", nil)))
	assert.Empty(t, GetErrorCode(errors.New("plain")))

	wrapped := fmt.Errorf("context: %w", ErrNotFound("missing", nil))
	assert.Equal(t, ErrCodeNotFound, GetErrorCode(wrapped))
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, "missing", GetErrorMessage(ErrNotFound("missing", errors.New("detail"))))
	assert.Equal(t, "plain", GetErrorMessage(errors.New("plain")))
}
