// Package errors provides error types and handling for auditdeck.
// It includes custom error types with error codes for programmatic handling.
package errors

import (
	"errors"
	"fmt"
)

// AppError represents an application error with an associated code.
type AppError struct {
	// Code is an error code string for programmatic handling
	Code string
	// Message is a user-friendly error message
	Message string
	// Cause is the underlying error (for error wrapping)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is to work with AppError.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Code != "" && e.Code == t.Code
	}
	return false
}

// Predefined error codes.
const (
	// ErrCodeInvalidRequest indicates a malformed request or argument
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	// ErrCodeNotFound indicates a missing task, agent, or resource
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeUnauthorized indicates a rejected API key
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeFeedError indicates a live feed transport failure
	ErrCodeFeedError = "FEED_ERROR"
	// ErrCodeFeedClosed indicates the feed was closed by the server
	ErrCodeFeedClosed = "FEED_CLOSED"
	// ErrCodeInternalError indicates an unexpected failure
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// New creates a new AppError with the given code and message.
func New(code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// ErrNotFound creates a not found error.
func ErrNotFound(message string, cause error) *AppError {
	return New(ErrCodeNotFound, message, cause)
}

// ErrInvalidRequest creates an invalid request error.
func ErrInvalidRequest(message string, cause error) *AppError {
	return New(ErrCodeInvalidRequest, message, cause)
}

// ErrFeed creates a live feed transport error.
func ErrFeed(message string, cause error) *AppError {
	return New(ErrCodeFeedError, message, cause)
}

// ErrInternal creates an internal error.
func ErrInternal(message string, cause error) *AppError {
	return New(ErrCodeInternalError, message, cause)
}

// GetErrorCode extracts the error code from an error.
// Returns empty string if the error is not an AppError.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetErrorMessage extracts a user-friendly message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
