package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Status  int      `json:"status"`
	Details []string `json:"details,omitempty"`
	Err     error    `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "Validation failed")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "Authentication required")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "You do not have permission to perform this action")
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "Resource not found")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "Conflict")
	ErrRateLimited  = New("RATE_LIMITED", http.StatusTooManyRequests, "Too many requests, please try again later")
	ErrUpstream     = New("UPSTREAM_ERROR", http.StatusInternalServerError, "Internal server error")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "Internal server error")

	// ErrCacheMiss is a sentinel for identity/counter cache lookups.
	ErrCacheMiss = errors.New("cache miss")
)

// Validation builds a 400 error carrying the offending field messages.
func Validation(details ...string) *Error {
	e := Clone(ErrValidation, "")
	e.Details = details
	return e
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
