// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Catalog errors.
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrParse      = errors.New("malformed configuration")

	// Remote collaborator errors.
	ErrTransport = errors.New("transport failure")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError names the definition field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a validation error for field.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ParseError reports a snapshot or payload that is not well-formed.
// Path is a dotted location such as "calculators[2].variables.minAmount".
type ParseError struct {
	Err    error
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	msg := ErrParse.Error()
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrParse, e.Err}
	}
	return []error{ErrParse}
}

// NotFoundError creates an error for an unknown calculator id.
func NotFoundError(id string) error {
	return fmt.Errorf("%w: calculator %q", ErrNotFound, id)
}

// TransportError describes a failed exchange with a remote collaborator.
// It is surfaced verbatim and never retried by the caller that produced it.
type TransportError struct {
	Err        error
	Op         string
	URL        string
	Message    string
	StatusCode int
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s: %s %s", ErrTransport, e.Op, e.URL)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTransport, e.Err}
	}
	return []error{ErrTransport}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
// Transport errors from the REST and CMS collaborators are never retryable.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrTransport) {
		return false
	}

	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
