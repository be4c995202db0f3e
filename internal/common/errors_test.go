package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("variables.minAmount", "%v exceeds %v", 50000000, 500000)

	assert.True(t, errors.Is(err, ErrValidation))
	assert.EqualError(t, err, "validation failed: variables.minAmount: 50000000 exceeds 500000")

	wrapped := fmt.Errorf("calculators[3]: %w", err)
	var vErr *ValidationError
	require.ErrorAs(t, wrapped, &vErr)
	assert.Equal(t, "variables.minAmount", vErr.Field)
}

func TestParseError(t *testing.T) {
	tests := []struct {
		err  *ParseError
		name string
		want string
	}{
		{
			name: "path and reason",
			err:  &ParseError{Path: "calculators[0].id", Reason: "required field is missing"},
			want: "malformed configuration: calculators[0].id: required field is missing",
		},
		{
			name: "cause only",
			err:  &ParseError{Err: io.ErrUnexpectedEOF},
			want: "malformed configuration: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
			assert.ErrorIs(t, tt.err, ErrParse)
		})
	}

	assert.ErrorIs(t, &ParseError{Err: io.ErrUnexpectedEOF}, io.ErrUnexpectedEOF)
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError("leasing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `"leasing"`)
}

func TestTransportError(t *testing.T) {
	err := &TransportError{
		Op:         "POST",
		URL:        "https://cms.example.com/wp-admin/admin-ajax.php",
		StatusCode: 500,
		Message:    "internal error",
	}
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t,
		"transport failure: POST https://cms.example.com/wp-admin/admin-ajax.php: status 500: internal error",
		err.Error())

	netErr := &TransportError{Op: "GET", URL: "http://x", Err: context.DeadlineExceeded}
	assert.ErrorIs(t, netErr, context.DeadlineExceeded)
	assert.ErrorIs(t, netErr, ErrTransport)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "rate limit", err: ErrRateLimit, want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "marked retryable", err: &RetryableError{Err: io.EOF, Retryable: true}, want: true},
		{name: "marked permanent", err: &RetryableError{Err: io.EOF}, want: false},
		{name: "transport wins over deadline", err: &TransportError{Err: context.DeadlineExceeded}, want: false},
		{name: "validation", err: NewValidationError("id", "empty"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestUserError(t *testing.T) {
	err := NewUserError("could not open database", io.EOF)
	assert.EqualError(t, err, "could not open database: EOF")
	assert.ErrorIs(t, err, io.EOF)
	assert.EqualError(t, NewUserError("plain", nil), "plain")
}
