// Package client pushes calculator definitions to a remote deployment, either
// through its REST API or through the CMS admin-ajax endpoint.
//
// Every failure, including a non-2xx status or an undecodable reply, is a
// *common.TransportError. Requests are sent once and never retried.
package client

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/calcman/internal/common"
)

// DefaultTimeout bounds every request when no HTTP client is supplied.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is read for the message.
const maxErrorBody = 4 << 10

// Option configures a client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.httpClient = &http.Client{Timeout: d} }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{httpClient: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = common.OrDefault(o.logger)
	return o
}

// remoteMessage extracts a readable message from a failed response body.
// JSON bodies of the form {"error": "..."} or {"data": {"error": "..."}}
// yield their message; anything else is returned trimmed.
func remoteMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return ""
	}
	var envelope struct {
		Data *struct {
			Error string `json:"error"`
		} `json:"data"`
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Data != nil && envelope.Data.Error != "" {
			return envelope.Data.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

func transportError(op, url string, status int, msg string, err error) error {
	return &common.TransportError{Op: op, URL: url, StatusCode: status, Message: msg, Err: err}
}
