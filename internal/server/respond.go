package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Veraticus/calcman/internal/common"
)

// errorResponse is the body of every failed REST request.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}

// statusFor maps catalog errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		vErr   *common.ValidationError
		maxErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrParse):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorBody describes err for the caller. Internal failures are reported
// generically; the details go to the log.
func errorBody(status int, err error) errorResponse {
	if status == http.StatusInternalServerError {
		return errorResponse{Error: "internal server error"}
	}
	body := errorResponse{Error: err.Error()}
	var vErr *common.ValidationError
	if errors.As(err, &vErr) {
		body.Field = vErr.Field
	}
	var pErr *common.ParseError
	if errors.As(err, &pErr) {
		body.Field = pErr.Path
	}
	return body
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"error", err)
	}
	writeJSON(w, status, errorBody(status, err))
}
