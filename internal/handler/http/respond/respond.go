// Package respond provides utilities for sending HTTP responses in JSON
// format, including the Prometheus HTTP API envelope used by the query
// endpoints. Error helpers sanitize messages to avoid leaking internals.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Prometheus HTTP API error types.
const (
	ErrTypeBadData      = "bad_data"
	ErrTypeUnauthorized = "unauthorized"
	ErrTypeNotFound     = "not_found"
	ErrTypeInternal     = "internal"
)

// APIResponse is the Prometheus HTTP API envelope: {status, data} on success,
// {status, errorType, error} on failure.
type APIResponse struct {
	Status    string `json:"status"`
	Data      any    `json:"data,omitempty"`
	ErrorType string `json:"errorType,omitempty"`
	Error     string `json:"error,omitempty"`
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent; log and move on.
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Success writes a Prometheus-envelope success response wrapping data.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, APIResponse{Status: "success", Data: data})
}

// APIError writes a Prometheus-envelope error response. The message must be
// safe for clients; callers log the underlying cause themselves.
func APIError(w http.ResponseWriter, code int, errType, msg string) {
	JSON(w, code, APIResponse{Status: "error", ErrorType: errType, Error: msg})
}

// Error writes a plain JSON error response with the given status code and
// error message. Used outside the Prometheus-shaped routes.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// InternalError logs the underlying error and writes a generic 500 envelope.
// The cause never reaches the client.
func InternalError(w http.ResponseWriter, err error) {
	slog.Default().Error("internal server error", slog.Any("error", err))
	APIError(w, http.StatusInternalServerError, ErrTypeInternal, "internal server error")
}
