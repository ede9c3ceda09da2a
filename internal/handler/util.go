// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gforma/lead-assistant/internal/conversation"
	"github.com/gforma/lead-assistant/internal/service"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// statusFor maps service and engine errors to HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, conversation.ErrBusy):
		return http.StatusConflict, "session is busy"
	case errors.Is(err, conversation.ErrCompleted):
		return http.StatusConflict, "conversation already completed"
	case errors.Is(err, conversation.ErrActionNotAllowed):
		return http.StatusConflict, "action not allowed in current step"
	case errors.Is(err, conversation.ErrEmptyInput):
		return http.StatusBadRequest, "content cannot be empty"
	case errors.Is(err, conversation.ErrUnknownAction):
		return http.StatusBadRequest, "unknown action"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// errorCode is the machine-readable code used on the SSE error event.
func errorCode(err error) string {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, conversation.ErrBusy):
		return "busy"
	case errors.Is(err, conversation.ErrCompleted):
		return "completed"
	case errors.Is(err, conversation.ErrEmptyInput):
		return "empty_input"
	default:
		return "internal_error"
	}
}
