package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"duit/internal/auth"
	"duit/internal/core"
)

// envelope is the JSON shape of every API response. Success responses
// carry data, failures carry a user-safe message.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: true, Message: message})
}

// respondError maps the error taxonomy onto status codes. Validation
// detail is safe to echo; everything else gets a generic message with
// the raw error going to the log only.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrDuplicateUsername):
		writeJSON(w, http.StatusBadRequest, envelope{Message: "username already taken"})
	case errors.Is(err, core.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, envelope{Message: err.Error()})
	case isAuthError(err):
		writeJSON(w, http.StatusUnauthorized, envelope{Message: "authentication required"})
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "internal server error"})
	}
}

// isAuthError collapses every authentication failure mode so callers
// cannot tell a bad password from a missing account or a stale token.
func isAuthError(err error) bool {
	return errors.Is(err, core.ErrUnauthenticated) ||
		errors.Is(err, auth.ErrTokenMalformed) ||
		errors.Is(err, auth.ErrTokenExpired) ||
		errors.Is(err, auth.ErrTokenSignature)
}
