// Package api provides HTTP handlers for the Ava assistant API.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/avavoice/ava-server/internal/store"
)

// maxRequestBodySize caps JSON request bodies (1MB).
const maxRequestBodySize = 1 << 20

// Handler provides common handler utilities.
type Handler struct {
	repo          store.Repository // nil when persistence is disabled
	defaultUserID string
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(repo store.Repository, defaultUserID string) *Handler {
	return &Handler{repo: repo, defaultUserID: defaultUserID}
}

// Envelope is the response shape the desktop app expects.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// OK writes a success envelope.
func OK(w http.ResponseWriter, data interface{}, message string) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Fail writes a failure envelope with the given status code.
func Fail(w http.ResponseWriter, status int, message, errCode string) {
	JSON(w, status, Envelope{Success: false, Message: message, Error: errCode})
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decode reads a bounded JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return err
	}
	return nil
}

// userID resolves the acting user: the X-User-ID header when present,
// otherwise the configured default (the app is single-user per install).
func (h *Handler) userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return h.defaultUserID
}

// requireRepo writes a 503 and returns false when persistence is disabled.
func (h *Handler) requireRepo(w http.ResponseWriter) bool {
	if h.repo == nil {
		Fail(w, http.StatusServiceUnavailable, "Database not configured", "DATABASE_UNAVAILABLE")
		return false
	}
	return true
}
