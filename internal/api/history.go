package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avavoice/ava-server/internal/domain"
)

// HistoryHandler serves persisted chat history.
type HistoryHandler struct {
	*Handler
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(base *Handler) *HistoryHandler {
	return &HistoryHandler{Handler: base}
}

// RegisterRoutes registers history routes on the router.
func (h *HistoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/history/{sessionID}", h.Messages)
}

// Messages returns a session's messages in insertion order. limit caps the
// result when given.
func (h *HistoryHandler) Messages(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			Fail(w, http.StatusBadRequest, "Invalid limit parameter", "INVALID_LIMIT")
			return
		}
		limit = n
	}

	msgs, err := h.repo.ListChatMessages(r.Context(), chi.URLParam(r, "sessionID"), limit)
	if err != nil {
		slog.Error("Failed to list chat messages", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to list chat messages", err.Error())
		return
	}
	if msgs == nil {
		msgs = []*domain.ChatMessage{}
	}
	OK(w, msgs, "")
}
