package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avavoice/ava-server/internal/assistant"
)

// AssistantHandler serves the conversation endpoints.
type AssistantHandler struct {
	*Handler
	svc *assistant.Service
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(base *Handler, svc *assistant.Service) *AssistantHandler {
	return &AssistantHandler{Handler: base, svc: svc}
}

// RegisterRoutes registers conversation routes on the router.
func (h *AssistantHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/chat", h.Chat)
	r.Post("/api/conversation/reset", h.Reset)
	r.Get("/api/conversation/summary", h.Summary)
}

type chatRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
	VoiceID   string `json:"voice_id"`
	Speak     *bool  `json:"speak"`
}

type chatResponse struct {
	Reply        string `json:"reply"`
	SessionID    string `json:"session_id"`
	AudioURL     string `json:"audio_url,omitempty"`
	LiveAudio    bool   `json:"live_audio,omitempty"`
	ProcessingMs int64  `json:"processing_ms"`
}

// Chat submits one user turn and returns the assistant reply.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(w, r, &req); err != nil {
		Fail(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	speak := false
	if req.Speak != nil {
		speak = *req.Speak
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	res := h.svc.Respond(r.Context(), assistant.Request{
		UserID:    h.userID(r),
		SessionID: req.SessionID,
		Text:      req.Text,
		VoiceID:   req.VoiceID,
		Speak:     speak,
	})

	OK(w, chatResponse{
		Reply:        res.Reply,
		SessionID:    req.SessionID,
		AudioURL:     res.AudioURL,
		LiveAudio:    res.LiveAudio,
		ProcessingMs: res.ProcessingMs,
	}, "")
}

type resetRequest struct {
	SessionID string `json:"session_id"`
}

// Reset clears the conversation for a session.
func (h *AssistantHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decode(w, r, &req); err != nil {
		Fail(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	h.svc.Reset(r.Context(), req.SessionID)
	OK(w, nil, "Conversation reset")
}

// Summary reports the turn counts for a session.
func (h *AssistantHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	OK(w, map[string]string{"summary": h.svc.Summary(sessionID)}, "")
}
