// Package chat provides the WebSocket conversation stream.
package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/avavoice/ava-server/internal/assistant"
)

// WebSocketHandler handles a WebSocket-based chat session. Each connection
// gets its own conversation session; messages are answered in order.
type WebSocketHandler struct {
	svc           *assistant.Service
	defaultUserID string
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a new WebSocket chat handler.
func NewWebSocketHandler(svc *assistant.Service, defaultUserID, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		svc:           svc,
		defaultUserID: defaultUserID,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// wsMessage represents the client-to-server message structure.
type wsMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	VoiceID string `json:"voice_id,omitempty"`
	Speak   bool   `json:"speak,omitempty"`
}

// wsReply represents the server-to-client message structure.
type wsReply struct {
	Type         string `json:"type"`
	Content      string `json:"content,omitempty"`
	SessionID    string `json:"session_id,omitempty"`
	AudioURL     string `json:"audio_url,omitempty"`
	LiveAudio    bool   `json:"live_audio,omitempty"`
	ProcessingMs int64  `json:"processing_ms,omitempty"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = h.defaultUserID
	}
	sessionID := uuid.NewString()
	slog.Info("Chat session started", "session_id", sessionID, "ip", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := h.writeJSON(ctx, ws, wsReply{Type: "session", SessionID: sessionID}); err != nil {
		slog.Debug("Failed to send session frame", "error", err)
		return
	}

	h.readLoop(ctx, ws, userID, sessionID)
	slog.Info("Chat session ended", "session_id", sessionID)
}

func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, userID, sessionID string) {
	for {
		_, message, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "session_id", sessionID)
			} else {
				slog.Warn("WebSocket read error", "error", err, "session_id", sessionID)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			if err := h.writeJSON(ctx, ws, wsReply{Type: "error", Content: "invalid message"}); err != nil {
				return
			}
			continue
		}

		switch msg.Type {
		case "message":
			res := h.svc.Respond(ctx, assistant.Request{
				UserID:    userID,
				SessionID: sessionID,
				Text:      msg.Content,
				VoiceID:   msg.VoiceID,
				Speak:     msg.Speak,
			})
			reply := wsReply{
				Type:         "reply",
				Content:      res.Reply,
				SessionID:    sessionID,
				AudioURL:     res.AudioURL,
				LiveAudio:    res.LiveAudio,
				ProcessingMs: res.ProcessingMs,
			}
			if err := h.writeJSON(ctx, ws, reply); err != nil {
				slog.Debug("Failed to send reply", "error", err, "session_id", sessionID)
				return
			}
		case "reset":
			h.svc.Reset(ctx, sessionID)
			if err := h.writeJSON(ctx, ws, wsReply{Type: "reset", SessionID: sessionID}); err != nil {
				return
			}
		case "summary":
			reply := wsReply{Type: "summary", Content: h.svc.Summary(sessionID), SessionID: sessionID}
			if err := h.writeJSON(ctx, ws, reply); err != nil {
				return
			}
		case "ping":
			if err := h.writeJSON(ctx, ws, wsReply{Type: "pong"}); err != nil {
				return
			}
		default:
			slog.Debug("Unknown message type", "type", msg.Type, "session_id", sessionID)
		}
	}
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *WebSocketHandler) writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}
