// Package assistant glues the conversation manager, speech synthesis and
// chat persistence into the reply pipeline shared by the HTTP API and the
// websocket stream.
package assistant

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/avavoice/ava-server/internal/conversation"
	"github.com/avavoice/ava-server/internal/domain"
	"github.com/avavoice/ava-server/internal/store"
	"github.com/avavoice/ava-server/internal/tts"
	"github.com/google/uuid"
)

// Service produces assistant replies for user turns.
type Service struct {
	sessions *conversation.SessionManager
	synth    *tts.Chain
	audio    *tts.Store
	repo     store.Repository // nil when persistence is disabled
}

// New wires the reply pipeline. repo may be nil.
func New(sessions *conversation.SessionManager, synth *tts.Chain, audio *tts.Store, repo store.Repository) *Service {
	return &Service{sessions: sessions, synth: synth, audio: audio, repo: repo}
}

// Request is one user turn.
type Request struct {
	UserID     string
	SessionID  string
	Text       string
	VoiceID    string
	Speak      bool
	VoiceInput bool
}

// Result is the assistant's reply. AudioURL is set when speech was
// synthesized to a servable file; LiveAudio means a host engine spoke the
// reply directly.
type Result struct {
	Reply        string
	AudioURL     string
	LiveAudio    bool
	ProcessingMs int64
}

// Respond submits the turn to the session's conversation manager,
// optionally synthesizes the reply and persists the exchange. Collaborator
// failures never propagate; the reply is at worst the conversation
// fallback string.
func (s *Service) Respond(ctx context.Context, req Request) *Result {
	start := time.Now()

	// Empty input never reaches the collaborator and is not recorded.
	// Checked on the input rather than the reply text so a genuine model
	// reply that happens to match the clarification wording still gets
	// spoken and persisted.
	if strings.TrimSpace(req.Text) == "" {
		return &Result{
			Reply:        conversation.ClarificationReply,
			ProcessingMs: time.Since(start).Milliseconds(),
		}
	}

	reply := s.sessions.Submit(ctx, req.SessionID, req.Text)
	res := &Result{
		Reply:        reply,
		ProcessingMs: time.Since(start).Milliseconds(),
	}

	if req.Speak && s.synth != nil && s.synth.Available() {
		s.speak(ctx, reply, req.VoiceID, res)
	}

	s.persistExchange(ctx, req, res)
	return res
}

// Reset clears the session's transcript.
func (s *Service) Reset(ctx context.Context, sessionID string) {
	s.sessions.Reset(sessionID)
	if s.repo != nil {
		if err := s.repo.EndChatSession(ctx, sessionID); err != nil {
			slog.Debug("No chat session to end on reset", "session_id", sessionID, "error", err)
		}
	}
}

// Summary returns the session's conversation summary.
func (s *Service) Summary(sessionID string) string {
	return s.sessions.Summary(sessionID)
}

func (s *Service) speak(ctx context.Context, text, voiceID string, res *Result) {
	audio, err := s.synth.Synthesize(ctx, text, voiceID)
	if err != nil {
		slog.Warn("Speech synthesis failed", "error", err)
		return
	}
	if audio.Live() {
		res.LiveAudio = true
		return
	}
	filename, err := s.audio.Save(audio.Data, audio.Format)
	if err != nil {
		slog.Warn("Failed to store synthesized audio", "error", err)
		return
	}
	res.AudioURL = "/audio/" + filename
}

// persistExchange records the user and assistant messages. Persistence is
// best effort: a failing database must not break the conversation.
func (s *Service) persistExchange(ctx context.Context, req Request, res *Result) {
	if s.repo == nil {
		return
	}

	session := &domain.ChatSession{ID: req.SessionID, UserID: req.UserID}
	if err := s.repo.CreateChatSession(ctx, session); err != nil {
		slog.Warn("Failed to ensure chat session", "session_id", req.SessionID, "error", err)
		return
	}

	userMsg := &domain.ChatMessage{
		ID:          uuid.NewString(),
		SessionID:   req.SessionID,
		UserID:      req.UserID,
		MessageType: domain.MessageUser,
		Content:     strings.TrimSpace(req.Text),
		VoiceInput:  req.VoiceInput,
	}
	if err := s.repo.AppendChatMessage(ctx, userMsg); err != nil {
		slog.Warn("Failed to persist user message", "session_id", req.SessionID, "error", err)
		return
	}

	assistantMsg := &domain.ChatMessage{
		ID:               uuid.NewString(),
		SessionID:        req.SessionID,
		UserID:           req.UserID,
		MessageType:      domain.MessageAssistant,
		Content:          res.Reply,
		AudioURL:         res.AudioURL,
		ProcessingTimeMs: res.ProcessingMs,
	}
	if err := s.repo.AppendChatMessage(ctx, assistantMsg); err != nil {
		slog.Warn("Failed to persist assistant message", "session_id", req.SessionID, "error", err)
	}
}
