package domain

import (
	"time"
)

// ChatSession groups the messages of one conversation between a user and
// the assistant.
type ChatSession struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	SessionStart time.Time  `json:"session_start"`
	SessionEnd   *time.Time `json:"session_end,omitempty"`
	MessageCount int        `json:"message_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Chat message types. These match the roles of the conversation
// transcript so stored history can be replayed into a prompt.
const (
	MessageUser      = "user"
	MessageAssistant = "assistant"
	MessageSystem    = "system"
)

// ChatMessage is one persisted message in a chat session.
type ChatMessage struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"session_id"`
	UserID           string    `json:"user_id"`
	MessageType      string    `json:"message_type"`
	Content          string    `json:"content"`
	AudioURL         string    `json:"audio_url,omitempty"`
	VoiceInput       bool      `json:"voice_input"`
	ProcessingTimeMs int64     `json:"processing_time_ms,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
