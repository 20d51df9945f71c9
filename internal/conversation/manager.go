// Package conversation maintains the bounded dialogue transcript between a
// user and the assistant and drives the text-generation collaborator with
// the service retry policy.
package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/avavoice/ava-server/internal/retry"
)

// Role tags a transcript turn.
type Role string

// Transcript roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged message in the transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Generator is the external text-generation collaborator. It may fail,
// and it may return empty or whitespace-only text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

const (
	// DefaultMaxTurns is how many non-system turns are retained.
	DefaultMaxTurns = 40

	// DefaultAssistantLabel names the assistant in flattened prompts.
	DefaultAssistantLabel = "Ava"

	// ClarificationReply is returned for empty input without touching the
	// transcript or the collaborator.
	ClarificationReply = "I didn't catch that. Could you please repeat?"

	// FallbackReply is appended and returned when every attempt against
	// the collaborator has failed.
	FallbackReply = "I'm having trouble connecting right now. Could you try asking again?"
)

// emptySummary describes a transcript holding only the system turn.
const emptySummary = "No conversation yet."

// Manager owns one conversation transcript. The transcript always starts
// with exactly one system turn, never grows past MaxTurns non-system
// turns, and is mutated only through Submit and Reset.
//
// A Manager is not safe for concurrent use; callers serialize access per
// session (see SessionManager).
type Manager struct {
	gen            Generator
	policy         retry.Policy
	transcript     []Turn
	maxTurns       int
	assistantLabel string
}

// Option customizes a Manager.
type Option func(*Manager)

// WithMaxTurns caps the retained non-system turns. Values below 1 keep
// the default.
func WithMaxTurns(n int) Option {
	return func(m *Manager) {
		if n >= 1 {
			m.maxTurns = n
		}
	}
}

// WithAssistantLabel sets the persona name used for assistant turns in
// the flattened prompt.
func WithAssistantLabel(label string) Option {
	return func(m *Manager) {
		if label != "" {
			m.assistantLabel = label
		}
	}
}

// WithRetryPolicy replaces the retry policy used by Submit.
func WithRetryPolicy(p retry.Policy) Option {
	return func(m *Manager) {
		m.policy = p
	}
}

// New creates a Manager whose transcript holds the single system turn.
func New(gen Generator, systemPrompt string, opts ...Option) *Manager {
	m := &Manager{
		gen:            gen,
		policy:         retry.Policy{MaxAttempts: retry.DefaultMaxAttempts},
		transcript:     []Turn{{Role: RoleSystem, Content: systemPrompt}},
		maxTurns:       DefaultMaxTurns,
		assistantLabel: DefaultAssistantLabel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Submit appends the user's turn, asks the collaborator for a reply and
// appends it. Collaborator failures never surface: after the retry
// schedule is exhausted the fixed fallback reply is recorded and returned
// so the conversation stays continuous. Empty input short-circuits to the
// clarification reply with no transcript mutation.
func (m *Manager) Submit(ctx context.Context, userText string) string {
	text := strings.TrimSpace(userText)
	if text == "" {
		return ClarificationReply
	}

	m.transcript = append(m.transcript, Turn{Role: RoleUser, Content: text})
	prompt := m.Flatten()

	reply, err := m.policy.Do(ctx, func(ctx context.Context) (string, error) {
		return m.gen.Generate(ctx, prompt)
	})
	if err != nil {
		reply = FallbackReply
	}

	m.transcript = append(m.transcript, Turn{Role: RoleAssistant, Content: reply})
	m.truncate()
	return reply
}

// Flatten renders the transcript as one prompt string: each turn as
// "<Label>: <content>" joined by blank lines, with a trailing assistant
// cue naming where the collaborator should continue.
func (m *Manager) Flatten() string {
	var b strings.Builder
	for i, turn := range m.transcript {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.label(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
	}
	b.WriteString("\n\n")
	b.WriteString(m.assistantLabel)
	b.WriteString(":")
	return b.String()
}

// Reset discards all turns except the original system turn. Idempotent.
func (m *Manager) Reset() {
	m.transcript = m.transcript[:1]
}

// Summary reports the user and assistant message counts, or a fixed
// string when nothing has been said yet.
func (m *Manager) Summary() string {
	if len(m.transcript) <= 1 {
		return emptySummary
	}
	var users, assistants int
	for _, turn := range m.transcript[1:] {
		switch turn.Role {
		case RoleUser:
			users++
		case RoleAssistant:
			assistants++
		}
	}
	return fmt.Sprintf("Conversation: %d user messages, %d AI responses", users, assistants)
}

// Len returns the transcript length including the system turn.
func (m *Manager) Len() int {
	return len(m.transcript)
}

// Transcript returns a copy of the transcript.
func (m *Manager) Transcript() []Turn {
	out := make([]Turn, len(m.transcript))
	copy(out, m.transcript)
	return out
}

// truncate enforces the bound as a single bulk trim: the system turn plus
// the most recent maxTurns turns.
func (m *Manager) truncate() {
	if len(m.transcript) <= m.maxTurns+1 {
		return
	}
	kept := make([]Turn, 0, m.maxTurns+1)
	kept = append(kept, m.transcript[0])
	kept = append(kept, m.transcript[len(m.transcript)-m.maxTurns:]...)
	m.transcript = kept
}

func (m *Manager) label(r Role) string {
	switch r {
	case RoleSystem:
		return "System"
	case RoleUser:
		return "User"
	default:
		return m.assistantLabel
	}
}
