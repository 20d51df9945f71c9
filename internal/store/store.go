// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/avavoice/ava-server/internal/domain"
)

// ErrNotFound is returned by updates that matched no row.
var ErrNotFound = errors.New("store: not found")

// Repository defines the persistence surface for users, medications,
// reminders and chat history. All getters return (nil, nil) when the row
// does not exist.
type Repository interface {
	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// UpsertUser creates or updates a user record.
	UpsertUser(ctx context.Context, user *domain.User) error

	// CreateMedication inserts a medication row.
	CreateMedication(ctx context.Context, med *domain.Medication) error

	// GetMedication retrieves a medication by ID.
	GetMedication(ctx context.Context, medicationID string) (*domain.Medication, error)

	// ListMedications returns a user's medications, optionally only
	// active ones, newest first.
	ListMedications(ctx context.Context, userID string, activeOnly bool) ([]*domain.Medication, error)

	// UpdateMedication rewrites a medication row.
	UpdateMedication(ctx context.Context, med *domain.Medication) error

	// DeactivateMedication soft-deletes a medication.
	DeactivateMedication(ctx context.Context, medicationID string) error

	// CreateMedicationLog records a dose outcome.
	CreateMedicationLog(ctx context.Context, log *domain.MedicationLog) error

	// ListMedicationLogs returns dose outcomes for a user since a cutoff,
	// optionally filtered to one medication.
	ListMedicationLogs(ctx context.Context, userID, medicationID string, since time.Time) ([]*domain.MedicationLog, error)

	// CreateReminder inserts a reminder row.
	CreateReminder(ctx context.Context, rem *domain.Reminder) error

	// GetReminder retrieves a reminder by ID.
	GetReminder(ctx context.Context, reminderID string) (*domain.Reminder, error)

	// ListReminders returns a user's reminders, optionally only active ones.
	ListReminders(ctx context.Context, userID string, activeOnly bool) ([]*domain.Reminder, error)

	// UpdateReminder rewrites a reminder row.
	UpdateReminder(ctx context.Context, rem *domain.Reminder) error

	// DeactivateReminder soft-deletes a reminder.
	DeactivateReminder(ctx context.Context, reminderID string) error

	// CreateChatSession opens a chat session. Calling it again with the
	// same ID is a no-op.
	CreateChatSession(ctx context.Context, session *domain.ChatSession) error

	// EndChatSession stamps session_end and the final message count.
	EndChatSession(ctx context.Context, sessionID string) error

	// AppendChatMessage persists one chat message.
	AppendChatMessage(ctx context.Context, msg *domain.ChatMessage) error

	// ListChatMessages returns a session's messages in insertion order,
	// capped at limit when limit > 0.
	ListChatMessages(ctx context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error)

	// CleanupEndedSessions deletes ended sessions (and their messages)
	// older than ttl, returning how many sessions were removed.
	CleanupEndedSessions(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
