package api

import (
	"context"
	"sync"
	"time"

	"github.com/avavoice/ava-server/internal/domain"
	"github.com/avavoice/ava-server/internal/store"
)

type fakeRepo struct {
	mu          sync.Mutex
	users       map[string]*domain.User
	medications map[string]*domain.Medication
	logs        []*domain.MedicationLog
	reminders   map[string]*domain.Reminder
	sessions    map[string]*domain.ChatSession
	messages    []*domain.ChatMessage
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:       make(map[string]*domain.User),
		medications: make(map[string]*domain.Medication),
		reminders:   make(map[string]*domain.Reminder),
		sessions:    make(map[string]*domain.ChatSession),
	}
}

func (f *fakeRepo) GetUser(_ context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[userID]
	if u == nil {
		return nil, nil
	}
	copy := *u
	return &copy, nil
}

func (f *fakeRepo) UpsertUser(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy := *user
	f.users[user.ID] = &copy
	return nil
}

func (f *fakeRepo) CreateMedication(_ context.Context, med *domain.Medication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy := *med
	copy.CreatedAt = time.Now()
	copy.UpdatedAt = copy.CreatedAt
	f.medications[med.ID] = &copy
	return nil
}

func (f *fakeRepo) GetMedication(_ context.Context, medicationID string) (*domain.Medication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.medications[medicationID]
	if m == nil {
		return nil, nil
	}
	copy := *m
	return &copy, nil
}

func (f *fakeRepo) ListMedications(_ context.Context, userID string, activeOnly bool) ([]*domain.Medication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Medication
	for _, m := range f.medications {
		if m.UserID != userID {
			continue
		}
		if activeOnly && !m.IsActive {
			continue
		}
		copy := *m
		out = append(out, &copy)
	}
	return out, nil
}

func (f *fakeRepo) UpdateMedication(_ context.Context, med *domain.Medication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.medications[med.ID] == nil {
		return store.ErrNotFound
	}
	copy := *med
	copy.UpdatedAt = time.Now()
	f.medications[med.ID] = &copy
	return nil
}

func (f *fakeRepo) DeactivateMedication(_ context.Context, medicationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.medications[medicationID]
	if m == nil {
		return store.ErrNotFound
	}
	m.IsActive = false
	return nil
}

func (f *fakeRepo) CreateMedicationLog(_ context.Context, log *domain.MedicationLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy := *log
	copy.CreatedAt = time.Now()
	f.logs = append(f.logs, &copy)
	return nil
}

func (f *fakeRepo) ListMedicationLogs(_ context.Context, userID, medicationID string, since time.Time) ([]*domain.MedicationLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.MedicationLog
	for _, l := range f.logs {
		if l.UserID != userID {
			continue
		}
		if medicationID != "" && l.MedicationID != medicationID {
			continue
		}
		if l.CreatedAt.Before(since) {
			continue
		}
		copy := *l
		out = append(out, &copy)
	}
	return out, nil
}

func (f *fakeRepo) CreateReminder(_ context.Context, rem *domain.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy := *rem
	copy.CreatedAt = time.Now()
	copy.UpdatedAt = copy.CreatedAt
	f.reminders[rem.ID] = &copy
	return nil
}

func (f *fakeRepo) GetReminder(_ context.Context, reminderID string) (*domain.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.reminders[reminderID]
	if r == nil {
		return nil, nil
	}
	copy := *r
	return &copy, nil
}

func (f *fakeRepo) ListReminders(_ context.Context, userID string, activeOnly bool) ([]*domain.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Reminder
	for _, r := range f.reminders {
		if r.UserID != userID {
			continue
		}
		if activeOnly && !r.IsActive {
			continue
		}
		copy := *r
		out = append(out, &copy)
	}
	return out, nil
}

func (f *fakeRepo) UpdateReminder(_ context.Context, rem *domain.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reminders[rem.ID] == nil {
		return store.ErrNotFound
	}
	copy := *rem
	copy.UpdatedAt = time.Now()
	f.reminders[rem.ID] = &copy
	return nil
}

func (f *fakeRepo) DeactivateReminder(_ context.Context, reminderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.reminders[reminderID]
	if r == nil {
		return store.ErrNotFound
	}
	r.IsActive = false
	return nil
}

func (f *fakeRepo) CreateChatSession(_ context.Context, session *domain.ChatSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessions[session.ID] != nil {
		return nil
	}
	copy := *session
	copy.SessionStart = time.Now()
	f.sessions[session.ID] = &copy
	return nil
}

func (f *fakeRepo) EndChatSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.sessions[sessionID]
	if s == nil {
		return store.ErrNotFound
	}
	now := time.Now()
	s.SessionEnd = &now
	return nil
}

func (f *fakeRepo) AppendChatMessage(_ context.Context, msg *domain.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy := *msg
	copy.CreatedAt = time.Now()
	f.messages = append(f.messages, &copy)
	if s := f.sessions[msg.SessionID]; s != nil {
		s.MessageCount++
	}
	return nil
}

func (f *fakeRepo) ListChatMessages(_ context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.ChatMessage
	for _, m := range f.messages {
		if m.SessionID != sessionID {
			continue
		}
		copy := *m
		out = append(out, &copy)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) CleanupEndedSessions(_ context.Context, _ time.Duration) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) Ping(_ context.Context) error { return nil }
func (f *fakeRepo) Close() error                 { return nil }

func (f *fakeRepo) messageCount(sessionID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			n++
		}
	}
	return n
}
