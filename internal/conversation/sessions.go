package conversation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// SessionManager hands out one conversation Manager per session and
// serializes Submit calls per session. Managers perform a non-atomic
// read-modify-write (append, call collaborator, append), so each session
// holds its own mutex for the duration of a submit, including retry
// delays.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*session
	factory  func() *Manager
}

type session struct {
	mu      sync.Mutex
	manager *Manager
	// lastActive is unix nanos; atomic because the reaper reads it
	// without taking the session mutex a submit may hold for the full
	// retry schedule.
	lastActive atomic.Int64
}

func (s *session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// NewSessionManager creates a registry; factory builds the Manager for a
// session on first use.
func NewSessionManager(factory func() *Manager) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*session),
		factory:  factory,
	}
}

// Submit routes a user turn to the session's manager, creating the
// session on first use.
func (sm *SessionManager) Submit(ctx context.Context, sessionID, userText string) string {
	s := sm.get(sessionID)
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.Submit(ctx, userText)
}

// Reset clears the session's transcript back to its system turn. Unknown
// sessions are left alone; a fresh session is already in its reset state.
func (sm *SessionManager) Reset(sessionID string) {
	s := sm.lookup(sessionID)
	if s == nil {
		return
	}
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manager.Reset()
}

// Summary returns the session's conversation summary. Unknown sessions
// report an empty conversation without being created.
func (sm *SessionManager) Summary(sessionID string) string {
	s := sm.lookup(sessionID)
	if s == nil {
		return emptySummary
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.Summary()
}

// Remove drops a session entirely, discarding its transcript.
func (sm *SessionManager) Remove(sessionID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, sessionID)
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}

// ReapIdle removes sessions that have been inactive longer than ttl and
// returns how many were dropped. The caller logs the count.
func (sm *SessionManager) ReapIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl).UnixNano()
	sm.mu.Lock()
	defer sm.mu.Unlock()

	var reaped int
	for id, s := range sm.sessions {
		if s.lastActive.Load() < cutoff {
			delete(sm.sessions, id)
			reaped++
		}
	}
	return reaped
}

// get returns the session, creating it on first use.
func (sm *SessionManager) get(sessionID string) *session {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, ok := sm.sessions[sessionID]
	if !ok {
		s = &session{manager: sm.factory()}
		s.touch()
		sm.sessions[sessionID] = s
	}
	return s
}

// lookup returns the session or nil; it never creates one.
func (sm *SessionManager) lookup(sessionID string) *session {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.sessions[sessionID]
}
