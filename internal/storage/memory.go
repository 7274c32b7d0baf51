// Package storage provides the in-memory session store. It is the single
// source of truth for what step is active and how much time remains.
package storage

import (
	"sync"
	"time"

	"github.com/hammamikhairi/hearth/internal/domain"
	"github.com/hammamikhairi/hearth/internal/logger"
)

// Compile-time interface check.
var _ domain.SessionStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory session store keyed by session id. Safe for
// concurrent access. Get returns snapshots; all mutation goes through
// Update so the state-machine invariants hold under a single writer per id.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.CookingSession
	log      *logger.Logger
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.CookingSession),
		log:      log,
	}
}

// Create registers a new session in the starting state. Returns
// domain.ErrDuplicateSession if the id is already present; the existing
// session is untouched.
func (s *MemoryStore) Create(id, recipeName string, steps []domain.CookingStep) (*domain.CookingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; ok {
		return nil, domain.ErrDuplicateSession
	}

	now := time.Now()
	session := &domain.CookingSession{
		ID:               id,
		RecipeName:       recipeName,
		Steps:            steps,
		CurrentStepIndex: 0,
		Status:           domain.SessionStarting,
		StartedAt:        now,
		UpdatedAt:        now,
	}
	s.sessions[id] = session

	s.log.Debug("created session %s (recipe=%q, steps=%d)", id, recipeName, len(steps))
	return snapshot(session), nil
}

// Get returns a snapshot of a session by id.
func (s *MemoryStore) Get(id string) (*domain.CookingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return snapshot(session), nil
}

// Update applies fn to one session atomically and returns the resulting
// snapshot. Returns domain.ErrNotFound if the id is absent.
func (s *MemoryStore) Update(id string, fn func(*domain.CookingSession)) (*domain.CookingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	fn(session)
	session.UpdatedAt = time.Now()
	return snapshot(session), nil
}

// Remove deletes a session by id. Idempotent.
func (s *MemoryStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; ok {
		delete(s.sessions, id)
		s.log.Debug("removed session %s", id)
	}
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// snapshot copies a session. Steps are immutable once planned, so the
// backing slice is shared.
func snapshot(session *domain.CookingSession) *domain.CookingSession {
	c := *session
	return &c
}
