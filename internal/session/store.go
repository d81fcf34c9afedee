package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"ms-gifting/internal/models"
)

// ErrNoSession is returned when no active session exists for a token.
var ErrNoSession = errors.New("no active session")

// ErrInvalidCredentials is returned when the shared-secret check fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Store holds active sessions keyed by session ID. Implementations must be
// safe for concurrent use; the storage medium is an implementation detail.
type Store interface {
	Put(ctx context.Context, sessionID string, sess models.Session, ttl time.Duration) error
	// Get returns the stored session, or nil when the slot is empty.
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	// Clear removes the session. Clearing an empty slot is a no-op.
	Clear(ctx context.Context, sessionID string) error
}

// MemoryStore is an in-process Store used in tests and single-node setups.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]models.Session)}
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, sess models.Session, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = sess
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
