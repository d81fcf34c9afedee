package draft

import (
	"context"
	"sync"

	"ms-gifting/internal/models"
)

// Store is the transient draft slot: one GiftDraft per session,
// last-write-wins. Implementations must not error when clearing an already
// empty slot.
type Store interface {
	Put(ctx context.Context, sessionID string, d models.GiftDraft) error
	// Get returns the draft, or nil when the slot is empty.
	Get(ctx context.Context, sessionID string) (*models.GiftDraft, error)
	Clear(ctx context.Context, sessionID string) error
}

// MemoryStore is an in-process Store used in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]models.GiftDraft
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]models.GiftDraft)}
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, d models.GiftDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[sessionID] = d
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*models.GiftDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[sessionID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, sessionID)
	return nil
}
