package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. Nothing survives a restart; it is
// the default for tests and the fallback when no backend is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]string)}
}

func (s *MemoryStore) Load(_ context.Context, slot string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.slots[slot]
	return value, ok, nil
}

func (s *MemoryStore) Save(_ context.Context, slot, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot] = value
	return nil
}
