package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	identity  Identity
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Save stores identity and drops any entry that already expired.
func (s *MemoryStore) Save(_ context.Context, id string, identity Identity, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.entries {
		if !entry.expiresAt.After(now) {
			delete(s.entries, key)
		}
	}
	s.entries[id] = memoryEntry{identity: identity, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Identity, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok || !entry.expiresAt.After(s.now()) {
		return nil, ErrNotFound
	}
	identity := entry.identity
	return &identity, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
