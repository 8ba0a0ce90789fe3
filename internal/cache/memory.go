package cache

import (
	"context"
	"sync"
	"time"

	"tokenhealth/internal/models"
)

// MemoryStore is an in-process Store used by tests and as the degraded-mode
// cache when the database is unreachable at startup.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func memKey(key string, category models.Category) string {
	return key + "/" + string(category)
}

func (s *MemoryStore) Get(_ context.Context, key string, category models.Category, now time.Time) (*Entry, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[memKey(key, category)]
	s.mu.RUnlock()

	if !ok || now.After(entry.ExpiresAt) {
		return nil, false, nil
	}
	out := entry
	return &out, true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, category models.Category, payload []byte, now time.Time, ttl time.Duration) error {
	buf := make([]byte, len(payload))
	copy(buf, payload)

	s.mu.Lock()
	s.entries[memKey(key, category)] = Entry{
		Key:         key,
		Category:    category,
		Payload:     buf,
		LastUpdated: now,
		ExpiresAt:   now.Add(ttl),
	}
	s.mu.Unlock()
	return nil
}
