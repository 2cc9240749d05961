package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store implementation. Suitable for tests and
// single-instance deployments; records do not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

type memoryRecord struct {
	values    map[string]any
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]memoryRecord),
	}
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context, id string) (map[string]any, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if !rec.expiresAt.IsZero() && time.Now().After(rec.expiresAt) {
		_ = s.Delete(ctx, id)
		return nil, ErrNotFound
	}
	return copyValues(rec.values), nil
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, id string, values map[string]any, ttl time.Duration) error {
	rec := memoryRecord{values: copyValues(values)}
	if ttl > 0 {
		rec.expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.records[id] = rec
	s.mu.Unlock()
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of live records, expired ones included until their
// next Load.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func copyValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
