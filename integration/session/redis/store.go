package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oakframe/oak/core/session"
)

// Store persists session records in Redis as JSON strings with a server-side
// TTL, so expired sessions disappear without a reaper. Numeric values come
// back as float64 after the JSON round trip; the session package's accessors
// coerce them.
type Store struct {
	client *redis.Client
	prefix string
}

// StoreOption is a functional option for configuring the store.
type StoreOption func(*Store)

// WithKeyPrefix overrides the key namespace, "session:" by default.
func WithKeyPrefix(prefix string) StoreOption {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// NewStore creates a session store over an existing Redis client.
func NewStore(client *redis.Client, opts ...StoreOption) *Store {
	s := &Store{
		client: client,
		prefix: "session:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load implements session.Store.
func (s *Store) Load(ctx context.Context, id string) (map[string]any, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session %q: %w", id, err)
	}

	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("failed to decode session %q: %w", id, err)
	}
	return values, nil
}

// Save implements session.Store.
func (s *Store) Save(ctx context.Context, id string, values map[string]any, ttl time.Duration) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode session %q: %w", id, err)
	}
	if err := s.client.Set(ctx, s.key(id), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %q: %w", id, err)
	}
	return nil
}

// Delete implements session.Store.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %q: %w", id, err)
	}
	return nil
}

func (s *Store) key(id string) string {
	return s.prefix + id
}
