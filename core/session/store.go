package session

import (
	"context"
	"time"
)

// Store defines the persistence interface for session records.
// Implementations must handle concurrent access safely.
type Store interface {
	// Load returns the value map for id, or ErrNotFound when no record
	// exists (or it has expired).
	Load(ctx context.Context, id string) (map[string]any, error)
	// Save persists the value map under id. A ttl of zero means the record
	// never expires on its own.
	Save(ctx context.Context, id string, values map[string]any, ttl time.Duration) error
	// Delete removes the record for id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}
