package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/oakframe/oak/core/logger"
)

// Session is the per-client key/value store for one request. It is opened
// lazily: the first read or write loads the backing record identified by the
// session-id cookie, or creates a fresh record under a new id when there is
// none. A Session is request-scoped and must not be shared across requests;
// concurrent requests for the same client resolve races last-writer-wins.
type Session struct {
	id     string
	ctx    context.Context
	store  Store
	logger *slog.Logger

	values    map[string]any
	opened    bool
	isNew     bool
	modified  bool
	destroyed string
}

// ID returns the session identifier, or "" if the session has not been
// opened yet this request.
func (s *Session) ID() string {
	return s.id
}

// IsActive reports whether the session has been opened this request.
func (s *Session) IsActive() bool {
	return s.opened
}

// Get returns the value stored under key, or def when the key is absent.
func (s *Session) Get(key string, def any) any {
	s.open()
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// GetString returns the value under key as a string.
func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.Get(key, nil).(string)
	return v, ok
}

// GetInt64 returns the value under key as an int64. Numeric values survive
// a JSON round trip through external stores as float64 or json.Number, so
// those are coerced here.
func (s *Session) GetInt64(key string) (int64, bool) {
	return toInt64(s.Get(key, nil))
}

// Set stores a value under key, overwriting any previous value.
func (s *Session) Set(key string, value any) {
	s.open()
	s.values[key] = value
	s.modified = true
}

// Remove deletes the value under key and returns it, or nil if absent.
func (s *Session) Remove(key string) any {
	s.open()
	if v, ok := s.values[key]; ok {
		delete(s.values, key)
		s.modified = true
		return v
	}
	return nil
}

// Destroy deletes the backing record and resets the session. A later write
// transparently opens a brand-new session under a new id, so callers can
// destroy a session and still queue data for the next one in the same
// request.
func (s *Session) Destroy() {
	if !s.opened {
		return
	}
	if !s.isNew {
		if err := s.store.Delete(s.ctx, s.id); err != nil && !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to delete session record", logger.SessionID(s.id), logger.Error(err))
		}
	}
	s.destroyed = s.id
	s.id = ""
	s.values = nil
	s.opened = false
	s.isNew = false
	s.modified = false
}

// open loads the backing record on first access. A presented id that does not
// resolve to a stored record is discarded and replaced with a fresh one, so
// clients cannot fixate session ids.
func (s *Session) open() {
	if s.opened {
		return
	}
	if s.id != "" {
		values, err := s.store.Load(s.ctx, s.id)
		switch {
		case err == nil:
			s.values = values
			s.opened = true
			return
		case !errors.Is(err, ErrNotFound):
			s.logger.Error("failed to load session record", logger.SessionID(s.id), logger.Error(err))
		}
	}
	s.id = uuid.NewString()
	s.isNew = true
	s.modified = true
	s.values = make(map[string]any)
	s.opened = true
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
