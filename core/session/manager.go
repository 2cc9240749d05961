package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/oakframe/oak/core/cookie"
)

// Config holds session manager configuration.
type Config struct {
	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"_session"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

// Manager attaches sessions to HTTP requests: Load binds a Session to the
// session-id cookie, Commit persists it and keeps the cookie in sync.
type Manager struct {
	store   Store
	cookies *cookie.Manager
	name    string
	ttl     time.Duration
	logger  *slog.Logger
}

// Option is a functional option for configuring the session manager.
type Option func(*Manager)

// WithCookieName overrides the session-id cookie name.
func WithCookieName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.name = name
		}
	}
}

// WithTTL sets the server-side record time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithLogger sets the logger used for store failures.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a session manager over the given store and cookie manager.
func NewManager(store Store, cookies *cookie.Manager, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		cookies: cookies,
		name:    "_session",
		ttl:     24 * time.Hour,
		logger:  discardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewManagerFromConfig creates a session manager from environment configuration.
func NewManagerFromConfig(store Store, cookies *cookie.Manager, cfg Config, opts ...Option) *Manager {
	base := []Option{WithCookieName(cfg.CookieName), WithTTL(cfg.TTL)}
	return NewManager(store, cookies, append(base, opts...)...)
}

// Load binds a Session to the request's session-id cookie. No store round
// trip happens until the session is first read or written.
func (m *Manager) Load(r *http.Request) *Session {
	id, err := m.cookies.Get(r, m.name)
	if err != nil {
		id = ""
	}
	return &Session{
		id:     id,
		ctx:    r.Context(),
		store:  m.store,
		logger: m.logger,
	}
}

// Commit persists the session and synchronizes the session-id cookie. It
// must run before the response body is rendered so the Set-Cookie header can
// still be written. A session that was never opened is a no-op.
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if !s.opened {
		if s.destroyed != "" {
			m.cookies.Delete(w, m.name)
		}
		return nil
	}

	if s.isNew {
		// Session-lifetime cookie: no MaxAge, no Expires.
		if err := m.cookies.Set(w, m.name, s.id); err != nil {
			return err
		}
	}

	if s.modified {
		if err := m.store.Save(ctx, s.id, s.values, m.ttl); err != nil {
			return errors.Join(ErrSaveSession, err)
		}
	}
	return nil
}
