package auth

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/oakframe/oak/core/cookie"
	"github.com/oakframe/oak/core/session"
)

// Session keys owned by this package. Application code must not write them.
const (
	sessionIDKey             = "__id"
	sessionExpireKey         = "__expire"
	sessionAbsoluteExpireKey = "__absoluteExpire"
)

// Config holds authentication manager configuration.
type Config struct {
	// CookieName is the remember-me cookie name.
	CookieName string `env:"AUTH_COOKIE_NAME" envDefault:"_identity"`
	// EnableAutoLogin turns the remember-me cookie flow on.
	EnableAutoLogin bool `env:"AUTH_AUTO_LOGIN" envDefault:"true"`
	// AutoRenewCookie re-issues the remember-me cookie with a fresh expiry
	// on every authenticated request.
	AutoRenewCookie bool `env:"AUTH_AUTO_RENEW_COOKIE" envDefault:"true"`
	// AuthTimeout is the sliding inactivity window; zero disables it.
	AuthTimeout time.Duration `env:"AUTH_TIMEOUT" envDefault:"0"`
	// AbsoluteAuthTimeout caps a login's total lifetime regardless of
	// activity; zero disables it.
	AbsoluteAuthTimeout time.Duration `env:"AUTH_ABSOLUTE_TIMEOUT" envDefault:"0"`
}

// Manager owns the authentication policy: where identities come from, which
// cookie carries the remember-me token, and how long a login stays valid. It
// is shared across requests; per-request state lives in State.
type Manager struct {
	store   Store
	cookies *cookie.Manager
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time
}

// Option is a functional option for configuring the auth manager.
type Option func(*Manager)

// WithCookieName overrides the remember-me cookie name.
func WithCookieName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.cfg.CookieName = name
		}
	}
}

// WithAutoLogin toggles the remember-me cookie flow.
func WithAutoLogin(enabled bool) Option {
	return func(m *Manager) {
		m.cfg.EnableAutoLogin = enabled
	}
}

// WithAutoRenewCookie toggles sliding renewal of the remember-me cookie.
func WithAutoRenewCookie(enabled bool) Option {
	return func(m *Manager) {
		m.cfg.AutoRenewCookie = enabled
	}
}

// WithAuthTimeout sets the sliding inactivity timeout.
func WithAuthTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.cfg.AuthTimeout = d
	}
}

// WithAbsoluteAuthTimeout sets the absolute login lifetime cap.
func WithAbsoluteAuthTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.cfg.AbsoluteAuthTimeout = d
	}
}

// WithLogger sets the logger used for auth events and store failures.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates an auth manager over the given identity store and cookie
// manager. Auto-login and cookie renewal are enabled by default; both
// timeouts are disabled.
func New(store Store, cookies *cookie.Manager, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		cookies: cookies,
		cfg: Config{
			CookieName:      "_identity",
			EnableAutoLogin: true,
			AutoRenewCookie: true,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewFromConfig creates an auth manager from environment configuration.
func NewFromConfig(store Store, cookies *cookie.Manager, cfg Config, opts ...Option) *Manager {
	base := []Option{
		WithCookieName(cfg.CookieName),
		WithAutoLogin(cfg.EnableAutoLogin),
		WithAutoRenewCookie(cfg.AutoRenewCookie),
		WithAuthTimeout(cfg.AuthTimeout),
		WithAbsoluteAuthTimeout(cfg.AbsoluteAuthTimeout),
	}
	return New(store, cookies, append(base, opts...)...)
}

// NewState binds the manager to one request. The returned State resolves the
// current identity lazily on first access.
func (m *Manager) NewState(w http.ResponseWriter, r *http.Request, sess *session.Session) *State {
	return &State{
		m:       m,
		w:       w,
		r:       r,
		session: sess,
	}
}
