package demo

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/oakframe/oak/core/auth"
	"github.com/oakframe/oak/core/cookie"
	"github.com/oakframe/oak/core/dispatch"
	"github.com/oakframe/oak/core/logger"
	"github.com/oakframe/oak/core/session"
)

// Config holds application-level settings.
type Config struct {
	// Debug turns broken controller registrations into loud 500s instead
	// of 404s.
	Debug bool `env:"APP_DEBUG" envDefault:"false"`
	// RememberDuration is the remember-me cookie lifetime, 30 days by
	// default.
	RememberDuration time.Duration `env:"AUTH_REMEMBER_DURATION" envDefault:"720h"`
}

// App wires the framework together for the demo site: a pluggable identity
// store, a pluggable session store, and the site/user controllers.
type App struct {
	dispatcher *dispatch.Dispatcher
}

// Option is a functional option for configuring the app.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	sessionCfg session.Config
	authCfg    auth.Config
}

// WithLogger sets the logger shared by all framework components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSessionConfig overrides session cookie name and TTL.
func WithSessionConfig(cfg session.Config) Option {
	return func(o *options) {
		o.sessionCfg = cfg
	}
}

// WithAuthConfig overrides authentication cookie and timeout settings.
func WithAuthConfig(cfg auth.Config) Option {
	return func(o *options) {
		o.authCfg = cfg
	}
}

// New assembles the demo application. Any auth.Store works as the identity
// backend; cmd/demo wires the SQLite one.
func New(users auth.Store, sessionStore session.Store, cfg Config, opts ...Option) *App {
	o := &options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		sessionCfg: session.Config{
			CookieName: "_session",
			TTL:        24 * time.Hour,
		},
		authCfg: auth.Config{
			CookieName:      "_identity",
			EnableAutoLogin: true,
			AutoRenewCookie: true,
		},
	}
	for _, opt := range opts {
		opt(o)
	}

	cookies := cookie.New()
	sessions := session.NewManagerFromConfig(sessionStore, cookies, o.sessionCfg,
		session.WithLogger(o.logger.With(logger.Component("session"))))
	authManager := auth.NewFromConfig(users, cookies, o.authCfg,
		auth.WithLogger(o.logger.With(logger.Component("auth"))))

	router := dispatch.NewRouter(dispatch.WithDebug(cfg.Debug))
	router.Register("site", func() dispatch.Controller {
		return &SiteController{}
	})
	router.Register("user", func() dispatch.Controller {
		return &UserController{users: users, remember: cfg.RememberDuration}
	})

	return &App{
		dispatcher: dispatch.New(router, sessions, authManager,
			dispatch.WithLogger(o.logger.With(logger.Component("dispatch"))),
			dispatch.WithErrorHandler(renderErrorPage),
		),
	}
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.dispatcher.ServeHTTP(w, r)
}
