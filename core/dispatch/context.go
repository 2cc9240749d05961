package dispatch

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/oakframe/oak/core/auth"
	"github.com/oakframe/oak/core/session"
)

// Context is the per-request container handed to every action. It implements
// context.Context (delegating to the request's context) and carries the
// request, response writer, session, authentication state, and logger.
type Context struct {
	w       http.ResponseWriter
	r       *http.Request
	session *session.Session
	user    *auth.State
	logger  *slog.Logger

	mu     sync.RWMutex
	route  string
	values map[any]any
}

var _ context.Context = (*Context)(nil)

func newContext(w http.ResponseWriter, r *http.Request, sess *session.Session, user *auth.State, logger *slog.Logger) *Context {
	return &Context{
		w:       w,
		r:       r,
		session: sess,
		user:    user,
		logger:  logger,
	}
}

// Deadline implements context.Context.
func (c *Context) Deadline() (time.Time, bool) {
	return c.r.Context().Deadline()
}

// Done implements context.Context.
func (c *Context) Done() <-chan struct{} {
	return c.r.Context().Done()
}

// Err implements context.Context.
func (c *Context) Err() error {
	return c.r.Context().Err()
}

// Value implements context.Context. Values stored with SetValue shadow those
// from the request context.
func (c *Context) Value(key any) any {
	c.mu.RLock()
	v, ok := c.values[key]
	c.mu.RUnlock()
	if ok {
		return v
	}
	return c.r.Context().Value(key)
}

// SetValue stores a request-scoped value retrievable via Value.
func (c *Context) SetValue(key, val any) {
	c.mu.Lock()
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = val
	c.mu.Unlock()
}

// Request returns the underlying HTTP request.
func (c *Context) Request() *http.Request {
	return c.r
}

// ResponseWriter returns the response writer. Actions normally return a
// response.Response instead of writing directly; writing here suppresses the
// dispatcher's own rendering.
func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.w
}

// Session returns the request's session.
func (c *Context) Session() *session.Session {
	return c.session
}

// User returns the request's authentication state.
func (c *Context) User() *auth.State {
	return c.user
}

// Logger returns the request-scoped logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// Param returns a query-string parameter by name. Bound action parameters
// arrive through Args; this is for ad-hoc access outside declared params.
func (c *Context) Param(key string) string {
	return c.r.URL.Query().Get(key)
}

// Route returns the canonical "controller/action" route this request
// resolved to, or "" before resolution.
func (c *Context) Route() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.route
}

// recordRoute keeps the first resolved route. Internal forwards via
// Dispatcher.RunAction run further actions without overwriting what the
// client originally requested.
func (c *Context) recordRoute(route string) {
	c.mu.Lock()
	if c.route == "" {
		c.route = route
	}
	c.mu.Unlock()
}
