package dispatch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/oakframe/oak/core/auth"
	"github.com/oakframe/oak/core/logger"
	"github.com/oakframe/oak/core/response"
	"github.com/oakframe/oak/core/session"
)

// ErrorHandler renders an error as a response. Returning nil falls through
// to the dispatcher's built-in plain-text renderer.
type ErrorHandler func(ctx *Context, err response.HTTPError) response.Response

// Dispatcher is the http.Handler at the top of the request pipeline. For
// every request it loads the session, binds the authentication state, routes
// the "r" query parameter to a controller action, and renders the result.
// The session is committed before the body is rendered so Set-Cookie headers
// always make it out.
type Dispatcher struct {
	router       *Router
	sessions     *session.Manager
	auth         *auth.Manager
	logger       *slog.Logger
	errorHandler ErrorHandler
	routeParam   string
}

// Option is a functional option for configuring the dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger for request failures and panics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithErrorHandler installs a custom error renderer. If it returns nil or
// fails, the dispatcher falls back to a plain-text error body.
func WithErrorHandler(h ErrorHandler) Option {
	return func(d *Dispatcher) {
		d.errorHandler = h
	}
}

// WithRouteParam overrides the query parameter carrying the route.
func WithRouteParam(name string) Option {
	return func(d *Dispatcher) {
		if name != "" {
			d.routeParam = name
		}
	}
}

// New creates a dispatcher over the given router, session manager, and auth
// manager. The route is read from the "r" query parameter by default.
func New(router *Router, sessions *session.Manager, authManager *auth.Manager, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		router:     router,
		sessions:   sessions,
		auth:       authManager,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		routeParam: "r",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ww := newResponseWriter(w)
	sess := d.sessions.Load(r)
	ctx := newContext(ww, r, sess, d.auth.NewState(ww, r, sess), d.logger)

	committed := false
	commit := func() {
		if committed {
			return
		}
		committed = true
		if err := d.sessions.Commit(r.Context(), ww, sess); err != nil {
			d.logger.ErrorContext(r.Context(), "failed to commit session",
				logger.SessionID(sess.ID()), logger.Error(err))
		}
	}

	defer func() {
		if p := recover(); p != nil {
			panicErr := &panicError{value: p, stack: debug.Stack()}
			if ww.Written() {
				d.logger.Error("panic after response written",
					"value", panicErr.value,
					"stack", string(panicErr.stack),
					logger.Route(ctx.Route()),
					logger.StatusCode(ww.Status()),
				)
				return
			}
			commit()
			d.renderError(ctx, ww, panicErr)
		}
	}()

	resp, err := d.RunAction(ctx, d.routeFromRequest(r))
	commit()
	if err != nil {
		d.renderError(ctx, ww, err)
		return
	}
	if err := resp(ww, r); err != nil {
		d.renderError(ctx, ww, err)
	}
}

// RunAction resolves a route, binds the action's parameters from the request,
// runs the handler, and normalizes its result to a response. It can be called
// from within an action to forward to another one; the route recorded on the
// context stays the one the client originally requested.
func (d *Dispatcher) RunAction(ctx *Context, route string) (response.Response, error) {
	res, err := d.router.Resolve(route)
	if err != nil {
		return nil, err
	}
	ctx.recordRoute(res.Route)

	args, err := bindActionParams(ctx.Request(), res.Action)
	if err != nil {
		return nil, err
	}

	result, err := res.Action.Handler(ctx, args)
	if err != nil {
		return nil, err
	}
	return normalizeResult(result), nil
}

// routeFromRequest extracts the route from the query string. Anything but a
// single scalar value (absent, or repeated via r=a&r=b) yields the empty
// route.
func (d *Dispatcher) routeFromRequest(r *http.Request) string {
	values := r.URL.Query()[d.routeParam]
	if len(values) != 1 {
		return ""
	}
	return values[0]
}

// normalizeResult maps an action's return value to a response: Response
// values pass through, strings render as HTML, nil renders an empty 200.
func normalizeResult(result any) response.Response {
	switch v := result.(type) {
	case nil:
		return response.Status(http.StatusOK)
	case response.Response:
		return v
	case string:
		return response.HTML(v)
	case []byte:
		return response.Bytes(v, "text/html; charset=utf-8")
	default:
		return response.HTML(fmt.Sprint(v))
	}
}

// renderError logs the failure and renders an error body. A custom error
// handler gets the first shot; whatever happens, something readable is
// written as long as the response is still untouched.
func (d *Dispatcher) renderError(ctx *Context, ww *responseWriter, err error) {
	httpErr := response.Convert(err)

	attrs := []any{
		logger.Route(ctx.Route()),
		logger.Method(ctx.Request().Method),
		logger.StatusCode(httpErr.Status),
		logger.Error(err),
	}
	var panicErr PanicError
	if errors.As(err, &panicErr) {
		attrs = append(attrs, "stack", string(panicErr.Stack()))
	}
	if httpErr.Status >= http.StatusInternalServerError {
		d.logger.ErrorContext(ctx, "request failed", attrs...)
	} else {
		d.logger.WarnContext(ctx, "request rejected", attrs...)
	}

	if ww.Written() {
		return
	}

	if d.errorHandler != nil {
		if resp := d.errorHandler(ctx, httpErr); resp != nil {
			renderErr := resp(ww, ctx.Request())
			if renderErr == nil {
				return
			}
			d.logger.ErrorContext(ctx, "error handler failed", logger.Error(renderErr))
			if ww.Written() {
				return
			}
		}
	}

	// Last-resort renderer: plain text, never fails, never leaks internals.
	ww.Header().Set("Content-Type", "text/plain; charset=utf-8")
	ww.WriteHeader(httpErr.Status)
	if httpErr.Status >= http.StatusInternalServerError {
		io.WriteString(ww, "An internal server error occurred.")
	} else {
		io.WriteString(ww, httpErr.Message)
	}
}
