package dispatch

import (
	"regexp"
	"strings"
)

// Factory builds a fresh controller instance for one request.
type Factory func() Controller

// Router maps controller ids to factories and resolves textual routes to
// controller/action pairs. Registration happens once at startup; Resolve is
// safe for concurrent use afterwards.
type Router struct {
	controllers       map[string]Factory
	defaultController string
	debug             bool
}

// RouterOption is a functional option for configuring the router.
type RouterOption func(*Router)

// WithDefaultController sets the controller id used for the empty route.
func WithDefaultController(id string) RouterOption {
	return func(r *Router) {
		if id != "" {
			r.defaultController = id
		}
	}
}

// WithDebug switches unresolvable controllers from a 404 to a configuration
// error, so broken registrations surface loudly during development instead
// of hiding behind not-found pages.
func WithDebug(debug bool) RouterOption {
	return func(r *Router) {
		r.debug = debug
	}
}

// NewRouter creates an empty router. The default controller id is "site".
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		controllers:       make(map[string]Factory),
		defaultController: "site",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds a controller factory to an id. Lookup is case-insensitive;
// registering the same id twice keeps the last factory.
func (r *Router) Register(id string, factory Factory) {
	r.controllers[strings.ToLower(id)] = factory
}

// Resolution is the outcome of resolving a route: the instantiated
// controller, the matched action, and the canonical route string.
type Resolution struct {
	ControllerID string
	ActionID     string
	Route        string
	Controller   Controller
	Action       Action
}

var controllerIDPattern = regexp.MustCompile(`^\w+$`)

// Resolve parses a route of the form "controller/action" and instantiates
// the matching controller. Only the empty route selects the default
// controller; the substitution happens before slash trimming, so "/" and
// "//" leave an empty controller id behind and stay unresolvable. A route
// without an action segment selects the controller's default action.
func (r *Router) Resolve(route string) (Resolution, error) {
	original := route
	if route == "" {
		route = r.defaultController
	}
	route = strings.Trim(route, "/")
	if route == "" || strings.Contains(route, "//") {
		return Resolution{}, &RouteNotFoundError{Route: original}
	}

	controllerID := route
	actionID := ""
	if i := strings.Index(route, "/"); i >= 0 {
		controllerID = route[:i]
		actionID = route[i+1:]
	}
	if !controllerIDPattern.MatchString(controllerID) {
		return Resolution{}, &RouteNotFoundError{Route: original}
	}

	factory, ok := r.controllers[strings.ToLower(controllerID)]
	if !ok {
		if r.debug {
			return Resolution{}, &ConfigurationError{ControllerID: controllerID, Reason: "no controller registered"}
		}
		return Resolution{}, &RouteNotFoundError{Route: original}
	}

	controller := factory()
	if controller == nil {
		if r.debug {
			return Resolution{}, &ConfigurationError{ControllerID: controllerID, Reason: "factory returned nil"}
		}
		return Resolution{}, &RouteNotFoundError{Route: original}
	}

	action, ok := findAction(controller, actionID)
	if !ok {
		return Resolution{}, &RouteNotFoundError{Route: original}
	}

	return Resolution{
		ControllerID: strings.ToLower(controllerID),
		ActionID:     action.ID,
		Route:        strings.ToLower(controllerID) + "/" + action.ID,
		Controller:   controller,
		Action:       action,
	}, nil
}
