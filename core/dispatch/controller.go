package dispatch

import (
	"net/http"
	"regexp"
	"strings"
)

// Controller groups related actions under one route segment. Controllers are
// built per request by the factory registered with the Router, so handlers
// may keep per-request state in the controller value.
type Controller interface {
	// DefaultAction is the action id used when the route names only the
	// controller.
	DefaultAction() string
	// Actions lists the controller's invokable actions.
	Actions() []Action
}

// Action describes one invokable operation: its route id, the query
// parameters it expects, and the handler that runs it.
type Action struct {
	ID      string
	Params  []Param
	Handler func(ctx *Context, args Args) (any, error)
}

// Param declares one query-string parameter of an action. Required and
// Default are mutually exclusive: a required parameter that is absent fails
// the request, an optional one falls back to Default.
type Param struct {
	Name     string
	Required bool
	Default  string
	// List accepts repeated query values as a []string instead of
	// rejecting them.
	List bool
}

// Args holds the bound parameter values of one action invocation: string for
// scalar parameters, []string for list parameters.
type Args map[string]any

// String returns the scalar value of the named parameter.
func (a Args) String(name string) string {
	v, _ := a[name].(string)
	return v
}

// List returns the values of the named list parameter.
func (a Args) List(name string) []string {
	v, _ := a[name].([]string)
	return v
}

// Action ids are lowercase kebab-case: no uppercase, no doubled or boundary
// hyphens.
var actionIDPattern = regexp.MustCompile(`^[a-z0-9\-_]+$`)

func validActionID(id string) bool {
	if !actionIDPattern.MatchString(id) {
		return false
	}
	if strings.Contains(id, "--") {
		return false
	}
	return !strings.HasPrefix(id, "-") && !strings.HasSuffix(id, "-")
}

// findAction resolves an action id against a controller. An empty id selects
// the controller's default action. Matching ignores case and hyphen
// placement, so "forgot-password" finds an action registered as
// "forgotPassword" and vice versa.
func findAction(c Controller, id string) (Action, bool) {
	if id == "" {
		id = c.DefaultAction()
	}
	if !validActionID(id) {
		return Action{}, false
	}

	want := strings.ReplaceAll(id, "-", "")
	for _, action := range c.Actions() {
		if strings.EqualFold(want, strings.ReplaceAll(action.ID, "-", "")) {
			return action, true
		}
	}
	return Action{}, false
}

// bindActionParams maps the request's query string onto the action's declared
// parameters. All missing required parameters are collected into a single
// error so the client sees the full list at once; a repeated value for a
// scalar parameter rejects the request immediately.
func bindActionParams(r *http.Request, action Action) (Args, error) {
	query := r.URL.Query()
	args := make(Args, len(action.Params))
	var missing []string

	for _, p := range action.Params {
		values := query[p.Name]
		switch {
		case len(values) == 0:
			if p.Required {
				missing = append(missing, p.Name)
				continue
			}
			if !p.List {
				args[p.Name] = p.Default
			}
		case p.List:
			args[p.Name] = values
		case len(values) > 1:
			return nil, &BadRequestError{Invalid: p.Name}
		default:
			args[p.Name] = values[0]
		}
	}

	if len(missing) > 0 {
		return nil, &BadRequestError{Missing: missing}
	}
	return args, nil
}
