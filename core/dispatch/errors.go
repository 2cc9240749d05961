package dispatch

import (
	"fmt"
	"net/http"
	"strings"
)

// RouteNotFoundError is returned when a route cannot be resolved to a
// registered controller action. It renders as 404.
type RouteNotFoundError struct {
	Route string
}

// Error implements the error interface.
func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("unable to resolve the request %q", e.Route)
}

// StatusCode returns the HTTP status code for the error.
func (e *RouteNotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// BadRequestError is returned when an action's declared parameters cannot be
// bound from the request. Missing lists every absent required parameter;
// Invalid names a scalar parameter that received multiple values. It renders
// as 400.
type BadRequestError struct {
	Missing []string
	Invalid string
}

// Error implements the error interface.
func (e *BadRequestError) Error() string {
	if e.Invalid != "" {
		return fmt.Sprintf("invalid value for parameter %q", e.Invalid)
	}
	return "missing required parameters: " + strings.Join(e.Missing, ", ")
}

// StatusCode returns the HTTP status code for the error.
func (e *BadRequestError) StatusCode() int {
	return http.StatusBadRequest
}

// ConfigurationError signals a broken controller registration rather than a
// bad request, so it renders as 500 and is never blamed on the client.
type ConfigurationError struct {
	ControllerID string
	Reason       string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("controller %q is not configured correctly: %s", e.ControllerID, e.Reason)
}

// StatusCode returns the HTTP status code for the error.
func (e *ConfigurationError) StatusCode() int {
	return http.StatusInternalServerError
}

// PanicError gives error handlers access to a recovered panic's value and
// stack trace.
type PanicError interface {
	error
	Value() any
	Stack() []byte
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func (e *panicError) Value() any {
	return e.value
}

func (e *panicError) Stack() []byte {
	return e.stack
}

// Unwrap allows errors.Is/As to reach an error that was panicked with.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}
