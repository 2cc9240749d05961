package response

import (
	"errors"
	"net/http"
)

// HTTPError is a structured error carrying the HTTP status it should render
// with. It implements the error interface and the StatusCode contract used by
// the dispatcher to map errors to responses.
type HTTPError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for the error.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// WithMessage returns a copy of the error with a custom message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// Convert maps an arbitrary error to an HTTPError. HTTPError values pass
// through; other errors implementing StatusCode() int keep their status;
// everything else becomes a 500 with a generic message so internal details
// never leak into a response body.
//
// Bad-request errors keep their own message: they describe what the client
// sent wrong (the missing parameter list, for example) and must reach the
// client verbatim. Every other status renders the generic status text.
func Convert(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		status := sc.StatusCode()
		message := http.StatusText(status)
		if status == http.StatusBadRequest {
			message = err.Error()
		}
		return HTTPError{
			Status:  status,
			Code:    codeFromStatus(status),
			Message: message,
		}
	}

	return ErrInternalServerError
}

func codeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		if status >= 500 {
			return "internal_server_error"
		}
		return "error"
	}
}

// Predefined HTTP errors using http.StatusText for default messages.
var (
	ErrBadRequest = HTTPError{
		Status:  http.StatusBadRequest,
		Code:    "bad_request",
		Message: http.StatusText(http.StatusBadRequest),
	}

	ErrUnauthorized = HTTPError{
		Status:  http.StatusUnauthorized,
		Code:    "unauthorized",
		Message: http.StatusText(http.StatusUnauthorized),
	}

	ErrForbidden = HTTPError{
		Status:  http.StatusForbidden,
		Code:    "forbidden",
		Message: http.StatusText(http.StatusForbidden),
	}

	ErrNotFound = HTTPError{
		Status:  http.StatusNotFound,
		Code:    "not_found",
		Message: http.StatusText(http.StatusNotFound),
	}

	ErrMethodNotAllowed = HTTPError{
		Status:  http.StatusMethodNotAllowed,
		Code:    "method_not_allowed",
		Message: http.StatusText(http.StatusMethodNotAllowed),
	}

	ErrInternalServerError = HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_server_error",
		Message: http.StatusText(http.StatusInternalServerError),
	}
)
