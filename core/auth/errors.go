package auth

import "errors"

var (
	// ErrMalformedCookie is returned when a remember-me cookie value cannot
	// be decoded into the expected [id, authKey, duration] triple.
	ErrMalformedCookie = errors.New("malformed identity cookie")

	// ErrIdentityExists is matched (via errors.Is) by Store.Insert failures
	// caused by a duplicate identifier.
	ErrIdentityExists = errors.New("identity already exists")
)
