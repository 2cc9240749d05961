package session

import "errors"

var (
	// ErrNotFound is returned when a session record cannot be found in the store.
	ErrNotFound = errors.New("session not found")
	// ErrSaveSession is returned when persisting a session to the store fails.
	ErrSaveSession = errors.New("failed to save session")
)
