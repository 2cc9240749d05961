package auth

import "context"

// Identity is the minimal contract an authenticated principal must satisfy.
// The auth key is a per-identity random secret used to validate remember-me
// cookies; rotating it invalidates every cookie issued for that identity.
type Identity interface {
	ID() string
	AuthKey() string
}

// Store is the persistence boundary for identities. Lookups return
// (nil, nil) when no identity matches — including a wrong secret — so callers
// cannot tell an unknown identifier from a failed verification; a non-nil
// error means the lookup itself failed.
type Store interface {
	// FindByID resolves an identity by its primary identifier.
	FindByID(ctx context.Context, id string) (Identity, error)

	// FindByCredentials resolves an identity by a login identifier and its
	// secret, verifying the secret along the way.
	FindByCredentials(ctx context.Context, identifier, secret string) (Identity, error)

	// FindByToken resolves an identity by an API access token. The token
	// type lets stores that issue several token kinds tell them apart;
	// stores with a single kind ignore it.
	FindByToken(ctx context.Context, token, tokenType string) (Identity, error)

	// Insert registers a new identity. A duplicate identifier fails with an
	// error matching ErrIdentityExists.
	Insert(ctx context.Context, identifier, secret string) (Identity, error)
}
