// Package sqlite persists user identities in SQLite.
//
// The Store implements auth.Store plus the credential operations an
// application login flow needs: FindByCredentials verifies a bcrypt password
// hash, Create registers an account with a random auth key and API token,
// and RotateAuthKey invalidates all outstanding remember-me cookies for one
// user. The schema is created on Open, so a fresh database file just works.
package sqlite
