package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/oakframe/oak/core/auth"
)

// Config holds identity store configuration.
type Config struct {
	// DSN is the SQLite data source, e.g. "file:oak.db" or "file::memory:".
	DSN string `env:"SQLITE_DSN" envDefault:"file:oak.db"`
}

// Store persists user identities in SQLite and implements auth.Store.
type Store struct {
	db *sql.DB
}

var _ auth.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
	password_hash TEXT NOT NULL,
	auth_key      TEXT NOT NULL,
	api_token     TEXT NOT NULL UNIQUE,
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Open connects to the SQLite database, applies pragmas suited for a web
// workload, and creates the schema when missing.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	dsn := cfg.DSN
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent request load.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// FindByID implements auth.Store.
func (s *Store) FindByID(ctx context.Context, id string) (auth.Identity, error) {
	userID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, nil
	}
	user, err := s.queryUser(ctx, "WHERE id = ?", userID)
	if err != nil || user == nil {
		return nil, err
	}
	return user, nil
}

// FindByToken implements auth.Store. This store issues a single token kind,
// so tokenType is ignored.
func (s *Store) FindByToken(ctx context.Context, token, tokenType string) (auth.Identity, error) {
	if token == "" {
		return nil, nil
	}
	user, err := s.queryUser(ctx, "WHERE api_token = ?", token)
	if err != nil || user == nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail returns the user with the given email, or (nil, nil).
func (s *Store) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.queryUser(ctx, "WHERE email = ?", email)
}

// FindByCredentials implements auth.Store: the user matching email and
// password, or (nil, nil) for both an unknown email and a wrong password, so
// callers cannot tell the two apart.
func (s *Store) FindByCredentials(ctx context.Context, email, password string) (auth.Identity, error) {
	user, err := s.queryUser(ctx, "WHERE email = ?", email)
	if err != nil || user == nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.passwordHash), []byte(password)) != nil {
		return nil, nil
	}
	return user, nil
}

// Insert implements auth.Store by delegating to Create.
func (s *Store) Insert(ctx context.Context, email, password string) (auth.Identity, error) {
	user, err := s.Create(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create registers a new user. The password is stored as a bcrypt hash; the
// auth key and API token are random and unique per user.
func (s *Store) Create(ctx context.Context, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	authKey, err := randomToken(48)
	if err != nil {
		return nil, err
	}
	apiToken, err := randomToken(32)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, auth_key, api_token) VALUES (?, ?, ?, ?)",
		email, string(hash), authKey, apiToken,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new user id: %w", err)
	}
	return &User{
		id:       id,
		email:    email,
		authKey:  authKey,
		apiToken: apiToken,
	}, nil
}

// RotateAuthKey replaces the user's auth key, invalidating every remember-me
// cookie issued so far.
func (s *Store) RotateAuthKey(ctx context.Context, id string) error {
	userID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", id)
	}
	authKey, err := randomToken(48)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, "UPDATE users SET auth_key = ? WHERE id = ?", authKey, userID)
	if err != nil {
		return fmt.Errorf("failed to rotate auth key: %w", err)
	}
	return nil
}

func (s *Store) queryUser(ctx context.Context, where string, args ...any) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, auth_key, api_token, created_at FROM users "+where, args...)

	var u User
	err := row.Scan(&u.id, &u.email, &u.passwordHash, &u.authKey, &u.apiToken, &u.createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func randomToken(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// User is one registered account. It implements auth.Identity.
type User struct {
	id           int64
	email        string
	passwordHash string
	authKey      string
	apiToken     string
	createdAt    time.Time
}

// ID implements auth.Identity.
func (u *User) ID() string {
	return strconv.FormatInt(u.id, 10)
}

// AuthKey implements auth.Identity.
func (u *User) AuthKey() string {
	return u.authKey
}

// Email returns the account's email address.
func (u *User) Email() string {
	return u.email
}

// APIToken returns the account's API access token.
func (u *User) APIToken() string {
	return u.apiToken
}

// CreatedAt returns when the account was registered.
func (u *User) CreatedAt() time.Time {
	return u.createdAt
}
