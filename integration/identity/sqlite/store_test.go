package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakframe/oak/core/auth"
	"github.com/oakframe/oak/integration/identity/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	store, err := sqlite.Open(context.Background(), sqlite.Config{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_CreateAndFind(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()

	user, err := store.Create(ctx, "alice@example.com", "hunter2!")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID())
	assert.Len(t, user.AuthKey(), 64)
	assert.NotEmpty(t, user.APIToken())

	t.Run("find by id", func(t *testing.T) {
		found, err := store.FindByID(ctx, user.ID())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, user.ID(), found.ID())
		assert.Equal(t, user.AuthKey(), found.AuthKey())
	})

	t.Run("find by email is case-insensitive", func(t *testing.T) {
		found, err := store.FindByEmail(ctx, "ALICE@example.com")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "alice@example.com", found.Email())
	})

	t.Run("find by token", func(t *testing.T) {
		found, err := store.FindByToken(ctx, user.APIToken(), "")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, user.ID(), found.ID())
	})

	t.Run("unknown lookups return nil identity", func(t *testing.T) {
		found, err := store.FindByID(ctx, "999999")
		require.NoError(t, err)
		assert.Nil(t, found)

		found, err = store.FindByID(ctx, "not-a-number")
		require.NoError(t, err)
		assert.Nil(t, found)

		found, err = store.FindByToken(ctx, "bogus", "")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestStore_Credentials(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "bob@example.com", "correct horse")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := store.FindByCredentials(ctx, "bob@example.com", "correct horse")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, created.ID(), user.ID())
	})

	t.Run("wrong password", func(t *testing.T) {
		user, err := store.FindByCredentials(ctx, "bob@example.com", "battery staple")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("unknown email", func(t *testing.T) {
		user, err := store.FindByCredentials(ctx, "ghost@example.com", "whatever")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestStore_DuplicateEmail(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "carol@example.com", "pw-one")
	require.NoError(t, err)

	_, err = store.Create(ctx, "carol@example.com", "pw-two")
	assert.ErrorIs(t, err, sqlite.ErrEmailTaken)

	// unique index is case-insensitive like the email column
	_, err = store.Create(ctx, "CAROL@example.com", "pw-three")
	assert.ErrorIs(t, err, sqlite.ErrEmailTaken)

	// duplicates through the auth.Store surface match the shared sentinel
	_, err = store.Insert(ctx, "carol@example.com", "pw-four")
	assert.ErrorIs(t, err, auth.ErrIdentityExists)
}

func TestStore_Insert(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()

	created, err := store.Insert(ctx, "erin@example.com", "pw")
	require.NoError(t, err)
	require.NotNil(t, created)

	found, err := store.FindByCredentials(ctx, "erin@example.com", "pw")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID(), found.ID())
}

func TestStore_RotateAuthKey(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()

	user, err := store.Create(ctx, "dave@example.com", "pw")
	require.NoError(t, err)
	oldKey := user.AuthKey()

	require.NoError(t, store.RotateAuthKey(ctx, user.ID()))

	found, err := store.FindByID(ctx, user.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.NotEqual(t, oldKey, found.AuthKey())
}
