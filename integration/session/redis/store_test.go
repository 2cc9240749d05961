package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakframe/oak/core/session"
	"github.com/oakframe/oak/integration/session/redis"
)

func newStore(t *testing.T, opts ...redis.StoreOption) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewStore(client, opts...), srv
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	ctx := context.Background()

	values := map[string]any{
		"name":    "alice",
		"__flash": map[string]any{"notice": -1},
	}
	require.NoError(t, store.Save(ctx, "sid-1", values, time.Minute))

	got, err := store.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got["name"])

	// JSON round trip turns counters into float64
	counters, ok := got["__flash"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(-1), counters["notice"])
}

func TestStore_LoadMissing(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	_, err := store.Load(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sid-1", map[string]any{"k": "v"}, time.Minute))
	require.NoError(t, store.Delete(ctx, "sid-1"))

	_, err := store.Load(ctx, "sid-1")
	assert.ErrorIs(t, err, session.ErrNotFound)

	// deleting a missing record is not an error
	assert.NoError(t, store.Delete(ctx, "sid-1"))
}

func TestStore_TTL(t *testing.T) {
	t.Parallel()

	store, srv := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sid-1", map[string]any{"k": "v"}, time.Minute))
	srv.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "sid-1")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestStore_KeyPrefix(t *testing.T) {
	t.Parallel()

	store, srv := newStore(t, redis.WithKeyPrefix("app:sess:"))
	require.NoError(t, store.Save(context.Background(), "sid-1", map[string]any{"k": "v"}, 0))
	assert.True(t, srv.Exists("app:sess:sid-1"))
}

func TestStore_WorksAsManagerBackend(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sid-1", map[string]any{"count": 7}, time.Minute))

	got, err := store.Load(ctx, "sid-1")
	require.NoError(t, err)

	// numeric coercion contract with the session package
	var s session.Store = store
	_ = s
	assert.Equal(t, float64(7), got["count"])
}
