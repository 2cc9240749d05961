package auth_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakframe/oak/core/auth"
	"github.com/oakframe/oak/core/cookie"
	"github.com/oakframe/oak/core/session"
)

type user struct{ id, key string }

func (u user) ID() string      { return u.id }
func (u user) AuthKey() string { return u.key }

type fakeStore struct {
	users   map[string]user
	tokens  map[string]string
	findErr error
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (auth.Identity, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, nil
}

func (f *fakeStore) FindByToken(ctx context.Context, token, tokenType string) (auth.Identity, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if id, ok := f.tokens[token]; ok {
		return f.FindByID(ctx, id)
	}
	return nil, nil
}

func (f *fakeStore) FindByCredentials(ctx context.Context, identifier, secret string) (auth.Identity, error) {
	return nil, nil
}

func (f *fakeStore) Insert(ctx context.Context, identifier, secret string) (auth.Identity, error) {
	return nil, nil
}

// fakeClock is a settable time source shared between test and manager.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// jar is a minimal client-side cookie jar for chaining simulated requests.
type jar map[string]string

func (j jar) update(w *httptest.ResponseRecorder) {
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(j, c.Name)
			continue
		}
		j[c.Name] = c.Value
	}
}

func (j jar) header() string {
	pairs := make([]string, 0, len(j))
	for name, value := range j {
		pairs = append(pairs, name+"="+value)
	}
	return strings.Join(pairs, "; ")
}

type env struct {
	sessions *session.Manager
	auth     *auth.Manager
}

func newEnv(users *fakeStore, opts ...auth.Option) *env {
	cookies := cookie.New()
	return &env{
		sessions: session.NewManager(session.NewMemoryStore(), cookies),
		auth:     auth.New(users, cookies, opts...),
	}
}

// request simulates one request cycle against the auth state and rolls the
// resulting Set-Cookie headers back into the jar.
func (e *env) request(t *testing.T, j jar, fn func(st *auth.State, sess *session.Session)) {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if h := j.header(); h != "" {
		r.Header.Set("Cookie", h)
	}
	w := httptest.NewRecorder()

	sess := e.sessions.Load(r)
	fn(e.auth.NewState(w, r, sess), sess)
	require.NoError(t, e.sessions.Commit(r.Context(), w, sess))

	j.update(w)
}

func singleUserStore() *fakeStore {
	return &fakeStore{
		users:  map[string]user{"42": {id: "42", key: "topsecret"}},
		tokens: map[string]string{"api-token-1": "42"},
	}
}

func rawCookie(payload string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

func TestState_GuestByDefault(t *testing.T) {
	t.Parallel()

	e := newEnv(singleUserStore())
	e.request(t, jar{}, func(st *auth.State, _ *session.Session) {
		assert.True(t, st.IsGuest())
		assert.Nil(t, st.Identity())
		assert.Empty(t, st.ID())
	})
}

func TestState_LoginPersistsAcrossRequests(t *testing.T) {
	t.Parallel()

	store := singleUserStore()
	e := newEnv(store)
	j := jar{}

	e.request(t, j, func(st *auth.State, _ *session.Session) {
		assert.True(t, st.Login(store.users["42"], 0))
		assert.False(t, st.IsGuest())
		assert.Equal(t, "42", st.ID())
	})

	// a zero duration still issues the identity cookie, scoped to the
	// browser session
	assert.Contains(t, j, "_identity")
	assert.Contains(t, j, "_session")

	e.request(t, j, func(st *auth.State, _ *session.Session) {
		assert.False(t, st.IsGuest())
		assert.Equal(t, "42", st.ID())
	})
}

func TestState_IdentityCookieLifetime(t *testing.T) {
	t.Parallel()

	store := singleUserStore()
	e := newEnv(store)

	issue := func(t *testing.T, duration time.Duration) *http.Cookie {
		t.Helper()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		sess := e.sessions.Load(r)
		st := e.auth.NewState(w, r, sess)
		require.True(t, st.Login(store.users["42"], duration))
		require.NoError(t, e.sessions.Commit(r.Context(), w, sess))

		for _, c := range w.Result().Cookies() {
			if c.Name == "_identity" {
				return c
			}
		}
		t.Fatal("no identity cookie issued")
		return nil
	}

	t.Run("zero duration scopes the cookie to the browser session", func(t *testing.T) {
		t.Parallel()
		c := issue(t, 0)
		assert.Zero(t, c.MaxAge)
		assert.True(t, c.Expires.IsZero())
	})

	t.Run("positive duration sets an absolute expiry", func(t *testing.T) {
		t.Parallel()
		c := issue(t, time.Hour)
		assert.Equal(t, 3600, c.MaxAge)
		assert.False(t, c.Expires.IsZero())
	})
}

func TestState_RememberMeCookie(t *testing.T) {
	t.Parallel()

	t.Run("restores login after session loss", func(t *testing.T) {
		t.Parallel()
		store := singleUserStore()
		e := newEnv(store)
		j := jar{}

		e.request(t, j, func(st *auth.State, _ *session.Session) {
			require.True(t, st.Login(store.users["42"], time.Hour))
		})
		require.Contains(t, j, "_identity")

		// simulate an expired server-side session
		delete(j, "_session")

		e.request(t, j, func(st *auth.State, _ *session.Session) {
			assert.False(t, st.IsGuest())
			assert.Equal(t, "42", st.ID())
		})
		assert.Contains(t, j, "_identity")
		assert.Contains(t, j, "_session")
	})

	t.Run("disabled auto-login ignores the cookie", func(t *testing.T) {
		t.Parallel()
		store := singleUserStore()
		e := newEnv(store, auth.WithAutoLogin(false))

		j := jar{"_identity": rawCookie(`["42","topsecret",3600]`)}

		e.request(t, j, func(st *auth.State, _ *session.Session) {
			assert.True(t, st.IsGuest())
		})
	})
}

func TestState_CookieValidation(t *testing.T) {
	t.Parallel()

	t.Run("wrong auth key stays guest and keeps the cookie", func(t *testing.T) {
		t.Parallel()
		e := newEnv(singleUserStore())
		j := jar{"_identity": rawCookie(`["42","guessed-key",3600]`)}

		e.request(t, j, func(st *auth.State, _ *session.Session) {
			assert.True(t, st.IsGuest())
		})
		assert.Contains(t, j, "_identity")
	})

	t.Run("malformed cookie is ignored and kept", func(t *testing.T) {
		t.Parallel()
		e := newEnv(singleUserStore())
		j := jar{"_identity": rawCookie(`{"not":"an array"}`)}

		e.request(t, j, func(st *auth.State, _ *session.Session) {
			assert.True(t, st.IsGuest())
		})
		assert.Contains(t, j, "_identity")
	})

	t.Run("unknown identity stays guest", func(t *testing.T) {
		t.Parallel()
		e := newEnv(singleUserStore())
		j := jar{"_identity": rawCookie(`["999","whatever",3600]`)}

		e.request(t, j, func(st *auth.State, _ *session.Session) {
			assert.True(t, st.IsGuest())
		})
	})

	t.Run("store failure stays guest without deleting the cookie", func(t *testing.T) {
		t.Parallel()
		store := singleUserStore()
		store.findErr = errors.New("db down")
		e := newEnv(store)
		j := jar{"_identity": rawCookie(`["42","topsecret",3600]`)}

		e.request(t, j, func(st *auth.State, _ *session.Session) {
			assert.True(t, st.IsGuest())
		})
		assert.Contains(t, j, "_identity")
	})
}

func TestState_Logout(t *testing.T) {
	t.Parallel()

	t.Run("keeping the session preserves flash messages", func(t *testing.T) {
		t.Parallel()
		store := singleUserStore()
		e := newEnv(store)
		j := jar{}

		e.request(t, j, func(st *auth.State, _ *session.Session) {
			require.True(t, st.Login(store.users["42"], time.Hour))
		})

		e.request(t, j, func(st *auth.State, sess *session.Session) {
			assert.True(t, st.Logout(false))
			sess.SetFlash("logout-success", "Logged out.", true)
		})
		assert.NotContains(t, j, "_identity")

		e.request(t, j, func(st *auth.State, sess *session.Session) {
			assert.True(t, st.IsGuest())
			assert.Equal(t, "Logged out.", sess.GetAllFlashes(true)["logout-success"])
		})
	})

	t.Run("destroying the session drops everything", func(t *testing.T) {
		t.Parallel()
		store := singleUserStore()
		e := newEnv(store)
		j := jar{}

		e.request(t, j, func(st *auth.State, sess *session.Session) {
			require.True(t, st.Login(store.users["42"], time.Hour))
			sess.Set("cart", "3 items")
		})

		e.request(t, j, func(st *auth.State, _ *session.Session) {
			assert.True(t, st.Logout(true))
		})
		assert.NotContains(t, j, "_identity")

		e.request(t, j, func(st *auth.State, sess *session.Session) {
			assert.True(t, st.IsGuest())
			assert.Nil(t, sess.Get("cart", nil))
		})
	})

	t.Run("logout as guest is a no-op", func(t *testing.T) {
		t.Parallel()
		e := newEnv(singleUserStore())
		e.request(t, jar{}, func(st *auth.State, _ *session.Session) {
			assert.True(t, st.Logout(true))
		})
	})
}

func TestState_SlidingTimeout(t *testing.T) {
	t.Parallel()

	store := singleUserStore()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	e := newEnv(store,
		auth.WithAuthTimeout(10*time.Minute),
		auth.WithClock(clock.Now),
	)
	j := jar{}

	e.request(t, j, func(st *auth.State, sess *session.Session) {
		require.True(t, st.Login(store.users["42"], 0))
		sess.Set("draft", "unsent message")
	})

	// activity within the window slides the deadline forward
	clock.Advance(7 * time.Minute)
	e.request(t, j, func(st *auth.State, _ *session.Session) {
		assert.False(t, st.IsGuest())
	})

	clock.Advance(7 * time.Minute)
	e.request(t, j, func(st *auth.State, _ *session.Session) {
		assert.False(t, st.IsGuest())
	})

	// going quiet past the window expires the login but not the session;
	// the identity cookie goes with the login
	clock.Advance(11 * time.Minute)
	e.request(t, j, func(st *auth.State, sess *session.Session) {
		assert.True(t, st.IsGuest())
		assert.Equal(t, "unsent message", sess.Get("draft", nil))
	})
	assert.NotContains(t, j, "_identity")
}

func TestState_AbsoluteTimeout(t *testing.T) {
	t.Parallel()

	store := singleUserStore()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	e := newEnv(store,
		auth.WithAuthTimeout(10*time.Minute),
		auth.WithAbsoluteAuthTimeout(30*time.Minute),
		auth.WithClock(clock.Now),
	)
	j := jar{}

	e.request(t, j, func(st *auth.State, _ *session.Session) {
		require.True(t, st.Login(store.users["42"], 0))
	})

	// constant activity keeps the sliding window alive...
	for i := 0; i < 5; i++ {
		clock.Advance(5 * time.Minute)
		e.request(t, j, func(st *auth.State, _ *session.Session) {
			assert.False(t, st.IsGuest())
		})
	}

	// ...but the absolute cap still ends the login
	clock.Advance(6 * time.Minute)
	e.request(t, j, func(st *auth.State, _ *session.Session) {
		assert.True(t, st.IsGuest())
	})
}

func TestState_LoginByToken(t *testing.T) {
	t.Parallel()

	t.Run("valid token authenticates", func(t *testing.T) {
		t.Parallel()
		e := newEnv(singleUserStore())
		j := jar{}

		e.request(t, j, func(st *auth.State, _ *session.Session) {
			identity := st.LoginByToken("api-token-1", "")
			require.NotNil(t, identity)
			assert.Equal(t, "42", identity.ID())
			assert.False(t, st.IsGuest())
		})

		e.request(t, j, func(st *auth.State, _ *session.Session) {
			assert.Equal(t, "42", st.ID())
		})
	})

	t.Run("unknown token stays guest", func(t *testing.T) {
		t.Parallel()
		e := newEnv(singleUserStore())
		e.request(t, jar{}, func(st *auth.State, _ *session.Session) {
			assert.Nil(t, st.LoginByToken("nope", ""))
			assert.True(t, st.IsGuest())
		})
	})
}

func TestState_SwitchIdentity(t *testing.T) {
	t.Parallel()

	store := &fakeStore{users: map[string]user{
		"42": {id: "42", key: "topsecret"},
		"7":  {id: "7", key: "othersecret"},
	}}
	e := newEnv(store)
	j := jar{}

	e.request(t, j, func(st *auth.State, _ *session.Session) {
		require.True(t, st.Login(store.users["42"], time.Hour))
	})
	first := j["_identity"]

	e.request(t, j, func(st *auth.State, _ *session.Session) {
		st.SwitchIdentity(store.users["7"], time.Hour)
		assert.Equal(t, "7", st.ID())
	})
	assert.NotEqual(t, first, j["_identity"])

	e.request(t, j, func(st *auth.State, _ *session.Session) {
		assert.Equal(t, "7", st.ID())
	})
}
