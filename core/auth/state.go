package auth

import (
	"crypto/hmac"
	"errors"
	"net/http"
	"time"

	"github.com/oakframe/oak/core/cookie"
	"github.com/oakframe/oak/core/logger"
	"github.com/oakframe/oak/core/session"
)

// State is the per-request view of the authentication status. The current
// identity is resolved at most once per request, on first access, by walking
// the session and the remember-me cookie; every later call sees the memoized
// result. Login, Logout, and SwitchIdentity update the memo in place so the
// rest of the request observes the new status immediately.
//
// Store lookups use the request's context.
type State struct {
	m       *Manager
	w       http.ResponseWriter
	r       *http.Request
	session *session.Session

	identity Identity
	resolved bool

	// cookieCleared marks the identity cookie as deleted for the rest of
	// this request, so a later loginByCookie cannot read the value still
	// sitting in the request headers.
	cookieCleared bool
}

// Identity returns the authenticated identity, or nil for a guest.
func (s *State) Identity() Identity {
	s.resolve()
	return s.identity
}

// IsGuest reports whether the request is unauthenticated.
func (s *State) IsGuest() bool {
	return s.Identity() == nil
}

// ID returns the authenticated identity's identifier, or "" for a guest.
func (s *State) ID() string {
	if identity := s.Identity(); identity != nil {
		return identity.ID()
	}
	return ""
}

// Login authenticates the request as the given identity. A positive duration
// additionally issues a remember-me cookie valid for that long (when
// auto-login is enabled). Returns true if the request ends up authenticated.
func (s *State) Login(identity Identity, duration time.Duration) bool {
	s.SwitchIdentity(identity, duration)
	if identity != nil {
		s.m.logger.InfoContext(s.r.Context(), "user logged in",
			logger.UserID(identity.ID()),
			"remembered", duration > 0,
		)
	}
	return !s.IsGuest()
}

// LoginByToken authenticates the request by an API access token. The token
// type is passed through to the store; "" fits stores with a single token
// kind. Returns the identity on success, nil when the token resolves to
// nothing.
func (s *State) LoginByToken(token, tokenType string) Identity {
	if token == "" {
		return nil
	}
	identity, err := s.m.store.FindByToken(s.r.Context(), token, tokenType)
	if err != nil {
		s.m.logger.ErrorContext(s.r.Context(), "token lookup failed", logger.Error(err))
		return nil
	}
	if identity == nil {
		return nil
	}
	if !s.Login(identity, 0) {
		return nil
	}
	return identity
}

// Logout drops the authenticated identity. With destroySession the whole
// session is discarded; otherwise only the auth keys are removed and the rest
// of the session (flash messages included) survives. The remember-me cookie
// is cleared either way. Returns true if the request ends up a guest.
func (s *State) Logout(destroySession bool) bool {
	if identity := s.Identity(); identity != nil {
		s.m.logger.InfoContext(s.r.Context(), "user logged out", logger.UserID(identity.ID()))
		s.SwitchIdentity(nil, 0)
		if destroySession {
			s.session.Destroy()
		}
	}
	return s.IsGuest()
}

// SwitchIdentity replaces the current identity without any validation. The
// session's auth keys are rewritten for the new identity; a nil identity
// leaves the session de-authenticated. Callers normally want Login or Logout
// instead.
func (s *State) SwitchIdentity(identity Identity, duration time.Duration) {
	s.resolved = true
	s.identity = identity

	s.session.Remove(sessionIDKey)
	s.session.Remove(sessionExpireKey)
	s.session.Remove(sessionAbsoluteExpireKey)

	if identity == nil {
		if s.m.cfg.EnableAutoLogin {
			s.clearIdentityCookie()
		}
		return
	}

	now := s.m.now()
	s.session.Set(sessionIDKey, identity.ID())
	if s.m.cfg.AuthTimeout > 0 {
		s.session.Set(sessionExpireKey, now.Add(s.m.cfg.AuthTimeout).Unix())
	}
	if s.m.cfg.AbsoluteAuthTimeout > 0 {
		s.session.Set(sessionAbsoluteExpireKey, now.Add(s.m.cfg.AbsoluteAuthTimeout).Unix())
	}
	if s.m.cfg.EnableAutoLogin {
		s.sendIdentityCookie(identity, duration)
	}
}

// clearIdentityCookie expires the cookie on the client and hides it from the
// rest of this request, mirroring a logout that must not be undone by an
// immediate cookie-based re-login.
func (s *State) clearIdentityCookie() {
	s.m.cookies.Delete(s.w, s.m.cfg.CookieName)
	s.cookieCleared = true
}

// resolve walks the session first, then falls back to the remember-me cookie
// for guests, or renews the cookie's lifetime for users already restored from
// the session.
func (s *State) resolve() {
	if s.resolved {
		return
	}
	s.resolved = true

	s.restoreFromSession()

	if s.m.cfg.EnableAutoLogin {
		if s.identity == nil {
			s.loginByCookie()
		} else if s.m.cfg.AutoRenewCookie {
			s.renewIdentityCookie()
		}
	}
}

func (s *State) restoreFromSession() {
	id, ok := s.session.GetString(sessionIDKey)
	if !ok || id == "" {
		return
	}

	identity, err := s.m.store.FindByID(s.r.Context(), id)
	if err != nil {
		s.m.logger.ErrorContext(s.r.Context(), "identity lookup failed", logger.UserID(id), logger.Error(err))
		return
	}
	s.identity = identity
	if identity == nil {
		return
	}

	if s.m.cfg.AuthTimeout <= 0 && s.m.cfg.AbsoluteAuthTimeout <= 0 {
		return
	}

	now := s.m.now().Unix()
	if s.deadlinePassed(sessionExpireKey, s.m.cfg.AuthTimeout, now) ||
		s.deadlinePassed(sessionAbsoluteExpireKey, s.m.cfg.AbsoluteAuthTimeout, now) {
		s.m.logger.InfoContext(s.r.Context(), "login expired", logger.UserID(identity.ID()))
		s.SwitchIdentity(nil, 0)
		return
	}
	if s.m.cfg.AuthTimeout > 0 {
		s.session.Set(sessionExpireKey, now+int64(s.m.cfg.AuthTimeout.Seconds()))
	}
}

// deadlinePassed checks one timeout key. A configured timeout whose session
// key is missing does not expire the login; the key is written on the next
// sliding update or at the next explicit login.
func (s *State) deadlinePassed(key string, timeout time.Duration, now int64) bool {
	if timeout <= 0 {
		return false
	}
	deadline, ok := s.session.GetInt64(key)
	return ok && deadline < now
}

// loginByCookie restores a login from the remember-me cookie. The cookie must
// decode strictly and the embedded auth key must match the stored identity's
// current key; a malformed or mismatched cookie is a logged no-op that leaves
// the cookie untouched, so an attacker probing cookies learns nothing about
// valid ids.
func (s *State) loginByCookie() {
	if s.cookieCleared {
		return
	}
	value, err := s.m.cookies.Get(s.r, s.m.cfg.CookieName)
	if err != nil {
		return
	}

	id, authKey, duration, err := decodeIdentityCookie(value)
	if err != nil {
		return
	}

	identity, err := s.m.store.FindByID(s.r.Context(), id)
	if err != nil {
		s.m.logger.ErrorContext(s.r.Context(), "identity lookup failed", logger.UserID(id), logger.Error(err))
		return
	}
	if identity == nil {
		return
	}
	if !hmac.Equal([]byte(identity.AuthKey()), []byte(authKey)) {
		s.m.logger.WarnContext(s.r.Context(), "identity cookie with invalid auth key", logger.UserID(id))
		return
	}

	if s.Login(identity, duration) {
		s.m.logger.InfoContext(s.r.Context(), "user logged in via cookie", logger.UserID(identity.ID()))
	}
}

// renewIdentityCookie pushes the remember-me cookie's expiry forward without
// validating or rewriting its value. Decoding is deliberately lenient here:
// the session, not the cookie, already authenticated this request.
func (s *State) renewIdentityCookie() {
	value, err := s.m.cookies.Get(s.r, s.m.cfg.CookieName)
	if err != nil {
		return
	}
	duration, ok := decodeCookieDuration(value)
	if !ok {
		return
	}
	if err := s.m.cookies.Set(s.w, s.m.cfg.CookieName, value, s.expiryOptions(duration)...); err != nil {
		s.m.logger.ErrorContext(s.r.Context(), "failed to renew identity cookie", logger.Error(err))
	}
}

func (s *State) sendIdentityCookie(identity Identity, duration time.Duration) {
	value, err := encodeIdentityCookie(identity.ID(), identity.AuthKey(), duration)
	if err != nil {
		s.m.logger.ErrorContext(s.r.Context(), "failed to encode identity cookie", logger.Error(err))
		return
	}
	err = s.m.cookies.Set(s.w, s.m.cfg.CookieName, value, s.expiryOptions(duration)...)
	if err != nil {
		if errors.As(err, &cookie.ErrCookieTooLarge{}) {
			s.m.logger.ErrorContext(s.r.Context(), "identity cookie exceeds size limit", logger.UserID(identity.ID()))
			return
		}
		s.m.logger.ErrorContext(s.r.Context(), "failed to set identity cookie", logger.Error(err))
	}
}

// expiryOptions maps the remember duration to cookie attributes: a positive
// duration sets an absolute expiry, zero means a session-lifetime cookie
// with no expiry attributes at all.
func (s *State) expiryOptions(duration time.Duration) []cookie.Option {
	if duration <= 0 {
		return nil
	}
	return []cookie.Option{
		cookie.WithExpires(s.m.now().Add(duration)),
		cookie.WithMaxAge(int(duration.Seconds())),
	}
}
