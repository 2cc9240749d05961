// Package session provides per-client server-side state with a flash-message
// sub-protocol.
//
// A Session is a lazily-opened key/value map scoped to one client, identified
// by an opaque session-id cookie. The Manager binds sessions to requests and
// persists them through a pluggable Store (an in-memory implementation ships
// with the package; a Redis-backed one lives in integration/session/redis).
//
//	store := session.NewMemoryStore()
//	manager := session.NewManager(store, cookieManager)
//
//	// per request
//	sess := manager.Load(r)
//	sess.Set("theme", "dark")
//	defer manager.Commit(r.Context(), w, sess)
//
// # Flash messages
//
// Flash values are visible across exactly one subsequent render cycle and
// then discarded. Each flash key carries a counter: -1 when set this cycle,
// 1 once read (readable one more time), 0 for values that persist until
// removed. The response renderer is expected to call GetAllFlashes once per
// rendered page, which both collects the messages and advances their
// lifecycle.
//
//	sess.SetFlash("login-success", "Logged in successfully.", true)
//	// ... next request's render:
//	for key, msg := range sess.GetAllFlashes(true) { ... }
package session
