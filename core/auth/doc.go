// Package auth tracks who is logged in across requests.
//
// A Manager holds the policy (identity store, cookie name, timeouts) and is
// shared by all requests; Manager.NewState binds it to one request. The
// resulting State answers IsGuest/Identity by checking, in order, the session
// and then the remember-me cookie, memoizing the outcome for the rest of the
// request.
//
//	state := authManager.NewState(w, r, sess)
//	if state.IsGuest() {
//	    return response.Redirect("/user/login")
//	}
//
// Login stores the identity's id in the session and, for a positive duration,
// issues a remember-me cookie so the login survives session expiry. The
// cookie embeds the identity's auth key; rotating that key server-side
// invalidates all outstanding cookies. Optional sliding and absolute timeouts
// bound how long a session-based login stays valid; an expired login is
// demoted to guest without touching the rest of the session.
package auth
