// Package cookie provides HTTP cookie management with shared defaults,
// functional per-cookie options and 4KB size limit enforcement.
//
// Create a manager once and reuse it for every cookie the application owns:
//
//	manager := cookie.New()
//
//	// Persistent cookie with an absolute expiry
//	err := manager.Set(w, "_identity", value,
//		cookie.WithExpires(time.Now().Add(30*24*time.Hour)))
//
//	// Session-lifetime cookie (no MaxAge, no Expires)
//	err = manager.Set(w, "_session", id)
//
//	value, err := manager.Get(r, "_identity")
//	if errors.Is(err, cookie.ErrCookieNotFound) {
//		// cookie absent
//	}
//
//	manager.Delete(w, "_identity")
//
// Defaults are path "/", HttpOnly, SameSite Lax and host-only scope. The
// Secure flag is off by default; enable it via WithSecure when the deployment
// terminates TLS.
package cookie
