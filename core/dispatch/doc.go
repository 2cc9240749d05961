// Package dispatch routes HTTP requests to controller actions.
//
// A route is a "controller/action" pair carried in the "r" query parameter,
// e.g. /?r=user/login. The Router maps controller ids to factories;
// each request gets a fresh controller instance, the requested action is
// matched case-insensitively (hyphens ignored, so "forgot-password" finds
// "forgotPassword"), and the action's declared parameters are bound from the
// query string before the handler runs.
//
// The Dispatcher ties the pipeline together: it loads the session, builds
// the authentication state, resolves and runs the action, and renders the
// result. Session commit happens before body rendering so cookies are never
// lost, and every failure path ends in a rendered error page, falling back
// to a static plain-text body when custom error rendering itself fails.
//
//	router := dispatch.NewRouter()
//	router.Register("site", func() dispatch.Controller { return &SiteController{} })
//	handler := dispatch.New(router, sessions, authManager)
//	http.ListenAndServe(":8080", handler)
package dispatch
