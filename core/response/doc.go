// Package response provides composable HTTP response builders.
//
// A Response is a deferred write: handlers construct one and the dispatcher
// executes it after cookies and headers have been committed. Builders cover
// plain text, HTML, raw bytes, redirects, and html/template rendering.
//
//	return response.Redirect("/user/login")
//	return response.TemplateName(views, "login.html", data)
//
// HTTPError values carry their HTTP status and render through the
// dispatcher's error path; Convert normalizes arbitrary errors to one.
package response
