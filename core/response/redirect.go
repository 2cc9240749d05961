package response

import "net/http"

// Redirect creates a 302 Found (temporary redirect) response.
func Redirect(url string) Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		http.Redirect(w, r, url, http.StatusFound)
		return nil
	}
}

// RedirectSeeOther creates a 303 See Other response. Useful after a POST to
// redirect the client to a GET.
func RedirectSeeOther(url string) Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		http.Redirect(w, r, url, http.StatusSeeOther)
		return nil
	}
}

// RedirectWithStatus creates a redirect with a custom status code. Status
// codes outside the 3xx range fall back to 302.
func RedirectWithStatus(url string, status int) Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if status < 300 || status >= 400 {
			status = http.StatusFound
		}
		http.Redirect(w, r, url, status)
		return nil
	}
}
