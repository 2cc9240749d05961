package auth

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// The remember-me cookie value is a base64url-encoded JSON array of exactly
// three elements: [id, authKey, durationSeconds]. Base64 keeps the JSON
// punctuation out of the Set-Cookie header.

func encodeIdentityCookie(id, authKey string, duration time.Duration) (string, error) {
	raw, err := json.Marshal([]any{id, authKey, int64(duration.Seconds())})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// decodeIdentityCookie performs the strict decode used for cookie-based
// login: exactly three elements, string id, string auth key, integral
// duration. Anything else is rejected so a tampered cookie never reaches the
// identity store.
func decodeIdentityCookie(value string) (id, authKey string, duration time.Duration, err error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", "", 0, ErrMalformedCookie
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) != 3 {
		return "", "", 0, ErrMalformedCookie
	}
	if err := json.Unmarshal(parts[0], &id); err != nil || id == "" {
		return "", "", 0, ErrMalformedCookie
	}
	if err := json.Unmarshal(parts[1], &authKey); err != nil || authKey == "" {
		return "", "", 0, ErrMalformedCookie
	}
	var seconds int64
	if err := json.Unmarshal(parts[2], &seconds); err != nil || seconds < 0 {
		return "", "", 0, ErrMalformedCookie
	}
	return id, authKey, time.Duration(seconds) * time.Second, nil
}

// decodeCookieDuration is the lenient decode used when renewing an existing
// cookie's lifetime: any array of at least three elements whose third element
// is numeric qualifies. The cookie value itself is reissued untouched.
func decodeCookieDuration(value string) (time.Duration, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return 0, false
	}

	var parts []any
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) < 3 {
		return 0, false
	}
	seconds, ok := parts[2].(float64)
	if !ok || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}
