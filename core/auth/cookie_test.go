package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeRaw(t *testing.T, payload string) string {
	t.Helper()
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

func TestIdentityCookieCodec(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		value, err := encodeIdentityCookie("42", "secret-key", 30*24*time.Hour)
		require.NoError(t, err)

		id, authKey, duration, err := decodeIdentityCookie(value)
		require.NoError(t, err)
		assert.Equal(t, "42", id)
		assert.Equal(t, "secret-key", authKey)
		assert.Equal(t, 30*24*time.Hour, duration)
	})

	t.Run("strict decode rejects malformed values", func(t *testing.T) {
		t.Parallel()
		for name, payload := range map[string]string{
			"not json":          "plain text",
			"not an array":      `{"id":"42"}`,
			"too few elements":  `["42","key"]`,
			"too many elements": `["42","key",60,"extra"]`,
			"numeric id":        `[42,"key",60]`,
			"numeric auth key":  `["42",7,60]`,
			"string duration":   `["42","key","60"]`,
			"float duration":    `["42","key",60.5]`,
			"negative duration": `["42","key",-60]`,
			"empty id":          `["","key",60]`,
			"empty auth key":    `["42","",60]`,
		} {
			payload := payload
			t.Run(name, func(t *testing.T) {
				t.Parallel()
				_, _, _, err := decodeIdentityCookie(encodeRaw(t, payload))
				assert.ErrorIs(t, err, ErrMalformedCookie)
			})
		}

		_, _, _, err := decodeIdentityCookie("%%not-base64%%")
		assert.ErrorIs(t, err, ErrMalformedCookie)
	})

	t.Run("lenient decode accepts extra elements", func(t *testing.T) {
		t.Parallel()
		duration, ok := decodeCookieDuration(encodeRaw(t, `["42","key",3600,"legacy"]`))
		require.True(t, ok)
		assert.Equal(t, time.Hour, duration)
	})

	t.Run("lenient decode still needs a numeric duration", func(t *testing.T) {
		t.Parallel()
		_, ok := decodeCookieDuration(encodeRaw(t, `["42","key","3600"]`))
		assert.False(t, ok)

		_, ok = decodeCookieDuration(encodeRaw(t, `["42","key"]`))
		assert.False(t, ok)
	})
}
