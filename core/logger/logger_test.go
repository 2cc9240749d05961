package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakframe/oak/core/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output with base attrs", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("app", "demo")),
		)
		log.Info("started", logger.Component("server"))

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "started", record["msg"])
		assert.Equal(t, "demo", record["app"])
		assert.Equal(t, "server", record["component"])
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithLevel(slog.LevelWarn),
		)
		log.Info("dropped")
		log.Warn("kept")
		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "kept")
	})
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("json format and debug level", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.FromConfig(
			logger.Config{Level: "debug", Format: "json"},
			logger.WithOutput(&buf),
		)
		log.Debug("visible")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "visible", record["msg"])
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.FromConfig(
			logger.Config{Level: "loud", Format: "text"},
			logger.WithOutput(&buf),
		)
		log.Debug("dropped")
		log.Info("kept")
		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "kept")
	})
}

func TestAttrNilSafety(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))
	assert.Equal(t, slog.Attr{}, logger.UserID(""))
	assert.Equal(t, slog.Attr{}, logger.SessionID(""))
	assert.Equal(t, slog.Attr{}, logger.Route(""))
	assert.NotEqual(t, slog.Attr{}, logger.Error(errors.New("x")))
	assert.NotEqual(t, slog.Attr{}, logger.UserID("42"))
}
