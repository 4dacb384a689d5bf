package logger

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KevDevLee/namens-tinder/internal/config"
)

// capture routes the global logger into a buffer during f().
func capture(t *testing.T, f func()) string {
	t.Helper()

	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	f()
	return buf.String()
}

func logConfig(level, format, component string, source bool) *config.Config {
	cfg := &config.Config{}
	cfg.Log = config.LogConfig{Level: level, Format: format, Component: component, Source: source}
	return cfg
}

func TestLogger_TextFormat(t *testing.T) {
	out := capture(t, func() {
		InitFromConfig(logConfig("debug", "text", "test", false))
		Info("hello names", "key", "value")
	})

	assert.Contains(t, out, "hello names")
	assert.Contains(t, out, "component=test")
	assert.Contains(t, out, "key=value")
}

func TestLogger_JSONFormat(t *testing.T) {
	out := capture(t, func() {
		InitFromConfig(logConfig("info", "json", "json_test", false))
		Info("json log", "foo", "bar")
	})

	assert.Contains(t, out, `"msg":"json log"`)
	assert.Contains(t, out, `"component":"json_test"`)
	assert.Contains(t, out, `"foo":"bar"`)
}

func TestLogger_LevelFilter(t *testing.T) {
	out := capture(t, func() {
		InitFromConfig(logConfig("error", "text", "", false))
		Info("should not appear")
		Error("should appear")
	})

	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
}

func TestLogger_Enabled(t *testing.T) {
	capture(t, func() {
		InitFromConfig(logConfig("warn", "text", "", false))
		assert.False(t, Enabled(slog.LevelInfo))
		assert.True(t, Enabled(slog.LevelError))
	})
}

func TestLogger_WithAddsFields(t *testing.T) {
	out := capture(t, func() {
		InitFromConfig(logConfig("debug", "text", "", false))
		With("req_id", "123").Info("processing request")
	})

	assert.Contains(t, out, "req_id=123")
}

func TestLogger_SourceFromConfig(t *testing.T) {
	out := capture(t, func() {
		InitFromConfig(logConfig("debug", "json", "cfg_test", true))
		Debug("cfg-based log")
	})

	assert.Contains(t, out, `"msg":"cfg-based log"`)
	assert.Contains(t, out, `"component":"cfg_test"`)
	assert.Contains(t, out, `"source"`)
}
