package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureJSON(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init(Config{Level: level, Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "info", Format: "json"}) })
	return &buf
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestInit_LevelFilters(t *testing.T) {
	buf := captureJSON(t, "warn")

	Info().Msg("hidden")
	Warn().Str("k", "v").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "v", entry["k"])
}

func TestCtx_AddsRequestID(t *testing.T) {
	buf := captureJSON(t, "debug")

	ctx := ContextWithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", RequestID(ctx))

	Ctx(ctx).Debug().Msg("with id")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-123", entry["request_id"])
}

func TestCtx_WithoutRequestID(t *testing.T) {
	buf := captureJSON(t, "info")

	Ctx(context.Background()).Info().Msg("plain")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestGenerateRequestID(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
