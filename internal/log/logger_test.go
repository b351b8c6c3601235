package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redesperanza/web/internal/config"
)

func TestNewProductionWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Environment: "production", App: "web", Out: &buf})
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Str("case_id", "c-1").Msg("case loaded")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "case loaded", entry["message"])
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, "web", entry["app"])
	assert.Equal(t, "c-1", entry["case_id"])
}

func TestNewDevelopmentUsesConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Environment: "development", Out: &buf})
	require.NoError(t, err)

	logger.Debug().Msg("draft saved")

	assert.Contains(t, buf.String(), "draft saved")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestNewLevelOverride(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Environment: "development", Level: "warn", Format: FormatJSON, Out: &buf})
	require.NoError(t, err)

	logger.Info().Msg("quiet")
	logger.Warn().Msg("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	assert.ErrorContains(t, err, "log level")

	_, err = New(Options{Format: "xml"})
	assert.ErrorContains(t, err, "unknown log format")
}

func TestFromConfig(t *testing.T) {
	cfg := &config.AppConfig{Environment: "production", Log: config.LogConfig{Level: "error"}}

	logger, err := FromConfig(cfg, "worker")
	require.NoError(t, err)
	assert.Equal(t, "error", logger.GetLevel().String())
}

func TestRequestIDContext(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))

	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
}
