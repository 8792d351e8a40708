package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"chatty":  LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Format: "json", Output: &buf})

	logger.WithComponent("store").With("page_id", "p1").
		Warn(context.Background(), errors.New("disk"), "save failed", "attempt", 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "save failed", entry["msg"])
	assert.Equal(t, "store", entry["component"])
	assert.Equal(t, "p1", entry["page_id"])
	assert.Equal(t, "disk", entry["error"])
	assert.Equal(t, float64(1), entry["attempt"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Output: &buf})

	logger.Debug(context.Background(), "hidden")
	logger.Info(context.Background(), "hidden too")
	assert.Empty(t, buf.String())

	logger.Error(context.Background(), nil, "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(&LoggerConfig{Level: LevelInfo, Output: &buf})
	_ = parent.With("k", "v")

	parent.Info(context.Background(), "plain")
	assert.NotContains(t, buf.String(), "k=v")
}

func TestSanitizeForLog(t *testing.T) {
	assert.Equal(t, "short", SanitizeForLog("short"))
	long := strings.Repeat("x", 500)
	assert.True(t, strings.HasSuffix(SanitizeForLog(long), "[TRUNCATED]"))
}
