package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelWarn},
		{"verbose", slog.LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.level))
		})
	}
}

func TestNewJSONWithRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "info", Format: "json", Writer: &buf})
	ctx := WithRunID(context.Background(), "run-42")
	logger.DebugContext(ctx, "hidden")
	logger.InfoContext(ctx, "loaded table", slog.Int("rows", 3))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug is below the configured level")
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "run-42", entry["run_id"])
	assert.Equal(t, float64(3), entry["rows"])
}

func TestNewTextKeepsRunIDAcrossWith(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "warn", Writer: &buf}).With(slog.String("cmd", "count"))
	logger.WarnContext(WithRunID(context.Background(), "abc"), "filter ignored")
	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "cmd=count")
	assert.Contains(t, out, "run_id=abc")
	assert.Equal(t, "", RunID(context.Background()))
}
