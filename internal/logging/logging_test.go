package logging

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo}, // default
		{"", slog.LevelInfo},        // default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestOpen_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	logger, closer, err := Open(dir, slog.LevelInfo)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("task started", "id", "abc")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	assert.Contains(t, string(content), "task started")
	assert.Contains(t, string(content), "id=abc")
	assert.NotContains(t, string(content), "hidden")
}

func TestOpen_Disabled(t *testing.T) {
	logger, closer, err := Open("", slog.LevelDebug)
	require.NoError(t, err)
	logger.Info("nowhere")
	assert.NoError(t, closer.Close())
}
