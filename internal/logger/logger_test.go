package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		logFunc   func(l *slog.Logger)
		checkFunc func(t *testing.T, output string)
	}{
		{
			name:    "text logger at info level",
			config:  Config{Level: "info", Format: "text"},
			logFunc: func(l *slog.Logger) { l.Info("job queued", "job_id", "abc") },
			checkFunc: func(t *testing.T, output string) {
				assert.Contains(t, output, "level=INFO")
				assert.Contains(t, output, `msg="job queued"`)
				assert.Contains(t, output, "job_id=abc")
			},
		},
		{
			name:    "json logger at debug level",
			config:  Config{Level: "debug", Format: "json"},
			logFunc: func(l *slog.Logger) { l.Debug("claim skipped") },
			checkFunc: func(t *testing.T, output string) {
				var entry map[string]any
				require.NoError(t, json.Unmarshal([]byte(output), &entry))
				assert.Equal(t, "DEBUG", entry["level"])
				assert.Equal(t, "claim skipped", entry["msg"])
			},
		},
		{
			name:    "debug suppressed at warn level",
			config:  Config{Level: "warning", Format: "text"},
			logFunc: func(l *slog.Logger) { l.Debug("hidden"); l.Info("hidden too") },
			checkFunc: func(t *testing.T, output string) {
				assert.Empty(t, output)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(NewLogger(tt.config, &buf))
			tt.checkFunc(t, buf.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
