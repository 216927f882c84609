package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"descstats/internal/config"
)

func lastLogEntry(t *testing.T, content []byte) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func bufferLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(&traceHandler{Handler: slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLogLevel(level)})})
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "nested", "test.log")

	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = os.Stat(logFile)
	require.NoError(t, err, "log file should be created with its directory")

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	entry := lastLogEntry(t, content)
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Contains(t, entry, "source")
}

func TestInitializeLogger_Once(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "console"})
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first, GetLogger())
}

func TestContextIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := bufferLogger(&buf, "debug")

	ctx := WithTraceID(context.Background(), "test-trace-123")
	ctx = WithRunID(ctx, "run-42")
	logger.InfoContext(ctx, "test with ids")

	entry := lastLogEntry(t, buf.Bytes())
	assert.Equal(t, "test-trace-123", entry["trace_id"])
	assert.Equal(t, "run-42", entry["run_id"])

	buf.Reset()
	logger.With("component", "stats").WarnContext(ctx, "grouped")
	entry = lastLogEntry(t, buf.Bytes())
	assert.Equal(t, "run-42", entry["run_id"], "ids survive With")
	assert.Equal(t, "stats", entry["component"])
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level   string
		logged  []string
		dropped []string
	}{
		{"debug", []string{"DEBUG", "INFO", "WARN", "ERROR"}, nil},
		{"info", []string{"INFO", "WARN", "ERROR"}, []string{"DEBUG"}},
		{"warning", []string{"WARN", "ERROR"}, []string{"DEBUG", "INFO"}},
		{"error", []string{"ERROR"}, []string{"DEBUG", "INFO", "WARN"}},
		{"bogus", []string{"INFO"}, []string{"DEBUG"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := bufferLogger(&buf, tt.level)

			logger.Debug("m")
			logger.Info("m")
			logger.Warn("m")
			logger.Error("m")

			out := buf.String()
			for _, lvl := range tt.logged {
				assert.Contains(t, out, `"level":"`+lvl+`"`)
			}
			for _, lvl := range tt.dropped {
				assert.NotContains(t, out, `"level":"`+lvl+`"`)
			}
		})
	}
}

func TestNewRun(t *testing.T) {
	ctx, runID := NewRun(context.Background())
	assert.NotEmpty(t, runID)
	assert.Equal(t, runID, GetRunID(ctx))

	_, other := NewRun(context.Background())
	assert.NotEqual(t, runID, other)
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.NotEmpty(t, id)

	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)), "existing id is kept")
	assert.Empty(t, GetTraceID(context.Background()))
}
