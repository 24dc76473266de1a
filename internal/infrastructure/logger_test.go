package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/config"
)

func TestNewLoggerConsoleJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "console"}, &buf)
	require.NoError(t, err)
	assert.Nil(t, closer)

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.InfoContext(ctx, "report written", "exchange", "A")
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "report written", entry["msg"])
	assert.Equal(t, "A", entry["exchange"])
	assert.Equal(t, "trace-123", entry["trace_id"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "text", Output: "console"}, &buf)
	require.NoError(t, err)

	WithComponent(logger, "fetcher").Debug("downloading")

	assert.Contains(t, buf.String(), "msg=downloading")
	assert.Contains(t, buf.String(), "component=fetcher")
}

func TestNewLoggerBoth(t *testing.T) {
	var buf bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "logs", "bhavcopy.log")

	logger, closer, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "both", FilePath: logFile}, &buf)
	require.NoError(t, err)
	require.NotNil(t, closer)

	logger.Warn("registry missing")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "registry missing")
	assert.Contains(t, buf.String(), "registry missing")
}

func TestNewLoggerFileError(t *testing.T) {
	_, _, err := NewLogger(config.LoggingConfig{Output: "file"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestInitializeLogger(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "app.log")

	logger, err := InitializeLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: logFile})
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, CloseLogFile())
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"hello"`)
}

func TestTraceIDHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	ctx = EnsureTraceID(ctx)
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)))
	assert.NotEqual(t, GenerateTraceID(), GenerateTraceID())
}
