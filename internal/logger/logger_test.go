package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "test.log")

	var stdout, stderr bytes.Buffer
	disabled := NewWithOutput(false, logFile, true, &stdout, &stderr)
	require.NotNil(t, disabled)
	_, err := os.Stat(logFile)
	assert.True(t, os.IsNotExist(err), "no log file expected when debug logging is disabled")

	enabled := NewWithOutput(true, logFile, true, &stdout, &stderr)
	require.NotNil(t, enabled)
	require.NoError(t, enabled.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "autocommit debug logging started")
	assert.Contains(t, stdout.String(), "Debug logging enabled")
}

func TestLoggingToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")

	var stdout, stderr bytes.Buffer
	l := NewWithOutput(true, logFile, false, &stdout, &stderr)

	l.Info("Test info message")
	l.Warning("Test warning message")
	l.Error("Test error message")
	l.Debug("filtered debug message")
	require.NoError(t, l.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	logContent := string(content)
	assert.Contains(t, logContent, "Test info message")
	assert.Contains(t, logContent, "Test warning message")
	assert.Contains(t, logContent, "Test error message")
	assert.NotContains(t, logContent, "filtered debug message")

	// Warnings stay off the console when not verbose, errors never do
	assert.NotContains(t, stdout.String(), "Test warning message")
	assert.Contains(t, stderr.String(), "❌ Test error message")
}

func TestSetLevel(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")

	l := NewWithOutput(true, logFile, false, &bytes.Buffer{}, &bytes.Buffer{})
	l.SetLevel(zapcore.DebugLevel)
	l.Debug("event %s %s", "add", "a.txt")
	require.NoError(t, l.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "event add a.txt")
}

func TestUserMessages(t *testing.T) {
	core, entries := observer.New(zapcore.DebugLevel)

	var stdout, stderr bytes.Buffer
	l := NewWithCore(core, true, &stdout, &stderr)

	l.InfoToUser("info for %s", "user")
	l.WarningToUser("careful")
	l.Success("Committed: %s", "msg")
	l.StatusMessage("Watching for file changes...")
	l.Warning("verbose warning")

	out := stdout.String()
	assert.Contains(t, out, "ℹ️  info for user\n")
	assert.Contains(t, out, "⚠️  careful\n")
	assert.Contains(t, out, "✅ Committed: msg\n")
	assert.Contains(t, out, "Watching for file changes...\n")
	assert.Contains(t, out, "⚠️  verbose warning\n")
	assert.Empty(t, stderr.String())

	// StatusMessage is console only
	assert.Equal(t, 0, entries.FilterMessage("Watching for file changes...").Len())
	assert.Equal(t, 1, entries.FilterMessage("Committed: msg").Len())
	assert.Equal(t, 1, entries.FilterLevelExact(zapcore.WarnLevel).FilterMessage("careful").Len())
}

func TestDisabledLoggerSkipsStructuredOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l := NewWithOutput(false, "", false, &stdout, &stderr)

	l.Info("hidden")
	l.Debug("hidden")
	l.Error("shown")

	assert.Empty(t, stdout.String())
	assert.Equal(t, "❌ shown\n", stderr.String())
	assert.NoError(t, l.Close())
}

func TestSetWriters(t *testing.T) {
	l := NewWithOutput(false, "", false, &bytes.Buffer{}, &bytes.Buffer{})

	var stdout, stderr bytes.Buffer
	l.SetStdout(&stdout)
	l.SetStderr(&stderr)

	l.StatusMessage("status")
	l.Error("failure")

	assert.Equal(t, "status\n", stdout.String())
	assert.Equal(t, "❌ failure\n", stderr.String())
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" INFO ":  zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got, s)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}
