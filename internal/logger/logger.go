package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the logging interface used throughout autocommit.
// It separates the structured debug log (Debug, Info, Warning, Error) from
// user-facing console lines (InfoToUser, WarningToUser, Success, StatusMessage).
//
// All format strings follow fmt.Printf style formatting.
type Logger interface {
	// Structured log methods (written to the log file when debug logging is enabled)

	// Debug logs a low-level trace message, such as a single filesystem event.
	Debug(format string, args ...interface{})

	// Info logs an informational message for debugging purposes.
	Info(format string, args ...interface{})

	// Warning logs a warning message. It is echoed to stdout in verbose mode.
	Warning(format string, args ...interface{})

	// Error logs an error message. Errors are always written to stderr as well.
	Error(format string, args ...interface{})

	// User-facing methods (written to stdout, and to the log file when enabled)

	// InfoToUser logs an informational message intended for users.
	InfoToUser(format string, args ...interface{})

	// WarningToUser logs a warning message intended for users.
	WarningToUser(format string, args ...interface{})

	// Success logs a success message to the user, such as a created commit.
	Success(format string, args ...interface{})

	// StatusMessage prints a status line to stdout only (no structured logging).
	StatusMessage(format string, args ...interface{})

	// Close flushes buffered log entries and closes the log file.
	Close() error
}

// DefaultLogger implements Logger on top of a zap core for the structured log
// and plain writers for console output.
type DefaultLogger struct {
	mu      sync.Mutex
	log     *zap.SugaredLogger
	level   zap.AtomicLevel
	enabled bool
	logFile string
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
	file    *os.File
}

// New creates a Logger writing console output to os.Stdout and os.Stderr.
func New(enabled bool, logFile string, verbose bool) Logger {
	return NewWithOutput(enabled, logFile, verbose, os.Stdout, os.Stderr)
}

// NewWithOutput creates a DefaultLogger with custom console writers.
// When enabled is false the structured log is discarded.
func NewWithOutput(enabled bool, logFile string, verbose bool, stdout, stderr io.Writer) *DefaultLogger {
	l := &DefaultLogger{
		level:   zap.NewAtomicLevelAt(zapcore.InfoLevel),
		logFile: logFile,
		verbose: verbose,
		stdout:  stdout,
		stderr:  stderr,
	}

	if !enabled {
		l.log = zap.NewNop().Sugar()
		return l
	}

	if logDir := filepath.Dir(logFile); logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			_, _ = fmt.Fprintf(stderr, "⚠️ Failed to create log directory: %v\n", err)
		}
	}

	f, err := os.OpenFile(filepath.Clean(logFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		// Fall back to stderr so debug output is not silently lost
		_, _ = fmt.Fprintf(stderr, "⚠️ Failed to open log file: %v, using stderr instead\n", err)
		l.log = zap.New(zapcore.NewCore(fileEncoder(), zapcore.AddSync(stderr), l.level)).Sugar()
		l.enabled = true
		return l
	}

	l.file = f
	l.enabled = true
	l.log = zap.New(zapcore.NewCore(fileEncoder(), zapcore.AddSync(f), l.level)).Sugar()
	_, _ = fmt.Fprintf(stdout, "🔍 Debug logging enabled. Logs will be written to: %s\n", logFile)
	l.log.Info("autocommit debug logging started")

	return l
}

// NewWithCore creates a DefaultLogger whose structured log goes to core.
// Tests use it with zaptest/observer.
func NewWithCore(core zapcore.Core, verbose bool, stdout, stderr io.Writer) *DefaultLogger {
	return &DefaultLogger{
		log:     zap.New(core).Sugar(),
		level:   zap.NewAtomicLevelAt(zapcore.DebugLevel),
		enabled: true,
		verbose: verbose,
		stdout:  stdout,
		stderr:  stderr,
	}
}

// fileEncoder returns the console encoder used for log files.
func fileEncoder() zapcore.Encoder {
	//nolint:exhaustruct // Default values are fine for the remaining keys.
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		MessageKey:       "message",
		LevelKey:         "level",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: ", ",
	})
}

// ParseLogLevel converts string input to a zap log level.
func ParseLogLevel(s string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// SetLevel changes the minimum level of the structured log.
// It has no effect on loggers built with NewWithCore.
func (l *DefaultLogger) SetLevel(level zapcore.Level) {
	l.level.SetLevel(level)
}

// Debug logs a trace message (file only)
func (l *DefaultLogger) Debug(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return
	}
	l.log.Debugf(format, args...)
}

// Info logs an informational message (file only)
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return
	}
	l.log.Infof(format, args...)
}

// InfoToUser logs an informational message to both file and stdout
func (l *DefaultLogger) InfoToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.log.Info(msg)
	}
	_, _ = fmt.Fprintf(l.stdout, "ℹ️  %s\n", msg)
}

// Success logs a success message to both file and stdout
func (l *DefaultLogger) Success(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.log.Info(msg)
	}
	_, _ = fmt.Fprintf(l.stdout, "✅ %s\n", msg)
}

// Warning logs a warning message
func (l *DefaultLogger) Warning(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.log.Warn(msg)
	}

	// Verbose mode shows warnings regardless of file logging
	if l.verbose {
		_, _ = fmt.Fprintf(l.stdout, "⚠️  %s\n", msg)
	}
}

// WarningToUser logs a warning message to both file and stdout
func (l *DefaultLogger) WarningToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.log.Warn(msg)
	}
	_, _ = fmt.Fprintf(l.stdout, "⚠️  %s\n", msg)
}

// Error logs an error message and always echoes it to stderr
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.log.Error(msg)
	}
	_, _ = fmt.Fprintf(l.stderr, "❌ %s\n", msg)
}

// StatusMessage prints a status message to stdout only (no logging)
func (l *DefaultLogger) StatusMessage(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = fmt.Fprintln(l.stdout, fmt.Sprintf(format, args...))
}

// Close flushes the structured log and closes the log file
func (l *DefaultLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	// Sync on a regular file only fails for real I/O problems
	if err := l.log.Sync(); err != nil {
		_ = l.file.Close()
		l.file = nil
		return err
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// SetStdout sets a custom writer for user-facing stdout messages only.
// NOTE: This does not affect where structured log entries are written.
func (l *DefaultLogger) SetStdout(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stdout = w
}

// SetStderr sets a custom writer for user-facing stderr messages only.
// NOTE: This does not affect where structured log entries are written.
func (l *DefaultLogger) SetStderr(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stderr = w
}
