package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yangdangfu/ftpsync/config"
)

func emitAll(l Logger) {
	l.Error("error message")
	l.Warn("warn message")
	l.Info("info message")
	l.Debug("debug message")
	l.Verbose("verbose message")
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(&config.LoggerConfig{Level: config.LogLevelInfo})
	require.NotNil(t, logger)
}

func TestLogLevelFiltering(t *testing.T) {
	tests := []struct {
		level    config.LogLevel
		expected []string
		absent   []string
	}{
		{
			level:  config.LogLevelSilent,
			absent: []string{"error message", "warn message", "info message", "debug message", "verbose message"},
		},
		{
			level:    config.LogLevelError,
			expected: []string{"error message"},
			absent:   []string{"warn message", "info message", "debug message", "verbose message"},
		},
		{
			level:    config.LogLevelInfo,
			expected: []string{"error message", "warn message", "info message"},
			absent:   []string{"debug message", "verbose message"},
		},
		{
			level:    config.LogLevelDebug,
			expected: []string{"error message", "warn message", "info message", "debug message"},
			absent:   []string{"verbose message"},
		},
		{
			level:    config.LogLevelVerbose,
			expected: []string{"error message", "warn message", "info message", "debug message", "verbose message"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &config.LoggerConfig{
				Level:      tt.level,
				TimeFormat: "",
			}
			logger := NewLoggerWithWriter(cfg, &buf)
			emitAll(logger)

			output := buf.String()
			for _, want := range tt.expected {
				require.Contains(t, output, want)
			}
			for _, unwanted := range tt.absent {
				require.NotContains(t, output, unwanted)
			}
		})
	}
}

func TestLoggerFormatting(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.LoggerConfig{Level: config.LogLevelInfo, TimeFormat: ""}
	logger := NewLoggerWithWriter(cfg, &buf)

	logger.Info("downloaded %d files", 3)
	require.Contains(t, buf.String(), "downloaded 3 files")
	require.Contains(t, buf.String(), "[info]")
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.LoggerConfig{Level: config.LogLevelInfo, TimeFormat: ""}
	logger := NewLoggerWithWriter(cfg, &buf)

	child := logger.With("host", "ftp.example.com")
	child.Info("listing")

	output := buf.String()
	require.Contains(t, output, "host=ftp.example.com")
	require.Contains(t, output, "listing")

	// The parent logger must not inherit the child's fields.
	buf.Reset()
	logger.Info("plain")
	require.NotContains(t, buf.String(), "host=")
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.LoggerConfig{Level: config.LogLevelInfo, TimeFormat: ""}
	logger := NewLoggerWithWriter(cfg, &buf)

	child := logger.WithFields(map[string]interface{}{"host": "h", "dir": "d"})
	child.Info("msg")

	output := buf.String()
	require.Contains(t, output, "host=h")
	require.Contains(t, output, "dir=d")
}

func TestNoOpLogger(t *testing.T) {
	logger := NewNoOpLogger()
	require.NotNil(t, logger)

	// Must not panic and must keep returning a usable logger.
	emitAll(logger)
	emitAll(logger.With("k", "v"))
	emitAll(logger.WithFields(map[string]interface{}{"k": "v"}))
}

func TestDefaultLoggerAppliesDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(nil, &buf)

	logger.Info("hello")
	require.True(t, strings.Contains(buf.String(), "hello"))
}
