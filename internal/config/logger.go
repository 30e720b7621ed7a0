package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a config log level to a slog level. Unknown values map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger configures the global logger based on the configuration.
// Logs go to stderr so stdout stays free for command output and the MCP stdio transport.
func SetupLogger(level string) *slog.Logger {
	return NewLogger(level, os.Stderr)
}

// NewLogger builds a JSON logger writing to w and installs it as the default.
func NewLogger(level string, w io.Writer) *slog.Logger {
	logLevel := ParseLevel(level)

	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel == slog.LevelDebug, // Add source file/line in debug mode
	}

	logger := slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(logger)
	return logger
}
