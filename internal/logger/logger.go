package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger creates a new structured logger with the specified log level.
// Valid levels are: debug, info, warn, error.
//
// A nil output defaults to stderr: with the STDIO transport the MCP
// protocol owns stdout, so log lines must never be written there.
func NewLogger(level string, output io.Writer) (*slog.Logger, error) {
	slogLevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
	}

	handler := slog.NewJSONHandler(output, opts)
	logger := slog.New(handler)

	return logger, nil
}

// NewZerolog creates the zerolog logger used by the fetching layer, writing
// human-readable lines to the given output at the specified level. Unknown
// levels fall back to info; the fetcher logger is best-effort diagnostics.
func NewZerolog(level string, output io.Writer) zerolog.Logger {
	if output == nil {
		output = os.Stderr
	}

	zlevel := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		zlevel = zerolog.DebugLevel
	case "warn":
		zlevel = zerolog.WarnLevel
	case "error":
		zlevel = zerolog.ErrorLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: output}).Level(zlevel).With().Timestamp().Logger()
}

// Default creates a logger with info level and stderr output
func Default() *slog.Logger {
	logger, _ := NewLogger("info", os.Stderr)
	return logger
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", level)
	}
}
