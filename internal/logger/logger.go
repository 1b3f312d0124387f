package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/quiz-registration-service/internal/config"
)

// NewLogger creates the process logger: JSON to stdout, tagged with the service name and
// environment.
func NewLogger(cfg *config.Config) *slog.Logger {
	logger := New(cfg.Logging.Level, os.Stdout).With(
		"service", cfg.Application.Name,
		"env", cfg.Application.Env,
	)
	logger.Info("logger initialized", "level", ParseLevel(cfg.Logging.Level))
	return logger
}

// New builds a JSON logger writing to w. Source locations are added at debug level.
func New(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps a config level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
