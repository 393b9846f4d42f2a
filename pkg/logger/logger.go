package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

var Logger = slog.Default()

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	UserKey      ContextKey = "user"
)

func InitLogger(level string) *slog.Logger {
	return InitLoggerTo(os.Stdout, level)
}

func InitLoggerTo(w io.Writer, level string) *slog.Logger {
	Logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
	slog.SetDefault(Logger)
	return Logger
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// WithContext returns Logger annotated with the request id and user found in ctx.
func WithContext(ctx context.Context) *slog.Logger {
	args := make([]any, 0, 4)
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		args = append(args, "request_id", v)
	}
	if v, ok := ctx.Value(UserKey).(string); ok {
		args = append(args, "user", v)
	}
	return Logger.With(args...)
}
