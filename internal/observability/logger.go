package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pizzabot/pizzabot/internal/config"
)

type ctxKey string

const (
	traceIDKey   ctxKey = "trace_id"
	sessionIDKey ctxKey = "session_id"
)

func NewLogger(cfg config.Config, writer io.Writer) *slog.Logger {
	if writer == nil {
		writer = io.Discard
	}
	var handler slog.Handler
	if cfg.Observability.LogJSON {
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: cfg.Observability.LogLevel})
	} else {
		handler = slog.NewTextHandler(writer, &slog.HandlerOptions{Level: cfg.Observability.LogLevel})
	}
	return slog.New(handler).With(
		slog.String("service", cfg.Service.Name),
		slog.String("profile", string(cfg.Profile)),
	)
}

// OpenLogOutput tees console output into the configured log file, if any.
// The returned close func is always non-nil.
func OpenLogOutput(cfg config.Config, console io.Writer) (io.Writer, func() error, error) {
	if cfg.Observability.LogFile == "" {
		return console, func() error { return nil }, nil
	}
	file, err := os.OpenFile(cfg.Observability.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	if console == nil {
		return file, file.Close, nil
	}
	return io.MultiWriter(console, file), file.Close, nil
}

func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

func TraceIDFromContext(ctx context.Context) string {
	value, ok := ctx.Value(traceIDKey).(string)
	if !ok {
		return ""
	}
	return value
}

func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func SessionIDFromContext(ctx context.Context) string {
	value, ok := ctx.Value(sessionIDKey).(string)
	if !ok {
		return ""
	}
	return value
}
