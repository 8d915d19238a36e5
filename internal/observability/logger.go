// Package observability holds the structured logger and the Prometheus
// metrics for the auth server.
package observability

import (
	"context"
	"log/slog"
	"os"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
	orgIDKey     contextKey = "org_id"
)

var logger *slog.Logger

// InitLogger installs the process-wide slog logger. format is "json" or
// "text"; source locations are attached only at debug level.
func InitLogger(level, format string) {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: level == "debug",
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func base() *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// FromContext returns the logger enriched with whatever identity the
// request context carries.
func FromContext(ctx context.Context) *slog.Logger {
	l := base()
	if reqID, ok := ctx.Value(requestIDKey).(string); ok && reqID != "" {
		l = l.With(slog.String("request_id", reqID))
	}
	if userID, ok := ctx.Value(userIDKey).(string); ok && userID != "" {
		l = l.With(slog.String("user_id", userID))
	}
	if orgID, ok := ctx.Value(orgIDKey).(string); ok && orgID != "" {
		l = l.With(slog.String("org_id", orgID))
	}
	return l
}

// WithRequestID stamps the request id onto the context for FromContext.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithUserID stamps the authenticated user onto the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// WithOrgID stamps the caller's organization onto the context.
func WithOrgID(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, orgIDKey, orgID)
}

// Info logs at info level on the process logger.
func Info(msg string, args ...any) { base().Info(msg, args...) }

// Warn logs at warn level on the process logger.
func Warn(msg string, args ...any) { base().Warn(msg, args...) }

// Error logs at error level on the process logger.
func Error(msg string, args ...any) { base().Error(msg, args...) }

// Debug logs at debug level on the process logger.
func Debug(msg string, args ...any) { base().Debug(msg, args...) }
