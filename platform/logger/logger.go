// Package logger is the slog setup shared by the API and the scheduler,
// plus a few named events so their fields stay consistent across call sites.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	ActorKey     contextKey = "actor"
)

type Logger struct {
	*slog.Logger
}

// New logs text at debug level in development and JSON at info elsewhere.
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

func NewWithWriter(env string, w io.Writer) *Logger {
	if strings.EqualFold(env, "development") {
		return &Logger{Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	}
	return &Logger{Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))}
}

// WithContext adds the request id and acting staff member stored by the
// HTTP middleware. Missing values are skipped.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	var attrs []any
	for _, key := range []contextKey{RequestIDKey, ActorKey} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	if len(attrs) == 0 {
		return l
	}
	return &Logger{Logger: l.With(attrs...)}
}

func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.Error("http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Any("error", err),
		slog.String("client_ip", clientIP),
	)
}

// DatabaseError is for repository failures that are swallowed rather than returned.
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error", slog.String("operation", operation), slog.Any("error", err))
}

func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded", slog.String("client_ip", clientIP), slog.String("path", path))
}

// WebhookIgnored records a GreenAPI delivery that was acknowledged without creating anything.
func (l *Logger) WebhookIgnored(reason, webhookType string) {
	l.Info("webhook_ignored", slog.String("reason", reason), slog.String("typeWebhook", webhookType))
}

// DispatchFailed records a WhatsApp send the gateway did not accept.
func (l *Logger) DispatchFailed(destination, purpose string, statusCode int, quotaExceeded bool, errMsg string) {
	l.Warn("dispatch_failed",
		slog.String("destination", destination),
		slog.String("purpose", purpose),
		slog.Int("status", statusCode),
		slog.Bool("quotaExceeded", quotaExceeded),
		slog.String("error", errMsg),
	)
}
