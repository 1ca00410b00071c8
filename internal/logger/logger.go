// Package logger wraps zerolog with the service-wide conventions: a single
// global logger configured once at process start, and context-scoped
// loggers that carry per-request fields (job id, request id) downstream.
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger. Init replaces it; until Init is called it
// writes a console-friendly logger to stderr so package init order never
// leaves callers with a nil logger.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

type ctxKey struct{}

// Init configures the global logger for serviceName and installs it as the
// package default.
func Init(serviceName string) {
	zerolog.TimeFieldFormat = time.RFC3339
	Log = zerolog.New(os.Stderr).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// WithContext returns a context carrying l, retrievable with FromContext.
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or the global Log if none
// was attached.
func FromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return Log
}
