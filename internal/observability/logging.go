// Package observability provides domain logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// SetGlobalLogger routes domain logging through l, typically the
// context-aware request logger configured at startup.
func SetGlobalLogger(l *slog.Logger) {
	if l != nil {
		GlobalLogger = &Logger{Logger: l}
	}
}

// DomainLogger provides structured logging for one service component.
type DomainLogger struct {
	component string
}

// NewDomainLogger creates a DomainLogger for the given component.
func NewDomainLogger(component string) *DomainLogger {
	return &DomainLogger{component: component}
}

// LogTransition logs a state change of an entity.
func (l *DomainLogger) LogTransition(ctx context.Context, entity string, id uint, from, to string, fields map[string]any) {
	attrs := []any{
		slog.String("component", l.component),
		slog.String("entity", entity),
		slog.Uint64("id", uint64(id)),
		slog.String("from", from),
		slog.String("to", to),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	GlobalLogger.InfoContext(ctx, "state transition", attrs...)
}

// LogEvent logs a domain event that is not a state transition.
func (l *DomainLogger) LogEvent(ctx context.Context, msg string, fields map[string]any) {
	attrs := []any{slog.String("component", l.component)}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	GlobalLogger.InfoContext(ctx, msg, attrs...)
}

// LogError logs a failed operation.
func (l *DomainLogger) LogError(ctx context.Context, err error, operation string) {
	GlobalLogger.ErrorContext(ctx, "operation failed",
		slog.String("component", l.component),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}
