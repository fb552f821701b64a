package logger

import (
	"context"
	"log/slog"
)

type ctxKey string

const fieldsKey ctxKey = "logger_fields"

// With returns a context carrying fields in addition to those already on ctx.
// Loggers built on a ContextHandler add them to every record logged with
// that context.
func With(ctx context.Context, fields ...any) context.Context {
	prev := Fields(ctx)
	merged := make([]any, 0, len(prev)+len(fields))
	merged = append(merged, prev...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, fieldsKey, merged)
}

// Fields returns the key/value pairs stored on ctx by With.
func Fields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey).([]any)
	return fields
}

// From returns the process logger carrying the fields stored on ctx.
func From(ctx context.Context) *slog.Logger {
	return LoggerWrapper().With(Fields(ctx)...)
}

// ContextHandler adds the fields stored on the record's context.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	if ch, ok := h.(*ContextHandler); ok {
		return ch
	}
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if fields := Fields(ctx); len(fields) > 0 {
		r = r.Clone()
		r.Add(fields...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}

// Contextual returns lg unchanged when it already reads context fields and a
// wrapped copy otherwise.
func Contextual(lg *slog.Logger) *slog.Logger {
	if _, ok := lg.Handler().(*ContextHandler); ok {
		return lg
	}
	return slog.New(NewContextHandler(lg.Handler()))
}
