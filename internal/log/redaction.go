// Package log provides slog helpers shared by the session layer:
// credential redaction and the disabled default logger.
package log

import (
	"context"
	"log/slog"
	"strings"
)

// sensitiveKeys lists key substrings whose values are redacted before a
// record reaches the wrapped handler. Matching is case-insensitive.
// Session debug logging includes request metadata; endpoint credentials
// must never reach a log sink.
var sensitiveKeys = []string{
	"password",
	"pass",
	"secret",
	"token",
	"auth",
	"cred",
}

// Discard returns a logger whose output is dropped entirely. It is the
// default when no logger is configured.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// RedactingHandler is a slog.Handler that redacts sensitive attribute
// values before delegating to the wrapped handler.
type RedactingHandler struct {
	next slog.Handler
}

// NewRedactingHandler wraps next with credential redaction.
func NewRedactingHandler(next slog.Handler) *RedactingHandler {
	return &RedactingHandler{next: next}
}

// Enabled implements slog.Handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler. Attributes are redacted before the
// record reaches the wrapped handler.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	var attrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, redactAttr(a))
		return true
	})

	redacted := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	redacted.AddAttrs(attrs...)

	return h.next.Handle(ctx, redacted)
}

// WithAttrs implements slog.Handler.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(redacted)}
}

// WithGroup implements slog.Handler.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		group := make([]interface{}, len(attrs))
		for i, attr := range attrs {
			group[i] = redactAttr(attr)
		}
		return slog.Group(a.Key, group...)
	}

	lowerKey := strings.ToLower(a.Key)
	for _, sens := range sensitiveKeys {
		if strings.Contains(lowerKey, sens) {
			return slog.String(a.Key, "[REDACTED]")
		}
	}

	return a
}
