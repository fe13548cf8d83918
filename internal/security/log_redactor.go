// Package security keeps Gemini credentials out of log output.
package security

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces every credential found in a log record.
const RedactedPlaceholder = "[REDACTED_KEY]"

// sensitivePatterns match the credential shapes that can reach a log line.
var sensitivePatterns = []*regexp.Regexp{
	// Google API keys: AIza...
	regexp.MustCompile(`AIza[a-zA-Z0-9_-]{30,}`),
	// Keys passed as query parameters: ?key=...
	regexp.MustCompile(`([?&]key=)[^&\s"]+`),
	// The header Gemini authenticates with.
	regexp.MustCompile(`(?i)(x-goog-api-key:\s*)\S+`),
	// Bearer tokens
	regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]{20,}`),
}

// Redact scans a string for credentials and replaces them.
func Redact(s string) string {
	result := s
	for _, pattern := range sensitivePatterns {
		if pattern.NumSubexp() > 0 {
			result = pattern.ReplaceAllString(result, "${1}"+RedactedPlaceholder)
			continue
		}
		result = pattern.ReplaceAllString(result, RedactedPlaceholder)
	}
	return result
}

// RedactedHandler wraps an slog.Handler and redacts credentials from log records.
type RedactedHandler struct {
	inner slog.Handler
}

// NewRedactedHandler wraps inner so that all of its output is redacted.
func NewRedactedHandler(inner slog.Handler) *RedactedHandler {
	return &RedactedHandler{inner: inner}
}

// Enabled reports whether the handler handles records at the given level.
func (h *RedactedHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle redacts the message and attributes of r before passing it on.
func (h *RedactedHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, Redact(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, out)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *RedactedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactedHandler{inner: h.inner.WithAttrs(redacted)}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactedHandler) WithGroup(name string) slog.Handler {
	return &RedactedHandler{inner: h.inner.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if isSensitiveKey(strings.ToLower(a.Key)) {
		return slog.String(a.Key, RedactedPlaceholder)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, Redact(a.Value.String()))
	case slog.KindGroup:
		group := a.Value.Group()
		redacted := make([]any, len(group))
		for i, ga := range group {
			redacted[i] = redactAttr(ga)
		}
		return slog.Group(a.Key, redacted...)
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, Redact(err.Error()))
		}
		if ss, ok := a.Value.Any().([]string); ok {
			out := make([]string, len(ss))
			for i, s := range ss {
				out[i] = Redact(s)
			}
			return slog.Any(a.Key, out)
		}
	}

	return a
}

func isSensitiveKey(key string) bool {
	for _, k := range []string{"authorization", "api_key", "apikey", "api-key", "secret", "password", "access_token", "credential"} {
		if strings.Contains(key, k) {
			return true
		}
	}
	return false
}
