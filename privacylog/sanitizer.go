// Package privacylog wraps a slog.Handler so no secret key material can
// reach the log sink, whatever attribute key it travels under.
package privacylog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mr-tron/base58"
)

const redactedValue = "[REDACTED]"

var sensitiveKeyParts = []string{"secret", "private", "seed", "passphrase", "password", "token"}

type SanitizingHandler struct {
	next slog.Handler
}

func WrapHandler(next slog.Handler) slog.Handler {
	if next == nil {
		return nil
	}
	return &SanitizingHandler{next: next}
}

func (h *SanitizingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SanitizingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(SanitizeAttr(attr))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *SanitizingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitized := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		sanitized = append(sanitized, SanitizeAttr(attr))
	}
	return &SanitizingHandler{next: h.next.WithAttrs(sanitized)}
}

func (h *SanitizingHandler) WithGroup(name string) slog.Handler {
	return &SanitizingHandler{next: h.next.WithGroup(name)}
}

func SanitizeAttr(attr slog.Attr) slog.Attr {
	key := strings.ToLower(strings.TrimSpace(attr.Key))
	if isSensitiveKey(key) {
		return slog.String(attr.Key, redactedValue)
	}

	if attr.Value.Kind() == slog.KindString && LooksLikeSecretKey(attr.Value.String()) {
		return slog.String(attr.Key, redactedValue)
	}

	if attr.Value.Kind() == slog.KindGroup {
		group := attr.Value.Group()
		sanitized := make([]slog.Attr, 0, len(group))
		for _, member := range group {
			sanitized = append(sanitized, SanitizeAttr(member))
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(sanitized...)}
	}

	return attr
}

func isSensitiveKey(key string) bool {
	for _, part := range sensitiveKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}

// LooksLikeSecretKey reports whether a value is a base58 blob of the raw
// secret-key size. Catches secrets smuggled under an innocent attribute key.
func LooksLikeSecretKey(value string) bool {
	value = strings.TrimSpace(value)
	// a 64 byte payload encodes to roughly 86-88 base58 characters
	if len(value) < 80 || len(value) > 96 {
		return false
	}
	raw, err := base58.Decode(value)
	return err == nil && len(raw) == 64
}
