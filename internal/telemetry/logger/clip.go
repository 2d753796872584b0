package logger

import (
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// DefaultMaxValueLen bounds string attributes. Client payloads can be up to
// the bulk string limit and must not flood the log.
const DefaultMaxValueLen = 256

// clipAttr shortens long string values and recurses into groups.
func clipAttr(a slog.Attr, maxLen int) slog.Attr {
	if maxLen < 0 {
		return a
	}

	switch a.Value.Kind() {
	case slog.KindString:
		if s := a.Value.String(); len(s) > maxLen {
			return slog.String(a.Key, Clip(s, maxLen))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		clipped := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			clipped[i] = clipAttr(attr, maxLen)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clipped...)}
	}
	return a
}

// Clip truncates s to at most maxLen bytes on a rune boundary and notes how
// many bytes were dropped.
func Clip(s string, maxLen int) string {
	if maxLen < 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s...(+%d bytes)", s[:cut], len(s)-cut)
}
