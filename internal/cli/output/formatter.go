package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/yndnr/minikv/pkg/resp"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// Formatter writes one reply.
type Formatter interface {
	Format(w io.Writer, v resp.Value) error
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TextFormatter{}
	}
}

// Plain converts a reply to plain Go data: strings, int64, nil, []any, and
// map{"error": msg} for error replies.
func Plain(v resp.Value) any {
	switch v.Kind() {
	case resp.KindSimpleString, resp.KindBulkString:
		s, _ := v.AsString()
		return s
	case resp.KindInt:
		n, _ := v.AsInt()
		return n
	case resp.KindArray:
		items := v.Items()
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = Plain(it)
		}
		return out
	case resp.KindErrorMessage:
		return map[string]string{"error": v.Message()}
	default:
		return nil
	}
}
