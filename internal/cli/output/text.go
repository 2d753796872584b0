package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/minikv/pkg/resp"
)

// TextFormatter renders replies the way redis-cli does.
type TextFormatter struct{}

// Format writes v followed by a newline.
func (f *TextFormatter) Format(w io.Writer, v resp.Value) error {
	var b strings.Builder
	writeText(&b, v, "")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeText(b *strings.Builder, v resp.Value, indent string) {
	switch v.Kind() {
	case resp.KindSimpleString:
		s, _ := v.AsString()
		b.WriteString(s)
	case resp.KindBulkString:
		s, _ := v.AsString()
		b.WriteString(strconv.Quote(s))
	case resp.KindInt:
		n, _ := v.AsInt()
		fmt.Fprintf(b, "(integer) %d", n)
	case resp.KindNullBulkString:
		b.WriteString("(nil)")
	case resp.KindErrorMessage:
		b.WriteString("(error) ")
		b.WriteString(v.Message())
	case resp.KindArray:
		items := v.Items()
		if len(items) == 0 {
			b.WriteString("(empty array)\n")
			return
		}
		width := len(strconv.Itoa(len(items)))
		for i, it := range items {
			if i > 0 {
				b.WriteString(indent)
			}
			prefix := fmt.Sprintf("%*d) ", width, i+1)
			b.WriteString(prefix)
			writeText(b, it, indent+strings.Repeat(" ", len(prefix)))
		}
		return
	default:
		b.WriteString(v.String())
	}
	b.WriteByte('\n')
}
