package resp

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

var crlf = []byte("\r\n")

// Encode serializes v into its wire form.
//
// Encoding the internal Command kind is a programming error and panics.
func Encode(v Value) []byte {
	return AppendEncode(nil, v)
}

// AppendEncode appends the wire form of v to dst and returns the extended slice.
func AppendEncode(dst []byte, v Value) []byte {
	switch v.kind {
	case KindSimpleString:
		dst = append(dst, '+')
		dst = append(dst, v.str...)
		return append(dst, crlf...)

	case KindBulkString:
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(utf8.RuneCountInString(v.str)), 10)
		dst = append(dst, crlf...)
		dst = append(dst, v.str...)
		return append(dst, crlf...)

	case KindInt:
		// No terminator: clients read integers positionally.
		dst = append(dst, ':')
		return strconv.AppendInt(dst, v.num, 10)

	case KindNullBulkString:
		return append(dst, "$-1\r\n"...)

	case KindArray:
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(v.items)), 10)
		dst = append(dst, crlf...)
		for _, it := range v.items {
			dst = AppendEncode(dst, it)
		}
		return dst

	case KindErrorMessage:
		dst = append(dst, '-')
		dst = strconv.AppendInt(dst, int64(len(v.str)), 10)
		dst = append(dst, crlf...)
		dst = append(dst, v.str...)
		return append(dst, crlf...)

	case KindCommand:
		panic(fmt.Sprintf("resp: internal command %q must never be encoded", v.str))

	default:
		panic(fmt.Sprintf("resp: cannot encode value of kind %d", v.kind))
	}
}

// CommandRequest builds the request form of a command: an array of bulk strings.
func CommandRequest(name string, args ...string) Value {
	items := make([]Value, 0, len(args)+1)
	items = append(items, BulkString(name))
	for _, a := range args {
		items = append(items, BulkString(a))
	}
	return Array(items...)
}
