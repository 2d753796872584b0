package resp

import (
	"strconv"

	"github.com/spaolacci/murmur3"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindSimpleString Kind = iota + 1
	KindBulkString
	KindArray
	KindInt
	KindNullBulkString
	KindErrorMessage
	// KindCommand is server-internal and has no wire form.
	KindCommand
)

// String returns the kind name used in logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindSimpleString:
		return "simple_string"
	case KindBulkString:
		return "bulk_string"
	case KindArray:
		return "array"
	case KindInt:
		return "int"
	case KindNullBulkString:
		return "null_bulk_string"
	case KindErrorMessage:
		return "error_message"
	case KindCommand:
		return "command"
	default:
		return "unknown"
	}
}

// CommandExec is the only internal command: flush the queued transaction.
const CommandExec = "EXEC"

// Value is a single RESP datum.
//
// The zero Value is invalid; build values with the constructors below.
type Value struct {
	kind  Kind
	str   string
	num   int64
	items []Value
}

// SimpleString returns a simple string value.
func SimpleString(s string) Value { return Value{kind: KindSimpleString, str: s} }

// BulkString returns a bulk string value.
func BulkString(s string) Value { return Value{kind: KindBulkString, str: s} }

// Int returns an integer value.
func Int(n int64) Value { return Value{kind: KindInt, num: n} }

// NullBulkString returns the null bulk string.
func NullBulkString() Value { return Value{kind: KindNullBulkString} }

// ErrorMessage returns an error value carrying msg.
func ErrorMessage(msg string) Value { return Value{kind: KindErrorMessage, str: msg} }

// Array returns an array of the given elements. A nil slice yields an empty array.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, items: items}
}

// Command returns a server-internal command marker. Encoding it panics.
func Command(name string) Value { return Value{kind: KindCommand, str: name} }

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsCommand reports whether v is the internal command marker named name.
func (v Value) IsCommand(name string) bool {
	return v.kind == KindCommand && v.str == name
}

// AsString unpacks the payload of string variants.
func (v Value) AsString() (string, bool) {
	switch v.kind {
	case KindSimpleString, KindBulkString:
		return v.str, true
	default:
		return "", false
	}
}

// AsInt unpacks the payload of Int values.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.num, true
}

// Items returns the elements of an array, or nil for other kinds.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.items
}

// Message returns the text of an ErrorMessage.
func (v Value) Message() string {
	if v.kind != KindErrorMessage {
		return ""
	}
	return v.str
}

// Clone returns a deep copy of v. Arrays share no backing storage with v.
func (v Value) Clone() Value {
	if v.kind != KindArray {
		return v
	}
	items := make([]Value, len(v.items))
	for i, it := range v.items {
		items[i] = it.Clone()
	}
	return Value{kind: KindArray, items: items}
}

// Equal reports whether v and o hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.num == o.num
	case KindNullBulkString:
		return true
	case KindArray:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	default:
		return v.str == o.str
	}
}

// Hash returns a stable 64-bit hash consistent with Equal.
func (v Value) Hash() uint64 {
	h := murmur3.New64()
	_, _ = h.Write(v.appendCanonical(nil))
	return h.Sum64()
}

// appendCanonical writes an unambiguous byte form of v used for hashing.
// Unlike the wire form it is defined for every kind.
func (v Value) appendCanonical(dst []byte) []byte {
	dst = append(dst, byte(v.kind))
	switch v.kind {
	case KindInt:
		dst = strconv.AppendInt(dst, v.num, 10)
	case KindNullBulkString:
	case KindArray:
		dst = strconv.AppendInt(dst, int64(len(v.items)), 10)
		dst = append(dst, ':')
		for _, it := range v.items {
			dst = it.appendCanonical(dst)
		}
	default:
		dst = strconv.AppendInt(dst, int64(len(v.str)), 10)
		dst = append(dst, ':')
		dst = append(dst, v.str...)
	}
	return dst
}

// String renders v for debugging. It is not the wire form.
func (v Value) String() string {
	switch v.kind {
	case KindSimpleString, KindBulkString:
		return v.kind.String() + "(" + strconv.Quote(v.str) + ")"
	case KindErrorMessage:
		return "error(" + strconv.Quote(v.str) + ")"
	case KindCommand:
		return "command(" + v.str + ")"
	case KindInt:
		return "int(" + strconv.FormatInt(v.num, 10) + ")"
	case KindNullBulkString:
		return "null"
	case KindArray:
		s := "array["
		for i, it := range v.items {
			if i > 0 {
				s += ", "
			}
			s += it.String()
		}
		return s + "]"
	default:
		return "invalid"
	}
}
