package resp

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Protocol limits.
const (
	// MaxArrayLen limits the number of elements in one array.
	MaxArrayLen = 1024

	// MaxBulkLen limits the declared length of one bulk string (512K characters).
	MaxBulkLen = 512 * 1024

	// MaxBulkBytes is the largest encoded bulk string: MaxBulkLen four-byte
	// characters plus the header and trailing CRLF.
	MaxBulkBytes = 4*MaxBulkLen + maxHeaderLen + 2

	// MaxLineLen limits a simple string line.
	MaxLineLen = 64 * 1024

	// maxHeaderLen bounds a length header such as "$123\r\n".
	maxHeaderLen = 32

	// MaxDepth limits array nesting.
	MaxDepth = 32
)

var (
	// ErrDecode is the root of every decoding failure.
	ErrDecode = errors.New("resp: decode error")

	// ErrIncomplete means the buffer ends before the value does. A stream
	// reader may append more bytes and decode again from the same start.
	ErrIncomplete = fmt.Errorf("%w: incomplete value", ErrDecode)

	// ErrProtocol means the buffer can never become a valid value.
	ErrProtocol = fmt.Errorf("%w: protocol error", ErrDecode)

	// ErrLimitExceeded is a protocol error caused by a declared size over a limit.
	ErrLimitExceeded = fmt.Errorf("%w: limit exceeded", ErrProtocol)
)

// Decode parses exactly one value from the start of buf and returns it with
// the number of bytes consumed.
//
// A truncated buffer yields ErrIncomplete and a malformed one ErrProtocol;
// both wrap ErrDecode. No partial value is ever returned.
func Decode(buf []byte) (Value, int, error) {
	return decode(buf, 0, false)
}

// DecodeStream is Decode for a buffer that more bytes may still be appended
// to. An integer whose digits run to the end of buf is reported as
// ErrIncomplete, since the next read may carry more digits.
func DecodeStream(buf []byte) (Value, int, error) {
	return decode(buf, 0, true)
}

func decode(buf []byte, depth int, stream bool) (Value, int, error) {
	if len(buf) == 0 {
		return Value{}, 0, ErrIncomplete
	}

	switch buf[0] {
	case '+':
		return decodeSimpleString(buf)
	case '$':
		return decodeBulkString(buf)
	case '*':
		return decodeArray(buf, depth, stream)
	case ':':
		return decodeInt(buf, stream)
	case '-':
		return decodeErrorMessage(buf)
	default:
		return Value{}, 0, fmt.Errorf("%w: invalid type byte %q", ErrProtocol, buf[0])
	}
}

// readLine scans buf from start for the CRLF pair and returns the bytes
// before it plus the offset just past it.
func readLine(buf []byte, start, maxLen int) ([]byte, int, error) {
	for i := start + 1; i < len(buf); i++ {
		if buf[i-1] == '\r' && buf[i] == '\n' {
			if i-1-start > maxLen {
				return nil, 0, fmt.Errorf("%w: line length exceeds %d", ErrLimitExceeded, maxLen)
			}
			return buf[start : i-1], i + 1, nil
		}
	}
	if len(buf)-start > maxLen+1 {
		return nil, 0, fmt.Errorf("%w: line length exceeds %d", ErrLimitExceeded, maxLen)
	}
	return nil, 0, ErrIncomplete
}

// readLength parses the numeric header following the type byte.
func readLength(buf []byte) (int, int, error) {
	line, next, err := readLine(buf, 1, maxHeaderLen)
	if err != nil {
		return 0, 0, err
	}
	if len(line) == 0 || line[0] == '+' {
		return 0, 0, fmt.Errorf("%w: invalid length %q", ErrProtocol, line)
	}
	n, err := strconv.Atoi(string(line))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid length %q", ErrProtocol, line)
	}
	return n, next, nil
}

func decodeSimpleString(buf []byte) (Value, int, error) {
	line, next, err := readLine(buf, 1, MaxLineLen)
	if err != nil {
		return Value{}, 0, err
	}
	if !utf8.Valid(line) {
		return Value{}, 0, fmt.Errorf("%w: simple string is not valid UTF-8", ErrProtocol)
	}
	return SimpleString(string(line)), next, nil
}

func decodeBulkString(buf []byte) (Value, int, error) {
	n, start, err := readLength(buf)
	if err != nil {
		return Value{}, 0, err
	}
	if n == -1 {
		return NullBulkString(), start, nil
	}
	if n < 0 {
		return Value{}, 0, fmt.Errorf("%w: invalid bulk length %d", ErrProtocol, n)
	}
	if n > MaxBulkLen {
		return Value{}, 0, fmt.Errorf("%w: bulk length %d exceeds %d", ErrLimitExceeded, n, MaxBulkLen)
	}

	// The declared length counts characters, not bytes.
	pos := start
	for i := 0; i < n; i++ {
		if pos >= len(buf) {
			return Value{}, 0, ErrIncomplete
		}
		r, size := utf8.DecodeRune(buf[pos:])
		if r == utf8.RuneError && size <= 1 {
			if !utf8.FullRune(buf[pos:]) {
				return Value{}, 0, ErrIncomplete
			}
			return Value{}, 0, fmt.Errorf("%w: bulk string is not valid UTF-8", ErrProtocol)
		}
		pos += size
	}

	// Trailing CRLF is skipped by position only.
	if pos+2 > len(buf) {
		return Value{}, 0, ErrIncomplete
	}
	return BulkString(string(buf[start:pos])), pos + 2, nil
}

func decodeArray(buf []byte, depth int, stream bool) (Value, int, error) {
	if depth >= MaxDepth {
		return Value{}, 0, fmt.Errorf("%w: nesting deeper than %d", ErrLimitExceeded, MaxDepth)
	}
	n, consumed, err := readLength(buf)
	if err != nil {
		return Value{}, 0, err
	}
	if n < 0 {
		return Value{}, 0, fmt.Errorf("%w: invalid array length %d", ErrProtocol, n)
	}
	if n > MaxArrayLen {
		return Value{}, 0, fmt.Errorf("%w: array length %d exceeds %d", ErrLimitExceeded, n, MaxArrayLen)
	}

	items := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		item, used, err := decode(buf[consumed:], depth+1, stream)
		if err != nil {
			return Value{}, 0, err
		}
		items = append(items, item)
		consumed += used
	}
	return Array(items...), consumed, nil
}

// decodeInt accepts both ":n" and ":n\r\n"; the server itself never emits
// the terminator. In stream mode digits at the end of buf are incomplete.
func decodeInt(buf []byte, stream bool) (Value, int, error) {
	pos := 1
	if pos < len(buf) && buf[pos] == '-' {
		pos++
	}
	digits := pos
	for pos < len(buf) && buf[pos] >= '0' && buf[pos] <= '9' {
		pos++
	}
	if pos == digits {
		if pos == len(buf) {
			return Value{}, 0, ErrIncomplete
		}
		return Value{}, 0, fmt.Errorf("%w: integer has no digits", ErrProtocol)
	}
	if pos-1 > maxHeaderLen {
		return Value{}, 0, fmt.Errorf("%w: integer too long", ErrLimitExceeded)
	}
	if stream && pos == len(buf) {
		return Value{}, 0, ErrIncomplete
	}

	n, err := strconv.ParseInt(string(buf[1:pos]), 10, 64)
	if err != nil {
		return Value{}, 0, fmt.Errorf("%w: invalid integer %q", ErrProtocol, buf[1:pos])
	}

	switch {
	case pos+1 < len(buf) && buf[pos] == '\r' && buf[pos+1] == '\n':
		pos += 2
	case pos+1 == len(buf) && buf[pos] == '\r':
		return Value{}, 0, ErrIncomplete
	}
	return Int(n), pos, nil
}

// decodeErrorMessage reads the length-prefixed error form "-<bytelen>\r\n<text>\r\n".
func decodeErrorMessage(buf []byte) (Value, int, error) {
	n, start, err := readLength(buf)
	if err != nil {
		return Value{}, 0, err
	}
	if n < 0 {
		return Value{}, 0, fmt.Errorf("%w: invalid error length %d", ErrProtocol, n)
	}
	if n > MaxBulkLen {
		return Value{}, 0, fmt.Errorf("%w: error length %d exceeds %d", ErrLimitExceeded, n, MaxBulkLen)
	}
	end := start + n
	if end+2 > len(buf) {
		return Value{}, 0, ErrIncomplete
	}
	return ErrorMessage(string(buf[start:end])), end + 2, nil
}
