// Package resp implements the subset of the Redis serialization protocol
// spoken by minikv.
//
// The package is pure: it has no I/O and no state. It contains:
//
//   - value.go: the Value tagged union (client-visible kinds plus the
//     server-internal Command kind)
//   - decode.go: Decode, which parses exactly one value from a buffer
//   - encode.go: Encode/AppendEncode, the structural inverse of Decode
//
// Wire forms:
//
//	+<text>\r\n               simple string
//	$<charcount>\r\n<text>\r\n bulk string (length counts characters)
//	*<count>\r\n<elem>...     array
//	:<n>                      integer (no trailing CRLF)
//	$-1\r\n                   null bulk string
//	-<bytelen>\r\n<text>\r\n  error message
package resp
