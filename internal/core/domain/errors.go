// Package domain defines the core domain types for minikv.
package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies errors by how the connection loop must react.
type ErrorKind string

const (
	// KindProtocol errors terminate the connection after an error reply.
	KindProtocol ErrorKind = "protocol"
	// KindDomain errors become an error reply; the connection continues.
	KindDomain ErrorKind = "domain"
	// KindIO errors end the connection silently.
	KindIO ErrorKind = "io"
	// KindCapacity errors reject a single accept.
	KindCapacity ErrorKind = "capacity"
)

// Error is a classified error with a stable code.
// Codes follow the format MK-<AREA>-<NNNN>.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string // Redis-style reply text, e.g. "ERR ..."
	Details string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy of the error with additional details.
func (e *Error) WithDetails(format string, args ...any) *Error {
	c := *e
	c.Details = fmt.Sprintf(format, args...)
	return &c
}

// Wrap returns a copy of the error wrapping cause.
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.Cause = cause
	return &c
}

// newError creates a new Error.
func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// KindOf returns the kind of err. Unclassified errors count as I/O errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIO
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// ReplyText returns the text sent to the client for err.
func ReplyText(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Details != "" {
			return e.Message + " " + e.Details
		}
		return e.Message
	}
	return "ERR " + err.Error()
}

// ============================================================================
// Protocol Errors (PROT)
// ============================================================================

var (
	// ErrProtocol indicates malformed or truncated RESP input.
	ErrProtocol = newError(KindProtocol, "MK-PROT-4000", "ERR protocol error")

	// ErrCommandShape indicates a request that is not a command.
	ErrCommandShape = newError(KindProtocol, "MK-PROT-4001", "ERR protocol error: invalid command format")

	// ErrBufferLimit indicates a request larger than the connection buffer.
	ErrBufferLimit = newError(KindProtocol, "MK-PROT-4130", "ERR protocol error: request too large")
)

// ============================================================================
// Command Errors (DATA)
// ============================================================================

var (
	// ErrNotInteger indicates INCR on a value that is not an integer.
	ErrNotInteger = newError(KindDomain, "MK-DATA-4000", "ERR value is not an integer or out of range")

	// ErrWrongArity indicates a wrong number of arguments.
	ErrWrongArity = newError(KindDomain, "MK-DATA-4001", "ERR wrong number of arguments")

	// ErrUnknownCommand indicates a command name the server does not know.
	ErrUnknownCommand = newError(KindDomain, "MK-DATA-4040", "ERR unknown command")

	// ErrInvalidKey indicates a key argument that is not a string or integer.
	ErrInvalidKey = newError(KindDomain, "MK-DATA-4002", "ERR invalid key")

	// ErrInvalidExpire indicates a PX value of zero.
	ErrInvalidExpire = newError(KindDomain, "MK-DATA-4003", "ERR invalid expire time in 'set' command")

	// ErrExecWithoutMulti indicates EXEC outside a transaction.
	ErrExecWithoutMulti = newError(KindDomain, "MK-DATA-4090", "ERR EXEC without MULTI")

	// ErrEmptyTransaction indicates EXEC with nothing queued.
	ErrEmptyTransaction = newError(KindDomain, "MK-DATA-4091", "ERR EXEC with empty transaction")

	// ErrNestedMulti indicates MULTI inside a running transaction.
	ErrNestedMulti = newError(KindDomain, "MK-DATA-4092", "ERR MULTI calls can not be nested")

	// ErrRateLimited indicates the connection exceeded its command rate.
	ErrRateLimited = newError(KindDomain, "MK-DATA-4290", "ERR rate limit exceeded")
)

// ============================================================================
// Connection Errors (CONN)
// ============================================================================

var (
	// ErrClientsExhausted indicates every client id is in use.
	ErrClientsExhausted = newError(KindCapacity, "MK-CONN-5030", "ERR max number of clients reached")

	// ErrUnknownClient indicates the release of an id that was not acquired.
	ErrUnknownClient = newError(KindCapacity, "MK-CONN-5000", "ERR unknown client id")

	// ErrConnectionIO indicates a failed read or write on a client connection.
	ErrConnectionIO = newError(KindIO, "MK-CONN-5002", "ERR connection i/o error")

	// ErrServerClosed indicates the server is shutting down.
	ErrServerClosed = newError(KindIO, "MK-CONN-5031", "ERR server closed")
)
