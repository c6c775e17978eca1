package framewire

import (
	"errors"
	"fmt"
)

var (
	// ErrSocketClosed indicates that the socket has been closed or is shutting down.
	ErrSocketClosed = errors.New("socket closed")

	// ErrInvalidState is returned when an operation is attempted in a
	// connection state that does not permit it.
	ErrInvalidState = errors.New("operation not permitted in current connection state")

	// ErrMessageNil indicates that a nil message was provided.
	ErrMessageNil = errors.New("message is nil")

	// ErrMessageTooBig indicates that a message payload exceeds the maximum
	// allowed payload size.
	ErrMessageTooBig = errors.New("message payload exceeds maximum size")

	// ErrConfigNil indicates that a nil ConnectionConfig was provided.
	ErrConfigNil = errors.New("connection config is nil")

	// ErrRegistryNil indicates that a nil TypeRegistry was provided.
	ErrRegistryNil = errors.New("type registry is nil")
)

// ErrorCode identifies the category of a connection error reported to
// listeners.
type ErrorCode uint32

const (
	// UnknownError is an unclassified error.
	UnknownError ErrorCode = iota
	// CreationError indicates that a socket resource could not be created.
	CreationError
	// ConnectFailedError indicates that a connection attempt failed.
	ConnectFailedError
	// BindFailedError indicates that binding the listening address failed.
	BindFailedError
	// AcceptFailedError indicates that accepting an incoming connection failed.
	AcceptFailedError
	// SendFailedError indicates that writing a message to the socket failed.
	SendFailedError
	// ReceiveFailedError indicates a receive-side protocol error, such as a
	// header signature mismatch or an invalid declared size.
	ReceiveFailedError
	// ParseFailedError indicates that a complete payload could not be
	// unmarshaled into its message type.
	ParseFailedError
	// UnknownMessageTypeError indicates that a frame carried a type tag with
	// no registered message factory.
	UnknownMessageTypeError
	// ConnectionResetError indicates that the peer reset or dropped the
	// connection.
	ConnectionResetError
	// MessageTooBigError indicates that a payload exceeded the maximum size.
	MessageTooBigError
	// OutOfMemoryError indicates that a payload buffer could not be
	// allocated. Kept for wire-level parity; the decoder's size cap bounds
	// allocations, so this code is not raised in practice.
	OutOfMemoryError
	// InvalidStateError indicates an operation attempted in the wrong
	// connection state.
	InvalidStateError
)

var errorCodeNames = map[ErrorCode]string{
	UnknownError:            "unknown",
	CreationError:           "creation-failed",
	ConnectFailedError:      "connect-failed",
	BindFailedError:         "bind-failed",
	AcceptFailedError:       "accept-failed",
	SendFailedError:         "send-failed",
	ReceiveFailedError:      "receive-failed",
	ParseFailedError:        "parse-failed",
	UnknownMessageTypeError: "unknown-message-type",
	ConnectionResetError:    "connection-reset",
	MessageTooBigError:      "message-too-big",
	OutOfMemoryError:        "out-of-memory",
	InvalidStateError:       "invalid-state",
}

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "unknown"
}

// Error is a connection error reported to listeners and retained as the
// socket's last error. A fatal error forces the connection into the terminal
// ErrorState; a non-fatal error is advisory and the connection keeps
// operating.
type Error struct {
	Code  ErrorCode
	Text  string
	Fatal bool
}

// NewError creates a non-fatal connection error.
func NewError(code ErrorCode, text string) *Error {
	return &Error{Code: code, Text: text}
}

// NewFatalError creates a fatal connection error.
func NewFatalError(code ErrorCode, text string) *Error {
	return &Error{Code: code, Text: text, Fatal: true}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Fatal {
		return fmt.Sprintf("fatal %s: %s", e.Code, e.Text)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Text)
}

// IsFatal reports whether the error terminates the connection.
func (e *Error) IsFatal() bool {
	return e != nil && e.Fatal
}
