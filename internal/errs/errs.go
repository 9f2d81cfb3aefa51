// Package errs implements the error taxonomy from the host design: every
// error the core surfaces to its caller carries a Kind, a human-readable
// message, and optional opaque detail, following the same wrapping-struct
// convention the teacher framework uses for its own session errors.
package errs

import (
	"errors"
	"fmt"
)

// Kind enumerates the host-level error taxonomy.
type Kind int

const (
	Unknown Kind = iota
	ConfigInvalid
	ConfigNotFound
	ConnectionFailed
	ProbeNotReady
	LaunchFailed
	TransportError
	ReportWriteFailed
	InvalidURL
	Timeout
)

// String names the kind for logging and error messages.
func (k Kind) String() string {
	switch k {
	case ConfigInvalid:
		return "ConfigInvalid"
	case ConfigNotFound:
		return "ConfigNotFound"
	case ConnectionFailed:
		return "ConnectionFailed"
	case ProbeNotReady:
		return "ProbeNotReady"
	case LaunchFailed:
		return "LaunchFailed"
	case TransportError:
		return "TransportError"
	case ReportWriteFailed:
		return "ReportWriteFailed"
	case InvalidURL:
		return "InvalidURL"
	case Timeout:
		return "Timeout"
	default:
		return "Unknown"
	}
}

// Error is the single wrapping error type used across the host. Op
// identifies the failing operation for debugging context, mirroring
// SessionError{SessionID, Op, Err} from the transport layer.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Detail  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("reactcheck: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("reactcheck: %s: %s: %s", e.Op, e.Kind, e.Message)
}

// Unwrap exposes the underlying detail error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Detail
}

// New constructs an *Error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap constructs an *Error of the given kind around an existing error.
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Message: err.Error(), Detail: err}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
