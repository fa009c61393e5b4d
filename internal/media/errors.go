package media

import (
	"errors"
	"fmt"
)

// Kind-level error classification for everything the canvas subsystem can
// report to its callers. Load and decode failures are captured once on the
// owning resource and surfaced once to the caller; they never cross a
// goroutine boundary silently.
type ErrorKind string

const (
	// ErrIO means the source could not be read at all.
	ErrIO ErrorKind = "io_error"
	// ErrUnsupportedFormat means the content is neither a decodable image
	// nor a decodable video.
	ErrUnsupportedFormat ErrorKind = "unsupported_format"
	// ErrCorruptData means the format was recognized but the content is
	// malformed.
	ErrCorruptData ErrorKind = "corrupt_data"
	// ErrInvalidState means the operation is not valid for the resource's
	// current lifecycle or playback state.
	ErrInvalidState ErrorKind = "invalid_state"
	// ErrCapacityExceeded means the configured surface limit was reached.
	ErrCapacityExceeded ErrorKind = "capacity_exceeded"
	// ErrUnknownSlot means an event was routed to a nonexistent surface.
	ErrUnknownSlot ErrorKind = "unknown_slot"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Cause.Error())
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewError(kind ErrorKind, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func IOError(cause error) error {
	return NewError(ErrIO, "", cause)
}

func UnsupportedFormat(message string) error {
	return NewError(ErrUnsupportedFormat, message, nil)
}

func CorruptData(cause error) error {
	return NewError(ErrCorruptData, "", cause)
}

func InvalidState(message string) error {
	return NewError(ErrInvalidState, message, nil)
}

// KindOf reports the classification of err, when err carries one.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind ErrorKind) bool {
	got, ok := KindOf(err)
	return ok && got == kind
}
