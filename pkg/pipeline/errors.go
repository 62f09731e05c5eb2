package pipeline

import (
	"errors"
	"fmt"
)

// Kind is the closed set of recoverable prediction failures. Callers
// branch on kinds, never on message text.
type Kind string

const (
	KindUnknownField     Kind = "unknown_field"
	KindOutOfRange       Kind = "out_of_range"
	KindIncompleteInput  Kind = "incomplete_input"
	KindInferenceFailure Kind = "inference_failure"
)

// Error is a recoverable pipeline failure. Validation kinds carry the
// offending field; inference failures wrap the underlying cause.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	cause error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.cause)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsKind reports whether err is a pipeline error of the given kind.
func IsKind(err error, k Kind) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == k
}

// ErrKind returns the pipeline kind of err, or empty when err is not a
// pipeline error.
func ErrKind(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
