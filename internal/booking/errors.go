package booking

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by a Controller operation for a
// rejected pre-condition wraps exactly one of these; test with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidState   = errors.New("invalid state")
	ErrTimeConflict   = errors.New("time conflict")
	ErrPaymentFailure = errors.New("payment failure")
	ErrInvalidRequest = errors.New("invalid request")
)

// Error is the structured failure returned across the command boundary.
type Error struct {
	Kind   error
	Op     string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func fail(kind error, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...)}
}

func failWith(kind error, op string, cause error) error {
	return &Error{Kind: kind, Op: op, Err: cause}
}
