// Package apperr classifies request failures so handlers can map them to
// HTTP status codes. Match with errors.As or KindOf.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindStorage Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindConflict
	KindPolicy
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPolicy:
		return "policy"
	default:
		return "storage"
	}
}

// Error is a classified failure. Msg is safe to show to the caller; Err is
// the underlying cause, if any, and is only logged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Auth(format string, args ...any) *Error {
	return &Error{Kind: KindAuth, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Policy(format string, args ...any) *Error {
	return &Error{Kind: KindPolicy, Msg: fmt.Sprintf(format, args...)}
}

// Storage wraps an I/O failure. The message shown to callers is generic.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Msg: op, Err: err}
}

// KindOf reports the kind of err. Unclassified errors are storage errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// Message returns the caller-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindStorage {
		return e.Msg
	}
	return "internal error"
}
