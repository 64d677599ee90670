package apperr

import (
	"errors"
	"fmt"
)

// Kind is a stable machine-checkable failure category. The HTTP layer maps
// kinds to status codes; services never deal with HTTP statuses directly.
type Kind string

const (
	KindUnauthorized    Kind = "unauthorized"
	KindValidation      Kind = "validation"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindFileTooLarge    Kind = "file_too_large"
	KindUnsupportedFile Kind = "unsupported_file_type"
	KindMalformedKey    Kind = "malformed_key"
	KindStorage         Kind = "storage"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindStorage for anything untyped
// (untyped errors only come out of collaborators: mongo, disk, s3).
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindStorage
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func Validation(msg string) *Error   { return New(KindValidation, msg) }
func NotFound(msg string) *Error     { return New(KindNotFound, msg) }
func Forbidden(msg string) *Error    { return New(KindForbidden, msg) }
func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }
