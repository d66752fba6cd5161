package distribution

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// KindUnknown covers errors that did not come through this package.
	KindUnknown ErrorKind = iota
	KindMissingInput
	KindAuth
	KindRemote
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissingInput:
		return "missing_input"
	case KindAuth:
		return "auth"
	case KindRemote:
		return "remote"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is the failure side of an upload. Its message is the underlying
// error's message with nothing prepended.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
