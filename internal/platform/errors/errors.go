package errors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConfig     Kind = "config"
	KindTransport  Kind = "transport"
	KindBootstrap  Kind = "bootstrap"
	KindStorage    Kind = "storage"
	KindInput      Kind = "input"
	KindDecode     Kind = "decode"
	KindValidation Kind = "validation"
	KindGeneration Kind = "generation"
	KindUnknown    Kind = "unknown"
)

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) ErrorKind() Kind {
	return e.Kind
}

// Kinded is implemented by domain errors that classify themselves without wrapping in *Error.
type Kinded interface {
	ErrorKind() Kind
}

// Wrap attaches a kind to err. A *Error in the chain is returned unchanged and a Kinded
// cause keeps its own kind.
func Wrap(kind Kind, op, message string, err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	var kinded Kinded
	if errors.As(err, &kinded) {
		kind = kinded.ErrorKind()
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

func New(kind Kind, op, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// KindOf returns the kind of the first Kinded error in the chain, or KindUnknown.
func KindOf(err error) Kind {
	var target Kinded
	if errors.As(err, &target) {
		return target.ErrorKind()
	}
	return KindUnknown
}
