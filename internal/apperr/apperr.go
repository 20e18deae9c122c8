// Package apperr defines the error taxonomy shared by every core operation.
//
// There are exactly three kinds: a caller-supplied value was rejected
// before touching the store (validation), a referenced record does not
// exist (not found), or the record store itself failed (store). Store
// errors wrap the driver error unchanged so errors.Is/As keep working.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindStore      Kind = "store"
)

// Error is the concrete error type returned by core operations.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports a value that violates a type or enumeration constraint.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing record of the given entity type.
func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %q not found", entity, id)}
}

// Store wraps a record store failure. A nil err yields nil.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindStore, Message: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsStore(err error) bool      { return KindOf(err) == KindStore }

// HTTPStatus maps err to the status code the gateway responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
