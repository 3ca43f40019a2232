// Package apperr holds the error kinds shared by every component.
//
// Packages declare their own sentinels with New so callers can match either
// the precise sentinel or its kind:
//
//	errors.Is(err, refdata.ErrCityNotFound) // precise
//	errors.Is(err, apperr.ErrNotFound)      // kind
package apperr

import "errors"

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStore        = errors.New("store error")
)

// Error is a sentinel carrying a human readable message and a kind.
type Error struct {
	kind error
	msg  string
}

func New(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Is(target error) bool { return target == e.kind }

// Kind returns one of the package level kinds.
func (e *Error) Kind() error { return e.kind }

// KindOf reports the kind of err, or nil when err carries none.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrUnauthorized, ErrStore} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Code is the machine readable name of a kind used in API responses.
func Code(err error) string {
	switch KindOf(err) {
	case ErrValidation:
		return "validation_error"
	case ErrNotFound:
		return "not_found"
	case ErrConflict:
		return "conflict"
	case ErrUnauthorized:
		return "unauthorized"
	case ErrStore:
		return "store_error"
	default:
		return "internal_error"
	}
}
