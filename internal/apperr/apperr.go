// Package apperr defines the typed errors raised by the ledger core.
// Errors are pure domain values with no infrastructure dependency;
// translating them to transport responses is the caller's job.
package apperr

import "errors"

// Kind classifies an error for the boundary layer.
type Kind int

const (
	// KindValidation covers malformed or out-of-range input: non-positive
	// amounts, blank descriptions, self-transfers, insufficient funds or
	// stock, unavailable items.
	KindValidation Kind = iota
	// KindNotFound means a referenced bounty, item, job, or assignment
	// does not exist.
	KindNotFound
	// KindForbidden means the caller lacks the required relationship,
	// e.g. is not the bounty's creator.
	KindForbidden
	// KindConflict means the resource is in the wrong state for the
	// requested transition.
	KindConflict
)

// Error carries a kind and a stable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is makes two Errors of the same kind match under errors.Is, so callers
// can test against the kind sentinels below without string comparison.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Kind sentinels for errors.Is checks.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrForbidden  = &Error{Kind: KindForbidden}
	ErrConflict   = &Error{Kind: KindConflict}
)

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func NotFound(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }
func Forbidden(msg string) *Error  { return &Error{Kind: KindForbidden, Message: msg} }
func Conflict(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }

// KindOf returns the kind of err and whether err is a domain error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
