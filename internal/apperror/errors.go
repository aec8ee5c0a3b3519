// Package apperror holds the error kinds shared by the inventory, job card,
// billing and payment use cases.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrForbidden         = errors.New("forbidden")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrItemInUse         = errors.New("inventory item is in use")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDuplicateNumber   = errors.New("duplicate document number")
	ErrHasPayments       = errors.New("invoice has payments")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrConflict          = errors.New("conflicting update, please retry")
)

// Error attaches a user-facing message to one of the kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func New(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound is shorthand for New(ErrNotFound, "<entity> not found").
func NotFound(entity string) error {
	return New(ErrNotFound, "%s not found", entity)
}

// IsBusiness reports whether err is a rule violation the caller can act on.
func IsBusiness(err error) bool {
	return errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrItemInUse) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrHasPayments) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound)
}

// IsRetryable reports whether the whole unit of work may be re-run.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrDuplicateNumber)
}

// Message returns the text safe to show a user.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	for _, kind := range []error{
		ErrNotFound, ErrInvalidInput, ErrForbidden, ErrInsufficientStock, ErrItemInUse,
		ErrInvalidTransition, ErrDuplicateNumber, ErrHasPayments, ErrInvalidAmount, ErrConflict,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal server error"
}
