// Package errors defines the engine's error taxonomy. Handlers map these
// to HTTP statuses; everything else propagates them with %w.
package errors

import (
	"errors"
	"fmt"
)

// Category identifies how an error should be handled by callers.
type Category string

const (
	// CategoryValidation covers bad input: unknown frequency, non-positive
	// target count, malformed requests.
	CategoryValidation Category = "validation"
	// CategoryNotFound covers unknown or inaccessible entities.
	CategoryNotFound Category = "not_found"
	// CategoryChannel covers notification channel failures (email
	// transport, template errors). Never fatal: caught at the dispatcher
	// boundary and logged.
	CategoryChannel Category = "channel"
	// CategoryPersistence covers store failures. Fatal for the operation
	// in progress: a failed append must not trigger a recompute.
	CategoryPersistence Category = "persistence"
)

// Error is a categorized engine error.
type Error struct {
	Category Category
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Validation(format string, args ...any) *Error {
	return &Error{Category: CategoryValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Category: CategoryNotFound, Message: fmt.Sprintf(format, args...)}
}

func Channel(cause error, format string, args ...any) *Error {
	return &Error{Category: CategoryChannel, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func Persistence(cause error, format string, args ...any) *Error {
	return &Error{Category: CategoryPersistence, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func is(err error, c Category) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Category == c
	}
	return false
}

func IsValidation(err error) bool  { return is(err, CategoryValidation) }
func IsNotFound(err error) bool    { return is(err, CategoryNotFound) }
func IsChannel(err error) bool     { return is(err, CategoryChannel) }
func IsPersistence(err error) bool { return is(err, CategoryPersistence) }
