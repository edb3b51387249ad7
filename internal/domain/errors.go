package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every typed error below matches exactly one of these through
// errors.Is so callers can branch without type assertions.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ValidationError reports a bad quantity, price, serial or an inconsistent
// entity binding. Err holds the underlying cause when there is one.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid is shorthand for constructing a *ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown serial or entity.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientStockError reports a sale larger than the quantity on hand.
type InsufficientStockError struct {
	Serial    string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: have %d, need %d", e.Serial, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ConflictWarning is a non-fatal mismatch between supplied and stored
// descriptive data. Resolution proceeds with the stored value.
type ConflictWarning struct {
	Entity   string `json:"entity"`
	Key      string `json:"key"`
	Field    string `json:"field"`
	Stored   string `json:"stored"`
	Supplied string `json:"supplied"`
}

func (w ConflictWarning) String() string {
	return fmt.Sprintf("%s %s: %s is %q, ignoring %q", w.Entity, w.Key, w.Field, w.Stored, w.Supplied)
}
