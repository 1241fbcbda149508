package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks. Structured errors below wrap these,
// so callers can branch on the class without knowing the concrete type.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports the first entity invariant or business rule a
// request violated.
type ValidationError struct {
	Entity  string
	Field   string
	Message string
}

func NewValidationError(entity, field, message string) *ValidationError {
	return &ValidationError{Entity: entity, Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s %s", e.Entity, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Entity, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConflictError reports a uniqueness violation (duplicate slug/SKU) or an
// operation blocked by dependent rows (category with children).
type ConflictError struct {
	Entity  string
	Message string
}

func NewConflictError(entity, message string) *ConflictError {
	return &ConflictError{Entity: entity, Message: message}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Entity, e.Message)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NotFoundError reports an id/slug/sku lookup miss. Soft-deleted rows are
// indistinguishable from missing ones.
type NotFoundError struct {
	Entity string
	Key    string
}

func NewNotFoundError(entity, key string) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Entity, e.Key, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
