// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to HTTP/gRPC/etc by adapters.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a write that clashes with existing state.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates business rule validation failed.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates storage cannot take work right now. Pool
	// exhaustion and an open breaker satisfy it; see StorageError.Is.
	ErrUnavailable = errors.New("unavailable")

	// ErrDuplicateEntry indicates a uniqueness constraint was violated by storage.
	// It is a conflict, so errors.Is(ErrDuplicateEntry, ErrConflict) holds.
	ErrDuplicateEntry = fmt.Errorf("%w: duplicate entry", ErrConflict)

	// ErrStorage indicates the storage engine failed for any other reason.
	ErrStorage = errors.New("storage failure")
)

// Storage codes raised by the connection pool rather than by the engine.
const (
	StorageCodePoolTimeout = "POOL_TIMEOUT"
	StorageCodeCircuitOpen = "CIRCUIT_OPEN"
)

// NotFoundError provides context for not found errors.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue creates a validation error including the invalid value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// DuplicateEntryError is returned when storage rejects a write because of a
// uniqueness constraint. Code carries the engine's diagnostic code.
type DuplicateEntryError struct {
	Entity string
	Code   string
	Err    error
}

// Error implements the error interface.
func (e *DuplicateEntryError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s duplicate entry (code %s)", e.Entity, e.Code)
	}

	return e.Entity + " duplicate entry"
}

// Unwrap exposes both the sentinel and the driver error.
func (e *DuplicateEntryError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDuplicateEntry}
	}

	return []error{ErrDuplicateEntry, e.Err}
}

// NewDuplicateEntryError creates a duplicate entry error with context.
func NewDuplicateEntryError(entity, code string, cause error) error {
	return &DuplicateEntryError{Entity: entity, Code: code, Err: cause}
}

// StorageError wraps any storage failure that is not a duplicate entry:
// connectivity, syntax, other constraints, pool exhaustion.
type StorageError struct {
	Op   string
	Code string
	Err  error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	msg := "storage error"
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}

	if e.Code != "" {
		msg = fmt.Sprintf("%s (code %s)", msg, e.Code)
	}

	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}

	return msg
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *StorageError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStorage}
	}

	return []error{ErrStorage, e.Err}
}

// Is lets pool exhaustion and an open breaker match ErrUnavailable.
func (e *StorageError) Is(target error) bool {
	return target == ErrUnavailable && (e.Code == StorageCodePoolTimeout || e.Code == StorageCodeCircuitOpen)
}

// NewStorageError creates a storage error with context.
func NewStorageError(op, code string, cause error) error {
	return &StorageError{Op: op, Code: code, Err: cause}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable reports whether storage refused work without trying it.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsDuplicateEntry checks if an error is a duplicate entry error.
func IsDuplicateEntry(err error) bool {
	return errors.Is(err, ErrDuplicateEntry)
}

// IsStorage checks if an error is a storage error.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}
