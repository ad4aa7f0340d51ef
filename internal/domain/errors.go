package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for the two failure classes of the message log.
var (
	// ErrValidation matches any *ValidationError.
	ErrValidation = errors.New("invalid message")

	// ErrStorage matches any *StorageError.
	ErrStorage = errors.New("storage fault")
)

// ValidationError reports a submission that cannot be stored: missing,
// malformed or empty content. It is a client error, not a system fault.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageError represents a backing store that could not be read or written.
type StorageError struct {
	// Op names the operation that failed, e.g. "append" or "list".
	Op string

	// Err is the underlying error returned by the backend.
	Err error
}

// NewStorageError wraps err with the operation that produced it.
// If err is already a StorageError it is returned unchanged.
func NewStorageError(op string, err error) *StorageError {
	var se *StorageError
	if errors.As(err, &se) {
		return se
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("storage %s failed", e.Op)
	}
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrStorage.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
