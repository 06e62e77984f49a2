package pagequery

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned by repositories when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// ValidationError reports malformed caller input. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError returns a ValidationError carrying a stack trace.
func NewValidationError(field, format string, args ...any) error {
	return errors.WithStack(&ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// StorageError wraps an opaque failure of the storage collaborator.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Cause() error { return e.Err }

// NewStorageError wraps err as a StorageError. Validation errors pass through unchanged.
func NewStorageError(err error) error {
	if err == nil {
		return nil
	}
	if IsValidationError(err) || IsStorageError(err) {
		return err
	}
	return errors.WithStack(&StorageError{Err: err})
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsStorageError(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}
