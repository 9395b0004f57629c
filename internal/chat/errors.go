package chat

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrGone      = errors.New("room has been deleted")
	ErrConflict  = errors.New("conflict")

	ErrAlreadyParticipant = fmt.Errorf("%w: operator is already a participant", ErrConflict)
	ErrNotParticipant     = fmt.Errorf("%w: operator is not a participant", ErrConflict)
	ErrTransitionDenied   = fmt.Errorf("%w: status change not allowed", ErrConflict)
)

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StorageError wraps a persistence failure. It is never retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
