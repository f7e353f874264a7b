package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCommand is returned when a command fails a business rule check.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrNotFound is returned when a task, project or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrReferenceNotFound is returned when a command references an entity that does not exist.
	ErrReferenceNotFound = errors.New("referenced entity not found")

	// ErrProjectInUse is returned when deleting a project that tasks still reference.
	ErrProjectInUse = errors.New("project is referenced by tasks")

	// ErrStorageCorrupted is reported when a stored payload cannot be decoded.
	ErrStorageCorrupted = errors.New("stored data is corrupted")

	// ErrStorageReadFailed is returned when the backing store cannot be read.
	ErrStorageReadFailed = errors.New("storage read failed")

	// ErrStorageWriteFailed is returned when the backing store rejects a write.
	ErrStorageWriteFailed = errors.New("storage write failed")
)

// CorruptionError describes a payload that was discarded because it could not be decoded.
type CorruptionError struct {
	Key string
	Err error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("%s: key %q: %v", ErrStorageCorrupted, e.Key, e.Err)
}

func (e *CorruptionError) Unwrap() []error {
	return []error{ErrStorageCorrupted, e.Err}
}

// Invalid returns an ErrInvalidCommand carrying a readable reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidCommand, fmt.Sprintf(format, args...))
}
