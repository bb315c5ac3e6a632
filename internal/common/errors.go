// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// ErrNotFound is returned when a listing id does not exist.
	ErrNotFound = errors.New("listing not found")
	// ErrDuplicateFingerprint is returned when an insert hits an existing
	// fingerprint. Not a failure: the caller drops the message and moves on.
	ErrDuplicateFingerprint = errors.New("duplicate fingerprint")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// StorageError wraps an unexpected failure from the persistence layer:
// store unavailable, corrupt database, constraint violations other than the
// anticipated fingerprint conflict. Callers treat it as a single opaque
// kind and never retry automatically.
type StorageError struct {
	Err error
	Op  string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err with the failed operation name.
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
