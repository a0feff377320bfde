// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth covers both unknown usernames and wrong passwords
	ErrAuth = errors.New("authentication failed")

	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
)

// ValidationError reports malformed or unknown input. No state was changed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// StorageError wraps a datastore failure with the operation that hit it
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a StorageError. Errors that already belong to the
// taxonomy pass through unchanged.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var se *StorageError
	if errors.As(err, &ve) || errors.As(err, &se) ||
		errors.Is(err, ErrAuth) || errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
