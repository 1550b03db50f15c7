package jdb

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for a UUID the index does not know.
	ErrNotFound = errors.New("jail not found")

	// ErrConflict is returned when inserting a UUID that is already
	// indexed.
	ErrConflict = errors.New("jail already exists")
)

// DecodeError reports a persisted document that exists but could not be
// decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
