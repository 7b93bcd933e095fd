// Package repository provides MongoDB-backed data access for the
// yearbook collections behind small per-model interfaces.
package repository

import "errors"

var (
	// ErrNotFound is returned when no document matches the query.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when an insert violates the unique
	// email index.
	ErrDuplicateEmail = errors.New("email already registered")
)
