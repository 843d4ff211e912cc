// Package storage holds the errors shared by the book and user stores.
package storage

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)
