package repository

import "errors"

// Domain-level errors I prefer to bubble up from repository implementations.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrConflict      = errors.New("conflict")
	// ErrInvalidData marks values that do not fit the column they target.
	ErrInvalidData = errors.New("invalid data")
)
