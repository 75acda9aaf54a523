package repository

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated
	ErrDuplicate = errors.New("duplicate record")
	// ErrReferenced is returned when a row is still referenced by a foreign key
	ErrReferenced = errors.New("record is referenced")
)
