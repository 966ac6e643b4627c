package repository

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist or is
	// soft-deleted.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate")
)
