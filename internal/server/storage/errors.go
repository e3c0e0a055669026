package storage

import "errors"

// Common storage errors
var (
	// ErrSnapshotNotFound indicates that page has no stored snapshot yet
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrTokenNotFound indicates that editor token was not found
	ErrTokenNotFound = errors.New("editor token not found")

	// ErrInvalidSnapshot indicates that snapshot is missing required fields
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
