package storage

import "errors"

// Common client storage errors
var (
	// ErrSnapshotNotFound indicates that no cached snapshot exists for the page
	ErrSnapshotNotFound = errors.New("cached snapshot not found")

	// ErrViewNotFound indicates that no view state was saved for the page
	ErrViewNotFound = errors.New("view state not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
