package storage

import "context"

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage defines interface for storing client metadata
type MetadataStorage interface {
	// NodeID returns the persistent identifier of this client,
	// generating and saving a new one on first use
	NodeID(ctx context.Context) (string, error)

	// SaveLastSyncTimestamp saves the timestamp of the last snapshot applied for a page
	SaveLastSyncTimestamp(ctx context.Context, key string, timestamp int64) error

	// GetLastSyncTimestamp retrieves the timestamp of the last snapshot applied for a page
	// Returns 0 if nothing has been applied yet
	GetLastSyncTimestamp(ctx context.Context, key string) (int64, error)
}
