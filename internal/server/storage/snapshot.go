package storage

import (
	"context"

	"github.com/iudanet/mapboard/internal/models"
)

//go:generate moq -out snapshot_mock.go . SnapshotStorage

// SnapshotStorage defines interface for page snapshot persistence
type SnapshotStorage interface {
	// SaveSnapshot replaces the snapshot of a page using LWW logic:
	// only saves if snapshot timestamp is greater than the stored one.
	// Returns true if snapshot was saved, false if stored one is newer or equal
	SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) (bool, error)

	// GetSnapshot retrieves the snapshot of a page
	// Returns ErrSnapshotNotFound if page has never been saved
	GetSnapshot(ctx context.Context, key string) (*models.Snapshot, error)

	// ListSnapshots returns summaries of all stored pages ordered by key
	ListSnapshots(ctx context.Context) ([]models.MapSummary, error)

	// LastTimestamp returns the greatest stored timestamp, 0 when empty.
	// Used to seed the server clock after restart.
	LastTimestamp(ctx context.Context) (int64, error)

	// Ping checks that the storage is reachable
	Ping(ctx context.Context) error

	// Close releases storage resources
	Close() error
}
