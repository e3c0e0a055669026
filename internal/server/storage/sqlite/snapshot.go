package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/mapboard/internal/models"
	"github.com/iudanet/mapboard/internal/server/storage"
)

// SaveSnapshot replaces the page snapshot if the new one is strictly newer.
// The comparison happens inside the upsert so concurrent writers cannot
// regress a page.
func (s *Storage) SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) (bool, error) {
	if snapshot == nil || snapshot.Key == "" {
		return false, storage.ErrInvalidSnapshot
	}

	query := `
		INSERT INTO snapshots (key, map_data, node_id, digest, timestamp, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			map_data = excluded.map_data,
			node_id = excluded.node_id,
			digest = excluded.digest,
			timestamp = excluded.timestamp,
			updated_at = excluded.updated_at
		WHERE excluded.timestamp > snapshots.timestamp
	`

	result, err := s.db.ExecContext(ctx, query,
		snapshot.Key,
		snapshot.MapData,
		snapshot.NodeID,
		snapshot.Digest,
		snapshot.Timestamp,
		snapshot.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to save snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// GetSnapshot retrieves the snapshot of a page
// Returns ErrSnapshotNotFound if page has never been saved
func (s *Storage) GetSnapshot(ctx context.Context, key string) (*models.Snapshot, error) {
	query := `
		SELECT key, map_data, node_id, digest, timestamp, updated_at
		FROM snapshots
		WHERE key = ?
	`

	snapshot := &models.Snapshot{}
	var updatedAt int64

	err := s.db.QueryRowContext(ctx, query, key).Scan(
		&snapshot.Key,
		&snapshot.MapData,
		&snapshot.NodeID,
		&snapshot.Digest,
		&snapshot.Timestamp,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	snapshot.UpdatedAt = time.UnixMilli(updatedAt)
	return snapshot, nil
}

// ListSnapshots returns summaries of all stored pages ordered by key
func (s *Storage) ListSnapshots(ctx context.Context) ([]models.MapSummary, error) {
	query := `SELECT key, timestamp, updated_at FROM snapshots ORDER BY key`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	summaries := make([]models.MapSummary, 0)
	for rows.Next() {
		var sum models.MapSummary
		var updatedAt int64
		if err := rows.Scan(&sum.Key, &sum.Timestamp, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		sum.UpdatedAt = time.UnixMilli(updatedAt)
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return summaries, nil
}

// LastTimestamp returns the greatest stored timestamp, 0 when empty
func (s *Storage) LastTimestamp(ctx context.Context) (int64, error) {
	var last int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(timestamp), 0) FROM snapshots`).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to get last timestamp: %w", err)
	}
	return last, nil
}
