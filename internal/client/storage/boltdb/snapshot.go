package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/mapboard/internal/client/storage"
	"github.com/iudanet/mapboard/internal/models"
)

// SaveSnapshot stores snapshot if it is newer than the cached one
func (s *Storage) SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) (bool, error) {
	if snapshot == nil || snapshot.Key == "" {
		return false, fmt.Errorf("snapshot key is required")
	}

	saved := false
	err := s.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSnapshots)
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}

		// LWW: проверяем существующую запись
		if data := bucket.Get([]byte(snapshot.Key)); data != nil {
			var existing models.Snapshot
			if err := json.Unmarshal(data, &existing); err != nil {
				return fmt.Errorf("failed to unmarshal cached snapshot: %w", err)
			}
			if !snapshot.IsNewerThan(&existing) {
				return nil
			}
		}

		data, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		if err := bucket.Put([]byte(snapshot.Key), data); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		saved = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return saved, nil
}

// GetSnapshot retrieves the cached snapshot of a page
func (s *Storage) GetSnapshot(ctx context.Context, key string) (*models.Snapshot, error) {
	var snapshot *models.Snapshot

	err := s.view(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSnapshots)
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrSnapshotNotFound
		}

		snapshot = &models.Snapshot{}
		if err := json.Unmarshal(data, snapshot); err != nil {
			return fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// ListSnapshots returns summaries of all cached pages ordered by key
func (s *Storage) ListSnapshots(ctx context.Context) ([]models.MapSummary, error) {
	summaries := make([]models.MapSummary, 0)

	err := s.view(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSnapshots)
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}

		// bbolt хранит ключи отсортированными
		return bucket.ForEach(func(k, v []byte) error {
			var snap models.Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return fmt.Errorf("failed to unmarshal snapshot %s: %w", k, err)
			}
			summaries = append(summaries, models.MapSummary{
				Key:       snap.Key,
				Timestamp: snap.Timestamp,
				UpdatedAt: snap.UpdatedAt,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return summaries, nil
}

// DeleteSnapshot removes the cached snapshot of a page
func (s *Storage) DeleteSnapshot(ctx context.Context, key string) error {
	return s.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSnapshots)
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}

		if bucket.Get([]byte(key)) == nil {
			return storage.ErrSnapshotNotFound
		}

		if err := bucket.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete snapshot: %w", err)
		}
		return nil
	})
}
