package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const (
	keyNodeID = "node_id"
)

// NodeID returns the persistent identifier of this client.
// Первый вызов генерирует uuid и сохраняет его.
func (s *Storage) NodeID(ctx context.Context) (string, error) {
	var nodeID string

	err := s.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		if data := bucket.Get([]byte(keyNodeID)); data != nil {
			nodeID = string(data)
			return nil
		}

		nodeID = uuid.New().String()
		if err := bucket.Put([]byte(keyNodeID), []byte(nodeID)); err != nil {
			return fmt.Errorf("failed to save node id: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return nodeID, nil
}

// SaveLastSyncTimestamp saves the timestamp of the last snapshot applied for a page
func (s *Storage) SaveLastSyncTimestamp(ctx context.Context, key string, timestamp int64) error {
	return s.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSync)
		if bucket == nil {
			return fmt.Errorf("sync bucket not found")
		}

		timestampBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(timestampBytes, uint64(timestamp))

		if err := bucket.Put([]byte(key), timestampBytes); err != nil {
			return fmt.Errorf("failed to save last sync timestamp: %w", err)
		}
		return nil
	})
}

// GetLastSyncTimestamp retrieves the timestamp of the last snapshot applied for a page
// Returns 0 if nothing has been applied yet
func (s *Storage) GetLastSyncTimestamp(ctx context.Context, key string) (int64, error) {
	var timestamp int64

	err := s.view(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSync)
		if bucket == nil {
			return fmt.Errorf("sync bucket not found")
		}

		timestampBytes := bucket.Get([]byte(key))
		if len(timestampBytes) != 8 {
			// Страница еще не синхронизировалась
			return nil
		}

		timestamp = int64(binary.BigEndian.Uint64(timestampBytes))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get last sync timestamp: %w", err)
	}

	return timestamp, nil
}
