package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/mapboard/internal/client/storage"
	"github.com/iudanet/mapboard/internal/models"
)

// SaveView stores the view transform of a page
func (s *Storage) SaveView(ctx context.Context, view *models.ViewState) error {
	if view == nil || view.Key == "" {
		return fmt.Errorf("view key is required")
	}

	return s.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketViews)
		if bucket == nil {
			return fmt.Errorf("views bucket not found")
		}

		data, err := json.Marshal(view)
		if err != nil {
			return fmt.Errorf("failed to marshal view state: %w", err)
		}
		if err := bucket.Put([]byte(view.Key), data); err != nil {
			return fmt.Errorf("failed to save view state: %w", err)
		}
		return nil
	})
}

// GetView retrieves the view transform of a page
func (s *Storage) GetView(ctx context.Context, key string) (*models.ViewState, error) {
	var view *models.ViewState

	err := s.view(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketViews)
		if bucket == nil {
			return fmt.Errorf("views bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrViewNotFound
		}

		view = &models.ViewState{}
		if err := json.Unmarshal(data, view); err != nil {
			return fmt.Errorf("failed to unmarshal view state: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}
