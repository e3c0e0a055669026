// Package storage описывает локальный кеш клиента: последний известный
// snapshot каждой страницы и состояние вида. Кеш нужен, чтобы страница
// открывалась сразу, до прихода первого значения с сервера.
package storage

import (
	"context"

	"github.com/iudanet/mapboard/internal/models"
)

//go:generate moq -out cache_mock.go . Cache

// Cache defines interface for the local fallback cache
type Cache interface {
	// SaveSnapshot stores snapshot if it is newer than the cached one (LWW).
	// Returns true if snapshot was stored
	SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) (bool, error)

	// GetSnapshot retrieves the cached snapshot of a page
	// Returns ErrSnapshotNotFound if page was never cached
	GetSnapshot(ctx context.Context, key string) (*models.Snapshot, error)

	// ListSnapshots returns summaries of all cached pages ordered by key
	ListSnapshots(ctx context.Context) ([]models.MapSummary, error)

	// DeleteSnapshot removes the cached snapshot of a page
	DeleteSnapshot(ctx context.Context, key string) error

	// SaveView stores the view transform of a page
	SaveView(ctx context.Context, view *models.ViewState) error

	// GetView retrieves the view transform of a page
	// Returns ErrViewNotFound if it was never saved
	GetView(ctx context.Context, key string) (*models.ViewState, error)
}
