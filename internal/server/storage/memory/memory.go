// Package memory implements server storage on top of an in-process LWW map.
// Nothing survives a restart; it is meant for tests and throwaway servers.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/iudanet/mapboard/internal/crdt"
	"github.com/iudanet/mapboard/internal/models"
	"github.com/iudanet/mapboard/internal/server/storage"
)

var (
	_ storage.SnapshotStorage = (*Storage)(nil)
	_ storage.TokenStorage    = (*Storage)(nil)
)

// Storage keeps snapshots and editor tokens in memory.
type Storage struct {
	snapshots *crdt.LWWMap
	tokens    map[string]*models.EditorToken
	mu        sync.RWMutex
}

// New creates an empty in-memory storage.
func New() *Storage {
	return &Storage{
		snapshots: crdt.NewLWWMap(),
		tokens:    make(map[string]*models.EditorToken),
	}
}

// SaveSnapshot implements storage.SnapshotStorage.
func (s *Storage) SaveSnapshot(_ context.Context, snapshot *models.Snapshot) (bool, error) {
	if snapshot == nil || snapshot.Key == "" {
		return false, storage.ErrInvalidSnapshot
	}
	return s.snapshots.Put(snapshot), nil
}

// GetSnapshot implements storage.SnapshotStorage.
func (s *Storage) GetSnapshot(_ context.Context, key string) (*models.Snapshot, error) {
	snapshot := s.snapshots.Get(key)
	if snapshot == nil {
		return nil, storage.ErrSnapshotNotFound
	}
	return snapshot, nil
}

// ListSnapshots implements storage.SnapshotStorage.
func (s *Storage) ListSnapshots(_ context.Context) ([]models.MapSummary, error) {
	keys := s.snapshots.Keys()
	summaries := make([]models.MapSummary, 0, len(keys))
	for _, key := range keys {
		if snap := s.snapshots.Get(key); snap != nil {
			summaries = append(summaries, models.MapSummary{
				Key:       snap.Key,
				Timestamp: snap.Timestamp,
				UpdatedAt: snap.UpdatedAt,
			})
		}
	}
	return summaries, nil
}

// LastTimestamp implements storage.SnapshotStorage.
func (s *Storage) LastTimestamp(_ context.Context) (int64, error) {
	var last int64
	for _, key := range s.snapshots.Keys() {
		if snap := s.snapshots.Get(key); snap != nil && snap.Timestamp > last {
			last = snap.Timestamp
		}
	}
	return last, nil
}

// Ping implements storage.SnapshotStorage.
func (s *Storage) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close implements storage.SnapshotStorage.
func (s *Storage) Close() error {
	return nil
}

// SaveToken implements storage.TokenStorage.
func (s *Storage) SaveToken(_ context.Context, token *models.EditorToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token.ID] = cloneToken(token)
	return nil
}

// GetToken implements storage.TokenStorage.
func (s *Storage) GetToken(_ context.Context, id string) (*models.EditorToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[id]
	if !ok {
		return nil, storage.ErrTokenNotFound
	}
	return cloneToken(token), nil
}

// ListTokens implements storage.TokenStorage.
func (s *Storage) ListTokens(_ context.Context) ([]*models.EditorToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tokens := make([]*models.EditorToken, 0, len(s.tokens))
	for _, t := range s.tokens {
		tokens = append(tokens, cloneToken(t))
	}
	slices.SortFunc(tokens, func(a, b *models.EditorToken) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return tokens, nil
}

// RevokeToken implements storage.TokenStorage.
func (s *Storage) RevokeToken(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[id]
	if !ok {
		return storage.ErrTokenNotFound
	}
	token.Revoked = true
	return nil
}

// DeleteExpiredTokens implements storage.TokenStorage.
func (s *Storage) DeleteExpiredTokens(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	deleted := 0
	for id, t := range s.tokens {
		if !t.ExpiresAt.IsZero() && t.ExpiresAt.Before(now) {
			delete(s.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

func cloneToken(t *models.EditorToken) *models.EditorToken {
	c := *t
	c.Pages = slices.Clone(t.Pages)
	return &c
}
