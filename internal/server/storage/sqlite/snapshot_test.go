package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/mapboard/internal/models"
	"github.com/iudanet/mapboard/internal/server/storage"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	storage, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = storage.Close()
	}

	return storage, cleanup
}

func createTestSnapshot(key string, timestamp int64, data string) *models.Snapshot {
	return &models.Snapshot{
		Key:       key,
		MapData:   data,
		NodeID:    "node-1",
		Digest:    "digest-" + data,
		Timestamp: timestamp,
		UpdatedAt: time.UnixMilli(timestamp),
	}
}

func TestSnapshotStorage_SaveSnapshot(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	tests := []struct {
		name      string
		snapshot  *models.Snapshot
		wantSaved bool
		wantData  string
	}{
		{
			name:      "first write",
			snapshot:  createTestSnapshot("seal-map", 100, "a"),
			wantSaved: true,
			wantData:  "a",
		},
		{
			name:      "newer replaces",
			snapshot:  createTestSnapshot("seal-map", 200, "b"),
			wantSaved: true,
			wantData:  "b",
		},
		{
			name:      "older is ignored",
			snapshot:  createTestSnapshot("seal-map", 150, "c"),
			wantSaved: false,
			wantData:  "b",
		},
		{
			name:      "equal timestamp is ignored",
			snapshot:  createTestSnapshot("seal-map", 200, "d"),
			wantSaved: false,
			wantData:  "b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved, err := s.SaveSnapshot(ctx, tt.snapshot)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSaved, saved)

			got, err := s.GetSnapshot(ctx, "seal-map")
			require.NoError(t, err)
			assert.Equal(t, tt.wantData, got.MapData)
			assert.Equal(t, "digest-"+tt.wantData, got.Digest)
		})
	}
}

func TestSnapshotStorage_SaveInvalid(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.SaveSnapshot(context.Background(), &models.Snapshot{MapData: "x"})
	assert.ErrorIs(t, err, storage.ErrInvalidSnapshot)

	_, err = s.SaveSnapshot(context.Background(), nil)
	assert.ErrorIs(t, err, storage.ErrInvalidSnapshot)
}

func TestSnapshotStorage_GetSnapshot(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	orig := createTestSnapshot("kemsing-map", 1700000000123, "data")
	_, err := s.SaveSnapshot(ctx, orig)
	require.NoError(t, err)

	got, err := s.GetSnapshot(ctx, "kemsing-map")
	require.NoError(t, err)
	assert.Equal(t, orig.Key, got.Key)
	assert.Equal(t, orig.NodeID, got.NodeID)
	assert.Equal(t, orig.Timestamp, got.Timestamp)
	assert.Equal(t, orig.UpdatedAt.UnixMilli(), got.UpdatedAt.UnixMilli())

	_, err = s.GetSnapshot(ctx, "missing-map")
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)
}

func TestSnapshotStorage_ListAndLastTimestamp(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	last, err := s.LastTimestamp(ctx)
	require.NoError(t, err)
	assert.Zero(t, last)

	list, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, snap := range []*models.Snapshot{
		createTestSnapshot("seal-map", 30, "x"),
		createTestSnapshot("eynsford-map", 50, "y"),
		createTestSnapshot("otford-map", 10, "z"),
	} {
		_, err := s.SaveSnapshot(ctx, snap)
		require.NoError(t, err)
	}

	list, err = s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "eynsford-map", list[0].Key)
	assert.Equal(t, int64(50), list[0].Timestamp)
	assert.Equal(t, "otford-map", list[1].Key)
	assert.Equal(t, "seal-map", list[2].Key)

	last, err = s.LastTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), last)
}

func TestSnapshotStorage_ConcurrentWritersNeverRegress(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	var wg sync.WaitGroup
	for i := int64(1); i <= 50; i++ {
		wg.Add(1)
		go func(ts int64) {
			defer wg.Done()
			_, err := s.SaveSnapshot(ctx, createTestSnapshot("swanley-map", ts, "v"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.GetSnapshot(ctx, "swanley-map")
	require.NoError(t, err)
	assert.Equal(t, int64(50), got.Timestamp)
}

func TestStorage_Ping(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.NoError(t, s.Ping(context.Background()))
}
