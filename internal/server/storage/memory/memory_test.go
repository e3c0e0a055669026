package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/mapboard/internal/models"
	"github.com/iudanet/mapboard/internal/server/storage"
)

func TestStorage_Snapshots(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.GetSnapshot(ctx, "seal-map")
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)

	saved, err := s.SaveSnapshot(ctx, &models.Snapshot{Key: "seal-map", MapData: "a", Timestamp: 10})
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = s.SaveSnapshot(ctx, &models.Snapshot{Key: "seal-map", MapData: "b", Timestamp: 10})
	require.NoError(t, err)
	assert.False(t, saved, "equal timestamp must not replace")

	saved, err = s.SaveSnapshot(ctx, &models.Snapshot{Key: "otford-map", MapData: "c", Timestamp: 30})
	require.NoError(t, err)
	assert.True(t, saved)

	got, err := s.GetSnapshot(ctx, "seal-map")
	require.NoError(t, err)
	assert.Equal(t, "a", got.MapData)

	list, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "otford-map", list[0].Key)

	last, err := s.LastTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(30), last)

	_, err = s.SaveSnapshot(ctx, &models.Snapshot{})
	assert.ErrorIs(t, err, storage.ErrInvalidSnapshot)

	assert.NoError(t, s.Ping(ctx))
	assert.NoError(t, s.Close())
}

func TestStorage_Tokens(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()

	require.NoError(t, s.SaveToken(ctx, &models.EditorToken{ID: "a", Pages: []string{"seal-map"}, CreatedAt: now}))
	require.NoError(t, s.SaveToken(ctx, &models.EditorToken{ID: "b", Pages: []string{"*"}, CreatedAt: now.Add(time.Second), ExpiresAt: now.Add(-time.Minute)}))

	tokens, err := s.ListTokens(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "b", tokens[0].ID)

	// Returned tokens are copies.
	tokens[1].Pages[0] = "changed"
	got, err := s.GetToken(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"seal-map"}, got.Pages)

	require.NoError(t, s.RevokeToken(ctx, "a"))
	got, err = s.GetToken(ctx, "a")
	require.NoError(t, err)
	assert.True(t, got.Revoked)
	assert.ErrorIs(t, s.RevokeToken(ctx, "zzz"), storage.ErrTokenNotFound)

	deleted, err := s.DeleteExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = s.GetToken(ctx, "b")
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
}
