package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/mapboard/internal/models"
	"github.com/iudanet/mapboard/internal/server/storage"
)

func createTestToken(id string, pages []string, expiresAt time.Time) *models.EditorToken {
	return &models.EditorToken{
		ID:        id,
		Label:     "tester",
		Pages:     pages,
		CreatedAt: time.Now().Truncate(time.Second),
		ExpiresAt: expiresAt,
	}
}

func TestTokenStorage_SaveToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	tests := []struct {
		name  string
		token *models.EditorToken
	}{
		{
			name:  "save new token",
			token: createTestToken("tok-1", []string{"seal-map", "otford-map"}, time.Now().Add(time.Hour)),
		},
		{
			name:  "replace existing token with same id",
			token: createTestToken("tok-1", []string{models.AllPages}, time.Now().Add(2*time.Hour)),
		},
		{
			name:  "token without expiry",
			token: createTestToken("tok-2", []string{"seal-map"}, time.Time{}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.SaveToken(ctx, tt.token)
			require.NoError(t, err)

			// Verify token was saved
			retrieved, err := s.GetToken(ctx, tt.token.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.token.Pages, retrieved.Pages)
			assert.Equal(t, tt.token.Label, retrieved.Label)
			assert.Equal(t, tt.token.ExpiresAt.IsZero(), retrieved.ExpiresAt.IsZero())
			assert.False(t, retrieved.Revoked)
		})
	}
}

func TestTokenStorage_GetToken_NotFound(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetToken(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
}

func TestTokenStorage_RevokeToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.NoError(t, s.SaveToken(ctx, createTestToken("tok-1", []string{"seal-map"}, time.Time{})))

	require.NoError(t, s.RevokeToken(ctx, "tok-1"))
	got, err := s.GetToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, got.Revoked)
	assert.False(t, got.IsActive(time.Now()))

	assert.ErrorIs(t, s.RevokeToken(ctx, "missing"), storage.ErrTokenNotFound)
}

func TestTokenStorage_ListAndDeleteExpired(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.NoError(t, s.SaveToken(ctx, createTestToken("expired", []string{"seal-map"}, time.Now().Add(-time.Hour))))
	require.NoError(t, s.SaveToken(ctx, createTestToken("valid", []string{"seal-map"}, time.Now().Add(time.Hour))))
	require.NoError(t, s.SaveToken(ctx, createTestToken("forever", []string{"seal-map"}, time.Time{})))

	tokens, err := s.ListTokens(ctx)
	require.NoError(t, err)
	assert.Len(t, tokens, 3)

	deleted, err := s.DeleteExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	tokens, err = s.ListTokens(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	for _, tok := range tokens {
		assert.NotEqual(t, "expired", tok.ID)
	}
}
