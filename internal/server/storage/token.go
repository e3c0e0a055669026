package storage

import (
	"context"

	"github.com/iudanet/mapboard/internal/models"
)

//go:generate moq -out token_mock.go . TokenStorage

// TokenStorage defines interface for issued editor token persistence
type TokenStorage interface {
	// SaveToken stores a newly issued token
	// If token with same ID exists, it will be replaced
	SaveToken(ctx context.Context, token *models.EditorToken) error

	// GetToken retrieves token by ID (jti)
	// Returns ErrTokenNotFound if token doesn't exist
	GetToken(ctx context.Context, id string) (*models.EditorToken, error)

	// ListTokens retrieves all tokens, newest first
	ListTokens(ctx context.Context) ([]*models.EditorToken, error)

	// RevokeToken marks token as revoked
	// Returns ErrTokenNotFound if token doesn't exist
	RevokeToken(ctx context.Context, id string) error

	// DeleteExpiredTokens removes all expired tokens
	// Returns number of deleted tokens
	DeleteExpiredTokens(ctx context.Context) (int, error)
}
