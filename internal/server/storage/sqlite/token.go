package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/mapboard/internal/models"
	"github.com/iudanet/mapboard/internal/server/storage"
)

// SaveToken stores a newly issued editor token
func (s *Storage) SaveToken(ctx context.Context, token *models.EditorToken) error {
	query := `
		INSERT OR REPLACE INTO editor_tokens (id, label, pages, revoked, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		token.ID,
		token.Label,
		strings.Join(token.Pages, ","),
		boolToInt(token.Revoked),
		unixOrZero(token.ExpiresAt),
		token.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to save editor token: %w", err)
	}

	return nil
}

// GetToken retrieves editor token by ID
func (s *Storage) GetToken(ctx context.Context, id string) (*models.EditorToken, error) {
	query := `
		SELECT id, label, pages, revoked, expires_at, created_at
		FROM editor_tokens
		WHERE id = ?
	`

	token, err := scanToken(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get editor token: %w", err)
	}

	return token, nil
}

// ListTokens retrieves all editor tokens, newest first
func (s *Storage) ListTokens(ctx context.Context) ([]*models.EditorToken, error) {
	query := `
		SELECT id, label, pages, revoked, expires_at, created_at
		FROM editor_tokens
		ORDER BY created_at DESC, id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query editor tokens: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var tokens []*models.EditorToken

	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tokens, nil
}

// RevokeToken marks editor token as revoked
func (s *Storage) RevokeToken(ctx context.Context, id string) error {
	query := `UPDATE editor_tokens SET revoked = 1 WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to revoke editor token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrTokenNotFound
	}

	return nil
}

// DeleteExpiredTokens removes all expired tokens
func (s *Storage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	query := `DELETE FROM editor_tokens WHERE expires_at > 0 AND expires_at < ?`

	result, err := s.db.ExecContext(ctx, query, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToken(row rowScanner) (*models.EditorToken, error) {
	token := &models.EditorToken{}
	var pages string
	var revoked int
	var expiresAt, createdAt int64

	if err := row.Scan(&token.ID, &token.Label, &pages, &revoked, &expiresAt, &createdAt); err != nil {
		return nil, err
	}

	if pages != "" {
		token.Pages = strings.Split(pages, ",")
	}
	token.Revoked = revoked != 0
	if expiresAt > 0 {
		token.ExpiresAt = time.Unix(expiresAt, 0)
	}
	token.CreatedAt = time.Unix(createdAt, 0)
	return token, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
