package handlers

import (
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iudanet/mapboard/internal/models"
)

const tokenIssuer = "mapboard"

// EditorClaims представляет JWT claims токена редактора
type EditorClaims struct {
	Label string   `json:"label,omitempty"`
	Pages []string `json:"pages"` // ключи страниц или "*"
	jwt.RegisteredClaims
}

// Allows сообщает, разрешена ли запись в страницу key
func (c *EditorClaims) Allows(key string) bool {
	return slices.Contains(c.Pages, models.AllPages) || slices.Contains(c.Pages, key)
}

// JWTConfig содержит конфигурацию для JWT
type JWTConfig struct {
	Secret   []byte
	TokenTTL time.Duration // 0 означает бессрочный токен
}

// GenerateEditorToken создает новый подписанный токен редактора.
// Возвращает JWT и запись для хранилища (для отзыва по jti).
func GenerateEditorToken(cfg JWTConfig, label string, pages []string) (string, *models.EditorToken, error) {
	if len(cfg.Secret) == 0 {
		return "", nil, fmt.Errorf("token secret is not configured")
	}
	if len(pages) == 0 {
		return "", nil, fmt.Errorf("token must grant at least one page")
	}

	now := time.Now().Truncate(time.Second)
	record := &models.EditorToken{
		ID:        uuid.New().String(),
		Label:     label,
		Pages:     slices.Clone(pages),
		CreatedAt: now,
	}

	claims := EditorClaims{
		Label: label,
		Pages: record.Pages,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        record.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	if cfg.TokenTTL > 0 {
		record.ExpiresAt = now.Add(cfg.TokenTTL)
		claims.ExpiresAt = jwt.NewNumericDate(record.ExpiresAt)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, record, nil
}

// ValidateEditorToken валидирует и парсит JWT токен редактора
func ValidateEditorToken(cfg JWTConfig, tokenString string) (*EditorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &EditorClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*EditorClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
