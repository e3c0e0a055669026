package handlers

import "context"

// contextKey тип для ключей контекста
type contextKey string

const (
	// TokenIDKey ключ для хранения идентификатора токена редактора в контексте
	TokenIDKey contextKey = "token_id"
	// ClaimsKey ключ для хранения claims токена редактора в контексте
	ClaimsKey contextKey = "editor_claims"
)

// GetTokenID извлекает идентификатор токена из контекста запроса
func GetTokenID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(TokenIDKey).(string)
	return id, ok
}

// GetClaims извлекает claims токена редактора из контекста запроса
func GetClaims(ctx context.Context) (*EditorClaims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*EditorClaims)
	return claims, ok
}

// WithClaims возвращает контекст с claims токена редактора
func WithClaims(ctx context.Context, claims *EditorClaims) context.Context {
	ctx = context.WithValue(ctx, TokenIDKey, claims.ID)
	return context.WithValue(ctx, ClaimsKey, claims)
}
