package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/iudanet/mapboard/internal/models"
	"github.com/iudanet/mapboard/internal/server/handlers"
	"github.com/iudanet/mapboard/internal/server/storage"
)

// TokenLookup находит запись токена редактора для проверки отзыва
type TokenLookup interface {
	GetToken(ctx context.Context, id string) (*models.EditorToken, error)
}

// AuthMiddleware создает middleware для проверки токена редактора.
// Если маршрут содержит {key}, токен должен разрешать запись в эту страницу.
// tokens может быть nil, тогда отзыв не проверяется.
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig, tokens TokenLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Missing Authorization header", "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "unauthorized: missing token")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				logger.Warn("Invalid Authorization header format")
				writeError(w, http.StatusUnauthorized, "unauthorized: invalid token format")
				return
			}

			claims, err := handlers.ValidateEditorToken(jwtConfig, tokenString)
			if err != nil {
				logger.Warn("Invalid editor token", "error", err)
				writeError(w, http.StatusUnauthorized, "unauthorized: invalid token")
				return
			}

			if tokens != nil {
				record, err := tokens.GetToken(r.Context(), claims.ID)
				switch {
				case errors.Is(err, storage.ErrTokenNotFound):
					// Токен выпущен другим экземпляром сервера с тем же секретом
				case err != nil:
					logger.Error("Failed to look up editor token", "token_id", claims.ID, "error", err)
					writeError(w, http.StatusInternalServerError, "internal server error")
					return
				case !record.IsActive(time.Now()):
					logger.Warn("Revoked editor token used", "token_id", claims.ID)
					writeError(w, http.StatusUnauthorized, "unauthorized: token revoked")
					return
				}
			}

			if key := r.PathValue("key"); key != "" && !claims.Allows(key) {
				logger.Warn("Editor token does not grant page", "token_id", claims.ID, "key", key)
				writeError(w, http.StatusForbidden, "forbidden: page not granted")
				return
			}

			logger.Debug("Editor authenticated", "token_id", claims.ID, "label", claims.Label)

			next.ServeHTTP(w, r.WithContext(handlers.WithClaims(r.Context(), claims)))
		})
	}
}
