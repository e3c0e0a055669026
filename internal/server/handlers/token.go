package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/mapboard/pkg/api"
)

// TokenHandler сообщает клиенту, что разрешает его токен редактора
type TokenHandler struct {
	logger *slog.Logger
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(logger *slog.Logger) *TokenHandler {
	return &TokenHandler{logger: logger}
}

// Info обрабатывает GET /api/v1/token
// Требует AuthMiddleware, который кладет claims в контекст
func (h *TokenHandler) Info(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		h.logger.Error("Editor claims not found in context")
		writeError(h.logger, w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	info := api.TokenInfo{
		ID:    claims.ID,
		Label: claims.Label,
		Pages: claims.Pages,
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		info.ExpiresAt = &exp
	}

	writeJSON(h.logger, w, http.StatusOK, info)
}
