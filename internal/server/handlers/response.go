package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/mapboard/internal/models"
	"github.com/iudanet/mapboard/pkg/api"
)

// writeJSON отправляет JSON ответ с указанным статусом
func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError отправляет ошибку в формате api.ErrorResponse
func writeError(logger *slog.Logger, w http.ResponseWriter, status int, msg string, detail string) {
	writeJSON(logger, w, status, api.ErrorResponse{Error: msg, Message: detail})
}

// toAPISnapshot конвертирует snapshot в API формат
func toAPISnapshot(s *models.Snapshot) *api.Snapshot {
	return &api.Snapshot{
		Key:       s.Key,
		MapData:   s.MapData,
		NodeID:    s.NodeID,
		Digest:    s.Digest,
		Timestamp: s.Timestamp,
		UpdatedAt: s.UpdatedAt,
	}
}
