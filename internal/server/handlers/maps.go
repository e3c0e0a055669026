package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/iudanet/mapboard/internal/models"
	"github.com/iudanet/mapboard/internal/raster"
	"github.com/iudanet/mapboard/internal/server/storage"
	"github.com/iudanet/mapboard/internal/validation"
	"github.com/iudanet/mapboard/pkg/api"
)

const (
	// DefaultMaxBodyBytes ограничивает размер тела PUT запроса
	DefaultMaxBodyBytes = 16 << 20
	// MaxImageSide ограничивает ширину и высоту сохраняемого слоя
	MaxImageSide = 16384
)

// SnapshotStore определяет интерфейс для работы со snapshot страниц
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) (bool, error)
	GetSnapshot(ctx context.Context, key string) (*models.Snapshot, error)
	ListSnapshots(ctx context.Context) ([]models.MapSummary, error)
}

// Clock выдает серверные метки времени
type Clock interface {
	Now() int64
}

// Broadcaster рассылает сохраненные snapshot наблюдателям страницы
type Broadcaster interface {
	Publish(snapshot *models.Snapshot) int
}

// MapsHandler handles page snapshot reads and writes
type MapsHandler struct {
	logger       *slog.Logger
	storage      SnapshotStore
	clock        Clock
	broadcaster  Broadcaster
	maxBodyBytes int64
	// writeMu упорядочивает назначение timestamp и запись,
	// чтобы более поздняя метка всегда записывалась позже
	writeMu sync.Mutex
}

// NewMapsHandler creates a new maps handler
func NewMapsHandler(logger *slog.Logger, storage SnapshotStore, clock Clock, broadcaster Broadcaster) *MapsHandler {
	return &MapsHandler{
		logger:       logger,
		storage:      storage,
		clock:        clock,
		broadcaster:  broadcaster,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
}

// SetMaxBodyBytes меняет ограничение размера тела запроса
func (h *MapsHandler) SetMaxBodyBytes(n int64) {
	if n > 0 {
		h.maxBodyBytes = n
	}
}

// Put обрабатывает PUT /api/v1/maps/{key}
// Полностью заменяет слой рисования страницы, timestamp назначает сервер
func (h *MapsHandler) Put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key := r.PathValue("key")
	if err := validation.ValidatePageKey(key); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid page key", err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req api.PutMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.logger.Warn("Map body too large", "key", key, "limit", maxErr.Limit)
			writeError(h.logger, w, http.StatusRequestEntityTooLarge, "map data too large", "")
			return
		}
		h.logger.Warn("Invalid request body", "key", key, "error", err)
		writeError(h.logger, w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	info, err := validateMapData(req.MapData)
	if err != nil {
		h.logger.Warn("Invalid map data", "key", key, "error", err)
		writeError(h.logger, w, http.StatusBadRequest, "invalid map data", err.Error())
		return
	}

	h.writeMu.Lock()
	snapshot := &models.Snapshot{
		Key:       key,
		MapData:   req.MapData,
		NodeID:    req.NodeID,
		Digest:    info.Digest,
		Timestamp: h.clock.Now(),
		UpdatedAt: time.Now().UTC(),
	}
	saved, err := h.storage.SaveSnapshot(ctx, snapshot)
	if err == nil && saved {
		h.broadcaster.Publish(snapshot)
	}
	h.writeMu.Unlock()

	if err != nil {
		h.logger.Error("Failed to save snapshot", "key", key, "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal server error", "")
		return
	}
	if !saved {
		// Хранилище содержит более новую версию (часы сервера отстали)
		h.logger.Warn("Stored snapshot is newer, write ignored", "key", key, "timestamp", snapshot.Timestamp)
		writeError(h.logger, w, http.StatusConflict, "stored snapshot is newer", "")
		return
	}

	h.logger.Info("Snapshot saved",
		"key", key,
		"timestamp", snapshot.Timestamp,
		"node_id", snapshot.NodeID,
		"width", info.Width,
		"height", info.Height,
	)

	writeJSON(h.logger, w, http.StatusOK, toAPISnapshot(snapshot))
}

// validateMapData проверяет, что map_data является PNG data URL разумного размера
func validateMapData(mapData string) (*raster.Info, error) {
	if mapData == "" {
		return nil, fmt.Errorf("mapData is required")
	}

	info, err := raster.Inspect(mapData)
	if err != nil {
		return nil, err
	}
	if info.Format != "png" {
		return nil, fmt.Errorf("unsupported image format %q, want png", info.Format)
	}
	if info.Width <= 0 || info.Height <= 0 || info.Width > MaxImageSide || info.Height > MaxImageSide {
		return nil, fmt.Errorf("image size %dx%d out of range", info.Width, info.Height)
	}
	return info, nil
}

// Get обрабатывает GET /api/v1/maps/{key}
func (h *MapsHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if err := validation.ValidatePageKey(key); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid page key", err.Error())
		return
	}

	snapshot, err := h.storage.GetSnapshot(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			writeError(h.logger, w, http.StatusNotFound, "snapshot not found", "")
			return
		}
		h.logger.Error("Failed to get snapshot", "key", key, "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal server error", "")
		return
	}

	writeJSON(h.logger, w, http.StatusOK, toAPISnapshot(snapshot))
}

// List обрабатывает GET /api/v1/maps
func (h *MapsHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.storage.ListSnapshots(r.Context())
	if err != nil {
		h.logger.Error("Failed to list snapshots", "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal server error", "")
		return
	}

	resp := api.MapListResponse{Maps: make([]api.MapSummary, 0, len(summaries))}
	for _, s := range summaries {
		resp.Maps = append(resp.Maps, api.MapSummary{
			Key:       s.Key,
			Timestamp: s.Timestamp,
			UpdatedAt: s.UpdatedAt,
		})
	}

	writeJSON(h.logger, w, http.StatusOK, resp)
}
