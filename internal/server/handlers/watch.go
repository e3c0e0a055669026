package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/mapboard/internal/models"
	"github.com/iudanet/mapboard/internal/server/hub"
	"github.com/iudanet/mapboard/internal/server/storage"
	"github.com/iudanet/mapboard/internal/validation"
	"github.com/iudanet/mapboard/pkg/api"
)

const (
	// writeWait время на запись одного сообщения
	writeWait = 10 * time.Second
	// pongWait время ожидания pong от клиента
	pongWait = 60 * time.Second
	// pingPeriod период отправки ping, должен быть меньше pongWait
	pingPeriod = (pongWait * 9) / 10
	// maxClientMessage клиент ничего не присылает кроме control frames
	maxClientMessage = 512
)

// SnapshotReader читает текущий snapshot страницы
type SnapshotReader interface {
	GetSnapshot(ctx context.Context, key string) (*models.Snapshot, error)
}

// Watchers регистрирует наблюдателей страницы
type Watchers interface {
	Subscribe(key string) *hub.Subscriber
	Unsubscribe(sub *hub.Subscriber)
}

// WatchHandler streams page snapshots over websocket
type WatchHandler struct {
	logger   *slog.Logger
	storage  SnapshotReader
	watchers Watchers
	upgrader websocket.Upgrader
}

// NewWatchHandler creates a new watch handler
func NewWatchHandler(logger *slog.Logger, storage SnapshotReader, watchers Watchers) *WatchHandler {
	return &WatchHandler{
		logger:   logger,
		storage:  storage,
		watchers: watchers,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			// Страницы карты открываются с любых хостов
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Watch обрабатывает GET /api/v1/maps/{key}/watch
// Первое сообщение содержит текущий snapshot (или event "empty"),
// затем приходит каждая новая запись страницы
func (h *WatchHandler) Watch(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if err := validation.ValidatePageKey(key); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid page key", err.Error())
		return
	}

	// Подписываемся до чтения текущего значения, чтобы не пропустить запись между ними
	sub := h.watchers.Subscribe(key)
	defer h.watchers.Unsubscribe(sub)

	current, err := h.storage.GetSnapshot(r.Context(), key)
	if err != nil && !errors.Is(err, storage.ErrSnapshotNotFound) {
		h.logger.Error("Failed to get snapshot", "key", key, "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal server error", "")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже отправил ответ с ошибкой
		h.logger.Warn("Websocket upgrade failed", "key", key, "error", err)
		return
	}
	defer conn.Close()

	h.logger.Info("Watcher connected", "key", key, "remote_addr", r.RemoteAddr)

	var lastSent int64
	first := api.WatchEvent{Type: api.EventEmpty}
	if current != nil {
		first = api.WatchEvent{Type: api.EventSnapshot, Snapshot: toAPISnapshot(current)}
		lastSent = current.Timestamp
	}
	if err := writeEvent(conn, first); err != nil {
		h.logger.Debug("Failed to send initial snapshot", "key", key, "error", err)
		return
	}

	closed := make(chan struct{})
	go readPump(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snapshot, ok := <-sub.C():
			if !ok {
				// Сервер завершает работу
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(writeWait))
				return
			}
			if snapshot.Timestamp <= lastSent {
				continue
			}
			if err := writeEvent(conn, api.WatchEvent{Type: api.EventSnapshot, Snapshot: toAPISnapshot(snapshot)}); err != nil {
				h.logger.Debug("Failed to send snapshot", "key", key, "error", err)
				return
			}
			lastSent = snapshot.Timestamp

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.logger.Debug("Ping failed", "key", key, "error", err)
				return
			}

		case <-closed:
			h.logger.Info("Watcher disconnected", "key", key, "remote_addr", r.RemoteAddr)
			return

		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, event api.WatchEvent) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(event)
}

// readPump читает control frames клиента и закрывает closed при разрыве
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(maxClientMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
