package api

import "time"

// PutMapRequest представляет запрос на сохранение слоя рисования страницы.
// Timestamp назначает сервер.
type PutMapRequest struct {
	MapData string `json:"mapData"` // PNG слоя рисования в виде data URL
	NodeID  string `json:"nodeId"`  // идентификатор клиента (uuid)
}

// Snapshot представляет сохраненную версию слоя рисования
type Snapshot struct {
	UpdatedAt time.Time `json:"updatedAt"`
	Key       string    `json:"key"`
	MapData   string    `json:"mapData"`
	NodeID    string    `json:"nodeId"`
	Digest    string    `json:"digest"`    // BLAKE2b-256 от PNG байтов (hex)
	Timestamp int64     `json:"timestamp"` // серверное время записи в миллисекундах
}

// MapSummary представляет одну страницу в списке
type MapSummary struct {
	UpdatedAt time.Time `json:"updatedAt"`
	Key       string    `json:"key"`
	Timestamp int64     `json:"timestamp"`
}

// MapListResponse представляет ответ со списком страниц
type MapListResponse struct {
	Maps []MapSummary `json:"maps"`
}

// WatchEvent представляет одно сообщение websocket потока страницы
type WatchEvent struct {
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Type     string    `json:"type"` // snapshot | empty
}

// Типы событий потока
const (
	EventSnapshot = "snapshot" // текущее или новое значение записи
	EventEmpty    = "empty"    // запись еще не создана
)

// TokenInfo представляет сведения о предъявленном токене редактора
type TokenInfo struct {
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	ID        string     `json:"id"`
	Label     string     `json:"label,omitempty"`
	Pages     []string   `json:"pages"`
}
