package models

import "time"

// Snapshot представляет полное состояние слоя рисования одной страницы.
// Каждая запись полностью заменяет предыдущую (без истории и без слияния).
type Snapshot struct {
	UpdatedAt time.Time `json:"updated_at"` // UpdatedAt время записи на сервере (для информации)
	Key       string    `json:"key"`        // Key идентификатор страницы (например "seal-map")
	MapData   string    `json:"map_data"`   // MapData PNG слоя рисования в виде data URL
	NodeID    string    `json:"node_id"`    // NodeID идентификатор клиента, опубликовавшего версию
	Digest    string    `json:"digest"`     // Digest BLAKE2b-256 от PNG байтов (hex)
	Timestamp int64     `json:"timestamp"`  // Timestamp серверное время записи в миллисекундах
}

// IsNewerThan сообщает, должен ли snapshot заменить other по правилу
// Last-Write-Wins. Выигрывает строго больший Timestamp; при равных
// значениях snapshot не новее (повторное применение ничего не меняет).
func (s *Snapshot) IsNewerThan(other *Snapshot) bool {
	if other == nil {
		return true
	}
	return s.Timestamp > other.Timestamp
}

// IsEmpty returns true when the snapshot carries no image.
func (s *Snapshot) IsEmpty() bool {
	return s == nil || s.MapData == ""
}

// Clone создает копию snapshot
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// ViewState хранит трансформацию вида страницы для быстрого восстановления
// из локального кеша.
type ViewState struct {
	Key     string  `json:"key"`
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// MapSummary is a lightweight listing row for stored pages.
type MapSummary struct {
	UpdatedAt time.Time `json:"updated_at"`
	Key       string    `json:"key"`
	Timestamp int64     `json:"timestamp"`
}
