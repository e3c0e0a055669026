package models

import (
	"slices"
	"time"
)

// AllPages в списке страниц токена разрешает запись в любую страницу
const AllPages = "*"

// EditorToken представляет выданный токен редактора.
// Сам JWT не хранится, только его идентификатор (jti) для отзыва.
type EditorToken struct {
	CreatedAt time.Time `json:"created_at"` // время выдачи
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	ID        string    `json:"id"`         // UUID токена (jti)
	Label     string    `json:"label"`      // кому выдан, для людей
	Pages     []string  `json:"pages"`      // ключи страниц или "*"
	Revoked   bool      `json:"revoked"`    // токен отозван
}

// Allows сообщает, разрешает ли токен запись в страницу key
func (t *EditorToken) Allows(key string) bool {
	return slices.Contains(t.Pages, AllPages) || slices.Contains(t.Pages, key)
}

// IsActive сообщает, можно ли использовать токен в момент now
func (t *EditorToken) IsActive(now time.Time) bool {
	if t.Revoked {
		return false
	}
	return t.ExpiresAt.IsZero() || now.Before(t.ExpiresAt)
}
