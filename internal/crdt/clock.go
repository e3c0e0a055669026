package crdt

import (
	"sync"
	"time"
)

// ServerClock выдает временные метки записи в миллисекундах.
// Метка равна max(текущее время, последняя метка + 1), поэтому она
// строго возрастает даже при одинаковом или отстающем системном времени.
type ServerClock struct {
	now  func() time.Time
	last int64
	mu   sync.Mutex
}

// NewServerClock создает часы на основе системного времени.
func NewServerClock() *ServerClock {
	return &ServerClock{now: time.Now}
}

// NewServerClockWithSource создает часы с заданным источником времени.
// Используется для тестирования.
func NewServerClockWithSource(now func() time.Time) *ServerClock {
	return &ServerClock{now: now}
}

// Now возвращает следующую метку времени.
func (c *ServerClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := c.now().UnixMilli()
	if ts <= c.last {
		ts = c.last + 1
	}
	c.last = ts
	return ts
}

// Observe продвигает часы до уже выданной метки (например, прочитанной из
// хранилища после перезапуска), чтобы следующая метка была больше нее.
func (c *ServerClock) Observe(timestamp int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timestamp > c.last {
		c.last = timestamp
	}
}
