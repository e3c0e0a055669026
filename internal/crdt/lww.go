package crdt

import (
	"sort"
	"sync"

	"github.com/iudanet/mapboard/internal/models"
)

// Register представляет Last-Write-Wins регистр для одной страницы.
// Хранит метку последнего примененного или опубликованного snapshot.
type Register struct {
	current *models.Snapshot
	mu      sync.RWMutex
}

// NewRegister создает пустой регистр.
func NewRegister() *Register {
	return &Register{}
}

// Apply принимает snapshot, если его timestamp строго больше текущего.
// Возвращает true, если регистр был обновлен.
func (r *Register) Apply(s *models.Snapshot) bool {
	if s == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !s.IsNewerThan(r.current) {
		return false
	}
	r.current = s.Clone()
	return true
}

// Timestamp возвращает метку текущего значения (0, если регистр пуст).
func (r *Register) Timestamp() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current == nil {
		return 0
	}
	return r.current.Timestamp
}

// LWWMap хранит по одному LWW регистру на ключ страницы.
type LWWMap struct {
	elements map[string]*models.Snapshot // map[key]snapshot
	mu       sync.RWMutex
}

// NewLWWMap создает пустую карту.
func NewLWWMap() *LWWMap {
	return &LWWMap{
		elements: make(map[string]*models.Snapshot),
	}
}

// Put добавляет snapshot или заменяет существующий, если новый строго новее.
// Возвращает true, если значение было записано.
func (m *LWWMap) Put(s *models.Snapshot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.elements[s.Key]
	if exists && !s.IsNewerThan(existing) {
		return false
	}
	m.elements[s.Key] = s.Clone()
	return true
}

// Get возвращает копию snapshot по ключу или nil.
func (m *LWWMap) Get(key string) *models.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.elements[key].Clone()
}

// Keys возвращает отсортированный список ключей.
func (m *LWWMap) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.elements))
	for k := range m.elements {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Size возвращает количество ключей.
func (m *LWWMap) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.elements)
}
