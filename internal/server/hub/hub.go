// Package hub fans out stored snapshots to the watchers of each page.
package hub

import (
	"log/slog"
	"sync"

	"github.com/iudanet/mapboard/internal/models"
)

// subscriberBuffer is how many undelivered snapshots a watcher may lag
// behind before the oldest ones are dropped.
const subscriberBuffer = 4

// Subscriber receives the snapshots published for one page.
type Subscriber struct {
	ch  chan *models.Snapshot
	key string
	id  uint64
}

// C returns the delivery channel. It is closed on Unsubscribe or Close.
func (s *Subscriber) C() <-chan *models.Snapshot {
	return s.ch
}

// Key returns the page the subscriber watches.
func (s *Subscriber) Key() string {
	return s.key
}

// Hub manages the watchers of every page.
type Hub struct {
	logger *slog.Logger
	subs   map[string]map[uint64]*Subscriber // map[key]map[id]subscriber
	nextID uint64
	closed bool
	mu     sync.RWMutex
}

// New creates an empty hub.
func New(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		subs:   make(map[string]map[uint64]*Subscriber),
	}
}

// Subscribe registers a watcher for key. After Close it returns a
// subscriber whose channel is already closed.
func (h *Hub) Subscribe(key string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscriber{
		ch:  make(chan *models.Snapshot, subscriberBuffer),
		key: key,
		id:  h.nextID,
	}
	if h.closed {
		close(sub.ch)
		return sub
	}

	if h.subs[key] == nil {
		h.subs[key] = make(map[uint64]*Subscriber)
	}
	h.subs[key][sub.id] = sub

	h.logger.Debug("Watcher subscribed", "key", key, "watchers", len(h.subs[key]))
	return sub
}

// Unsubscribe removes the watcher and closes its channel. Calling it twice
// is safe.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[sub.key]
	if !ok {
		return
	}
	if _, ok := set[sub.id]; !ok {
		return
	}

	delete(set, sub.id)
	close(sub.ch)
	if len(set) == 0 {
		delete(h.subs, sub.key)
	}
	h.logger.Debug("Watcher unsubscribed", "key", sub.key)
}

// Publish delivers the snapshot to every watcher of its page without
// blocking. A watcher whose buffer is full loses its oldest pending
// snapshot. Returns the number of watchers reached.
func (h *Hub) Publish(snapshot *models.Snapshot) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.subs[snapshot.Key]
	for _, sub := range set {
		deliver(sub.ch, snapshot.Clone())
	}
	return len(set)
}

func deliver(ch chan *models.Snapshot, snapshot *models.Snapshot) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
		}

		// Буфер заполнен: выбрасываем самый старый snapshot
		select {
		case <-ch:
		default:
		}
	}
}

// Count returns the number of watchers of key.
func (h *Hub) Count(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[key])
}

// Close disconnects every watcher. Later subscriptions are closed at once.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for key, set := range h.subs {
		for _, sub := range set {
			close(sub.ch)
		}
		delete(h.subs, key)
	}
	h.closed = true
}
