package server

import (
	"slices"
	"sync"

	"github.com/matzehuels/navtree/pkg/dashboard"
)

// hubBuffer is the number of pending collections kept per subscriber.
const hubBuffer = 8

// Hub fans out collection updates to subscribers.
// Consecutive identical collections are published once. A subscriber that
// falls behind loses its oldest pending update.
type Hub struct {
	mu     sync.Mutex
	next   int
	subs   map[int]chan []dashboard.Entry
	last   []dashboard.Entry
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan []dashboard.Entry)}
}

// Subscribe registers a subscriber. The returned function unsubscribes and
// closes the channel; the channel is also closed by [Hub.Close].
func (h *Hub) Subscribe() (<-chan []dashboard.Entry, func()) {
	ch := make(chan []dashboard.Entry, hubBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.next
	h.next++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers entries to every subscriber without blocking.
// It reports false when entries equal the previous publication or the hub
// is closed.
func (h *Hub) Publish(entries []dashboard.Entry) bool {
	entries = dashboard.Clone(entries)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || (h.last != nil && slices.Equal(h.last, entries)) {
		return false
	}
	h.last = entries
	for _, ch := range h.subs {
		for {
			select {
			case ch <- dashboard.Clone(entries):
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
	return true
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close closes every subscriber channel. Later publications are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
