package session

import (
	"sync"

	"github.com/hivewatch/console/internal/event"
)

// DefaultHistoryCapacity bounds the recent-interaction window kept for
// consumers that want a recent-past view without replaying the stream.
const DefaultHistoryCapacity = 50

// History is a fixed-capacity ring of the most recent interaction events.
// Once full, each push evicts the oldest entry. Cleared only by an explicit
// reset, never by time.
type History struct {
	mu   sync.Mutex
	buf  []event.Interaction
	head int // next write position
	n    int // filled entries, <= len(buf)
}

// NewHistory creates a ring with the given capacity. Capacity <= 0 falls
// back to DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{buf: make([]event.Interaction, capacity)}
}

// Cap returns the fixed capacity.
func (h *History) Cap() int {
	return len(h.buf)
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.n
}

// Push records an interaction, evicting the oldest entry when full.
func (h *History) Push(in event.Interaction) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf[h.head] = in
	h.head = (h.head + 1) % len(h.buf)
	if h.n < len(h.buf) {
		h.n++
	}
}

// Snapshot returns the retained interactions, newest first. The returned
// slice is a copy and safe to retain.
func (h *History) Snapshot() []event.Interaction {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]event.Interaction, h.n)
	idx := h.head
	for i := 0; i < h.n; i++ {
		idx--
		if idx < 0 {
			idx = len(h.buf) - 1
		}
		out[i] = h.buf[idx]
	}
	return out
}

// Clear drops all retained entries.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.head = 0
	h.n = 0
}
