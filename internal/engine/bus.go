package engine

import (
	"log"
	"sync"

	"github.com/hivewatch/console/internal/event"
)

// Subscriber consumes one published event. Subscribers run synchronously on
// the publishing goroutine, in registration order.
type Subscriber func(event.Event)

type subEntry struct {
	id int
	fn Subscriber
}

// Bus fans every published event out to the current subscribers. One Bus is
// constructed per stream instance; there is no ambient global registry.
//
// Registering the same function twice delivers every event twice; the bus
// does not deduplicate.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   []subEntry
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns its unsubscribe function, which is
// idempotent and safe to call from inside a callback during Publish.
func (b *Bus) Subscribe(fn Subscriber) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subEntry{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, e := range b.subs {
			if e.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev to every subscriber registered at the time of the
// call. The subscriber list is snapshotted first, so a callback registered
// as a side effect of handling ev does not also receive ev. A panicking
// subscriber is isolated; delivery continues to the rest.
func (b *Bus) Publish(ev event.Event) {
	b.mu.Lock()
	snapshot := make([]subEntry, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, e := range snapshot {
		invoke(e.fn, ev)
	}
}

// Len returns the current subscriber count.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func invoke(fn Subscriber, ev event.Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("subscriber panic recovered: %v", r)
		}
	}()
	fn(ev)
}
