package bus

import (
	"sync"

	"nexus-chat/internal/models"
)

// Handler consumes a published event.
type Handler func(models.Event)

type subscription struct {
	id uint64
	fn Handler
}

// Bus fans events out from the simulation service to any number of
// subscribers. Delivery is synchronous and follows registration order.
// There is no buffering: a handler registered after Publish returns does
// not see that event.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[models.EventKind][]subscription
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[models.EventKind][]subscription)}
}

// Subscribe registers fn for kind and returns a cancel func that removes
// exactly this registration. Cancel is idempotent; calling it twice is a
// no-op.
func (b *Bus) Subscribe(kind models.EventKind, fn Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[kind] = append(b.subs[kind], subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(kind, id) })
	}
}

func (b *Bus) remove(kind models.EventKind, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[kind]
	for i, s := range subs {
		if s.id == id {
			b.subs[kind] = append(append([]subscription(nil), subs[:i]...), subs[i+1:]...)
			break
		}
	}
	if len(b.subs[kind]) == 0 {
		delete(b.subs, kind)
	}
}

// Publish invokes every handler currently registered for the event's kind.
// Delivery walks a snapshot of the registration list, so handlers may
// subscribe or unsubscribe reentrantly without corrupting bookkeeping.
// A panicking handler propagates to the publisher.
func (b *Bus) Publish(ev models.Event) {
	b.mu.Lock()
	subs := append([]subscription(nil), b.subs[ev.Kind()]...)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(ev)
	}
}

// On subscribes fn to the concrete event variant T, sparing callers the
// type assertion. The kind is inferred from T's zero value.
func On[T models.Event](b *Bus, fn func(T)) func() {
	var zero T
	return b.Subscribe(zero.Kind(), func(ev models.Event) {
		if typed, ok := ev.(T); ok {
			fn(typed)
		}
	})
}
