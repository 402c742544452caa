package events

import (
	"sync"
	"time"
)

// Handler receives published events. Handlers run on the emitting goroutine
// and must not block.
type Handler func(Event)

// Bus fans events out to subscribers.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]subscription
}

type subscription struct {
	types   map[EventType]bool // nil means all types
	handler Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]subscription)}
}

// Subscribe registers handler for the given event types, or for every event
// when none are given. The returned function removes the subscription.
func (b *Bus) Subscribe(handler Handler, types ...EventType) func() {
	sub := subscription{handler: handler}
	if len(types) > 0 {
		sub.types = make(map[EventType]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Emit publishes an event to matching subscribers.
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	b.Publish(Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	})
}

// Publish delivers a fully formed event.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.types == nil || sub.types[event.Type] {
			handlers = append(handlers, sub.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
