package utilcss

import (
	"sync"
)

// EventType names a generator lifecycle notification
type EventType string

const (
	EventConfigChanged      EventType = "config-changed"
	EventTokensResolved     EventType = "tokens-resolved"
	EventPreflightsResolved EventType = "preflights-resolved"
	EventGenerated          EventType = "generated"
)

// Event is delivered to subscribers synchronously.
type Event struct {
	Type    EventType
	Version uint64 // Config version the event belongs to
	ID      string // GenerateOptions.ID
	Tokens  int    // Tokens considered by the call
	Matched int    // Tokens that produced output
}

// EventHandler receives lifecycle events
type EventHandler func(Event)

type subscription struct {
	id      uint64
	handler EventHandler
}

// eventBus fans events out to subscribers
type eventBus struct {
	mu     sync.RWMutex
	subs   map[EventType][]subscription
	nextID uint64
}

func newEventBus() *eventBus {
	return &eventBus{subs: map[EventType][]subscription{}}
}

func (b *eventBus) subscribe(t EventType, h EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[t] = append(b.subs[t], subscription{id: id, handler: h})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			subs := b.subs[t]
			for i, s := range subs {
				if s.id == id {
					b.subs[t] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
		})
	}
}

func (b *eventBus) publish(e Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, 0, len(b.subs[e.Type]))
	for _, s := range b.subs[e.Type] {
		handlers = append(handlers, s.handler)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
