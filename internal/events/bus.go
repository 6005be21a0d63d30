package events

import (
	"log/slog"
	"sync"

	"github.com/bunkbed-tech/fushigi-sub000/internal/id"
)

// Handler receives events. Handlers for EventCleared must be idempotent;
// no ordering among handlers is guaranteed.
type Handler func(Event)

type subscriber struct {
	name    string
	types   map[EventType]bool
	handler Handler
}

// Bus delivers each published event to every matching subscriber
// synchronously, so Publish returns only after all handlers ran.
type Bus struct {
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[string]subscriber
}

// NewBus creates a Bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger, subscribers: make(map[string]subscriber)}
}

// Subscribe registers handler for the given event types, or for every type
// when none are given. The returned func removes the subscription.
func (b *Bus) Subscribe(name string, handler Handler, types ...EventType) func() {
	sub := subscriber{name: name, handler: handler}
	if len(types) > 0 {
		sub.types = make(map[EventType]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}

	key := id.Ephemeral()
	b.mu.Lock()
	b.subscribers[key] = sub
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, key)
	}
}

// Publish delivers event. A panicking handler is logged and does not stop
// delivery to the others.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := make([]subscriber, 0, len(b.subscribers))
	for _, s := range b.subscribers {
		if s.types == nil || s.types[event.Type] {
			subs = append(subs, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(s, event)
	}

	b.logger.Debug("event published",
		slog.String("event_type", string(event.Type)),
		slog.Int("delivered", len(subs)),
	)
}

func (b *Bus) deliver(s subscriber, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				slog.String("subscriber", s.name),
				slog.String("event_type", string(event.Type)),
				slog.Any("panic", r),
			)
		}
	}()
	s.handler(event)
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
