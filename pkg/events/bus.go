// Package events implements the in-process publish/subscribe bus and the cooperative event
// loop that every storefront state change flows through.
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// Handler receives the payload published with an event. Payload shapes vary per event.
type Handler func(payload any)

// Observer is told about every emission, after the handler snapshot is taken.
type Observer func(name enums.EventName, handlers int)

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus delivers events synchronously to the handlers registered for the exact event name.
// Handlers run outside the registry lock, so they may emit, subscribe or unsubscribe freely.
type Bus struct {
	mu       sync.RWMutex
	handlers map[enums.EventName][]subscriber
	nextID   uint64
	observer Observer
	logg     *logger.Logger
}

// Option configures optional bus behavior.
type Option func(*Bus)

// WithObserver installs a hook invoked once per Emit.
func WithObserver(fn Observer) Option {
	return func(b *Bus) {
		b.observer = fn
	}
}

// WithLogger attaches a logger used for payload type mismatches.
func WithLogger(logg *logger.Logger) Option {
	return func(b *Bus) {
		b.logg = logg
	}
}

// NewBus builds an empty bus.
func NewBus(opts ...Option) *Bus {
	bus := &Bus{handlers: make(map[enums.EventName][]subscriber)}
	for _, opt := range opts {
		if opt != nil {
			opt(bus)
		}
	}
	return bus
}

// Subscription identifies one registered handler.
type Subscription struct {
	bus  *Bus
	name enums.EventName
	id   uint64
}

// Off removes the handler. Calling it more than once is a no-op.
func (s Subscription) Off() {
	if s.bus == nil {
		return
	}
	s.bus.Off(s)
}

// On registers handler for name and returns its subscription.
func (b *Bus) On(name enums.EventName, handler Handler) Subscription {
	if handler == nil {
		return Subscription{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	current := b.handlers[name]
	next := make([]subscriber, len(current), len(current)+1)
	copy(next, current)
	b.handlers[name] = append(next, subscriber{id: b.nextID, handler: handler})

	return Subscription{bus: b, name: name, id: b.nextID}
}

// Off removes the subscribed handler.
func (b *Bus) Off(sub Subscription) {
	if sub.bus != b {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.handlers[sub.name]
	next := make([]subscriber, 0, len(current))
	for _, s := range current {
		if s.id != sub.id {
			next = append(next, s)
		}
	}
	if len(next) == 0 {
		delete(b.handlers, sub.name)
		return
	}
	b.handlers[sub.name] = next
}

// Emit invokes every handler registered for name, in registration order, and returns how many
// ran. The handler list is captured before the first handler runs.
func (b *Bus) Emit(name enums.EventName, payload any) int {
	b.mu.RLock()
	snapshot := b.handlers[name]
	observer := b.observer
	b.mu.RUnlock()

	if observer != nil {
		observer(name, len(snapshot))
	}
	for _, s := range snapshot {
		s.handler(payload)
	}
	return len(snapshot)
}

// HandlerCount returns the number of handlers currently registered for name.
func (b *Bus) HandlerCount(name enums.EventName) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[name])
}

func (b *Bus) mismatch(name enums.EventName, payload any, want string) {
	if b.logg == nil {
		return
	}
	ctx := b.logg.WithFields(context.Background(), map[string]any{
		"event":        name.String(),
		"payload_type": fmt.Sprintf("%T", payload),
		"want_type":    want,
	})
	b.logg.Warn(ctx, "events.payload_mismatch")
}

// Subscribe registers a typed handler. Payloads of any other type are skipped.
func Subscribe[T any](b *Bus, name enums.EventName, fn func(T)) Subscription {
	if fn == nil {
		return Subscription{}
	}
	return b.On(name, func(payload any) {
		typed, ok := payload.(T)
		if !ok {
			var zero T
			b.mismatch(name, payload, fmt.Sprintf("%T", zero))
			return
		}
		fn(typed)
	})
}

// SubscribeSignal registers a handler for events whose payload carries no information.
func SubscribeSignal(b *Bus, name enums.EventName, fn func()) Subscription {
	if fn == nil {
		return Subscription{}
	}
	return b.On(name, func(any) { fn() })
}
