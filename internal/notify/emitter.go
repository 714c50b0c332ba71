// Package notify provides synchronous typed event fan-out.
package notify

import (
	"sync"

	"github.com/rs/zerolog"
)

// Subscription identifies a registered subscriber. The zero value is not a
// valid subscription.
type Subscription int

// Emitter delivers events of type T to subscribers synchronously, in
// subscription order. A subscriber that panics is isolated: the panic is
// recovered and logged and the remaining subscribers still run.
type Emitter[T any] struct {
	logger zerolog.Logger

	mu     sync.Mutex
	nextID Subscription
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id Subscription
	fn func(T)
}

// NewEmitter creates an emitter logging subscriber failures to the given logger.
func NewEmitter[T any](logger zerolog.Logger) *Emitter[T] {
	return &Emitter[T]{logger: logger}
}

// Subscribe registers a callback and returns its subscription handle.
// A nil callback is ignored with a warning and yields the zero Subscription.
func (e *Emitter[T]) Subscribe(fn func(T)) Subscription {
	if fn == nil {
		e.logger.Warn().Msg("ignoring nil subscriber")
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	e.subs = append(e.subs, subscriber[T]{id: e.nextID, fn: fn})
	return e.nextID
}

// Unsubscribe removes a previously registered subscriber. Unknown handles
// are ignored.
func (e *Emitter[T]) Unsubscribe(sub Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.subs {
		if s.id == sub {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			return
		}
	}
}

// Notify delivers the event to every subscriber in subscription order.
// Delivery is synchronous; Notify returns once all subscribers have run.
func (e *Emitter[T]) Notify(event T) {
	e.mu.Lock()
	subs := make([]subscriber[T], len(e.subs))
	copy(subs, e.subs)
	e.mu.Unlock()

	for _, s := range subs {
		e.deliver(s, event)
	}
}

// deliver runs one subscriber, containing any panic so one failing consumer
// cannot short-circuit the fan-out.
func (e *Emitter[T]) deliver(s subscriber[T], event T) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().
				Int("subscription", int(s.id)).
				Interface("panic", r).
				Msg("subscriber panicked during notification")
		}
	}()
	s.fn(event)
}

// Len returns the number of registered subscribers.
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}
