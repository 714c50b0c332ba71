// Package stream fans guide events out to WebSocket clients. The broker
// decouples the guide service's synchronous observers from slow network
// consumers: events are dropped, never blocked on, when a client falls
// behind.
package stream

import (
	"sync"

	"github.com/rotaguia/rotaguia/internal/guide"
)

// subscriber buffer size. A client more than this many events behind
// starts losing events.
const subscriberBuffer = 16

// Broker distributes guide events to per-device subscribers.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan guide.Event]struct{} // deviceID -> set of channels
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan guide.Event]struct{}{}}
}

// Subscribe returns a channel receiving events for the given device.
func (b *Broker) Subscribe(deviceID string) chan guide.Event {
	ch := make(chan guide.Event, subscriberBuffer)
	b.mu.Lock()
	if b.subs[deviceID] == nil {
		b.subs[deviceID] = map[chan guide.Event]struct{}{}
	}
	b.subs[deviceID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (b *Broker) Unsubscribe(deviceID string, ch chan guide.Event) {
	b.mu.Lock()
	if m := b.subs[deviceID]; m != nil {
		if _, ok := m[ch]; !ok {
			b.mu.Unlock()
			return
		}
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, deviceID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

// Publish delivers an event to all subscribers of its device. Sends are
// non-blocking; full subscribers miss the event.
func (b *Broker) Publish(evt guide.Event) {
	b.mu.Lock()
	for ch := range b.subs[evt.DeviceID] {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}

// SubscriberCount reports the number of active subscribers for a device.
func (b *Broker) SubscriberCount(deviceID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[deviceID])
}
