// Package events provides multicast event streams for engine consumers.
package events

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultBufferSize is the per-subscriber channel buffer.
const DefaultBufferSize = 32

// Subscription receives events published after it was created. There is no
// replay: late subscribers never see earlier events.
type Subscription[T any] struct {
	// C delivers events in publish order.
	C <-chan T

	id string
	ch chan T
}

// ID returns the subscription identifier.
func (s *Subscription[T]) ID() string {
	return s.id
}

// Bus is an ordered, replay-free multicast stream. Publishing never blocks:
// when a subscriber's buffer is full the oldest buffered event is dropped to
// make room, so slow consumers cannot stall the producer.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription[T]
	buffer int
	closed bool
}

// NewBus creates a bus with the given per-subscriber buffer size.
// Sizes below one fall back to DefaultBufferSize.
func NewBus[T any](buffer int) *Bus[T] {
	if buffer < 1 {
		buffer = DefaultBufferSize
	}
	return &Bus[T]{
		subs:   make(map[string]*Subscription[T]),
		buffer: buffer,
	}
}

// Subscribe adds a new subscriber.
func (b *Bus[T]) Subscribe() *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription[T]{
		id: uuid.New().String(),
		ch: make(chan T, b.buffer),
	}
	sub.C = sub.ch

	if b.closed {
		// Closed bus hands out an already-closed subscription.
		close(sub.ch)
		return sub
	}

	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Bus[T]) Unsubscribe(sub *Subscription[T]) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub.id]; !ok {
		return
	}
	delete(b.subs, sub.id)
	close(sub.ch)
}

// Publish delivers the event to every active subscriber.
func (b *Bus[T]) Publish(event T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, sub := range b.subs {
		select {
		case sub.ch <- event:
		default:
			// Buffer full: drop the oldest event, then retry once.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- event:
			default:
			}
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes all subscriber channels. Further publishes are no-ops.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
}
