package eventbus

import (
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the channel capacity given to each subscriber.
const DefaultBuffer = 64

// EventBus is a publish/subscribe bus for events of type T.
type EventBus[T any] interface {
	Publish(T)
	Subscribe() <-chan T
	Unsubscribe(<-chan T)
	Close()
}

// Bus is the default EventBus implementation using fan-out channels.
// Delivery is non-blocking: a subscriber whose buffer is full misses the
// event and the drop is counted.
type Bus[T any] struct {
	mu      sync.RWMutex
	subs    []chan T
	closed  bool
	buffer  int
	dropped atomic.Uint64
}

// New creates a Bus with DefaultBuffer sized subscriber channels.
func New[T any]() *Bus[T] { return NewWithBuffer[T](DefaultBuffer) }

// NewWithBuffer creates a Bus whose subscribers get channels of the given
// capacity. Values below 1 are raised to 1.
func NewWithBuffer[T any](size int) *Bus[T] {
	if size < 1 {
		size = 1
	}
	return &Bus[T]{buffer: size}
}

// Publish sends the event to all subscribers.
func (b *Bus[T]) Publish(e T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribe registers a new subscriber and returns its channel.
func (b *Bus[T]) Subscribe() <-chan T {
	ch := make(chan T, b.buffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Dropped reports how many deliveries were skipped because a subscriber
// was not keeping up.
func (b *Bus[T]) Dropped() uint64 { return b.dropped.Load() }

// Close closes all subscriber channels and clears the list.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
