package eventbus

import (
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 32

type settings struct{ buffer int }

// Option tunes a TypedBus.
type Option func(*settings)

// WithBuffer overrides DefaultBuffer. Non-positive values are ignored.
func WithBuffer(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.buffer = n
		}
	}
}

// TypedBus delivers each published T to every subscriber. Publish never
// waits: a subscriber whose buffer is full misses the event and Dropped
// grows by one.
type TypedBus[T any] struct {
	buffer int

	mu     sync.RWMutex
	subs   map[<-chan T]chan T
	closed bool

	dropped atomic.Uint64
}

func NewTyped[T any](opts ...Option) *TypedBus[T] {
	s := settings{buffer: DefaultBuffer}
	for _, o := range opts {
		o(&s)
	}
	return &TypedBus[T]{buffer: s.buffer, subs: make(map[<-chan T]chan T)}
}

func (b *TypedBus[T]) Publish(ev T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribe returns a new receive channel. After Close it is already closed.
func (b *TypedBus[T]) Subscribe() <-chan T {
	ch := make(chan T, b.buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = ch
	return ch
}

// Unsubscribe closes sub. Unknown or already closed channels are ignored.
func (b *TypedBus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(ch)
	}
}

func (b *TypedBus[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped counts deliveries skipped on full subscribers.
func (b *TypedBus[T]) Dropped() uint64 { return b.dropped.Load() }

// Close closes every subscriber channel. Later publishes are no-ops.
func (b *TypedBus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub, ch := range b.subs {
		delete(b.subs, sub)
		close(ch)
	}
}
