package eventbus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish("hello")
	assert.Equal(t, "hello", <-ch)

	bus.Unsubscribe(ch)
	assert.Zero(t, bus.Subscribers())
	_, ok := <-ch
	assert.False(t, ok)
	bus.Unsubscribe(ch)
}

func TestBusFanOut(t *testing.T) {
	bus := NewTyped[int]()
	a := bus.Subscribe()
	b := bus.Subscribe()
	bus.Publish(7)
	assert.Equal(t, 7, <-a)
	assert.Equal(t, 7, <-b)
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	for _, ch := range []<-chan Event{ch1, ch2} {
		_, ok := <-ch
		assert.False(t, ok)
	}
	assert.Zero(t, bus.Subscribers())
	late := bus.Subscribe()
	_, ok := <-late
	assert.False(t, ok, "subscribe after close returns a closed channel")
	bus.Publish("ignored")
	bus.Close()
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := NewTyped[float64]()
	ch := bus.Subscribe()
	bus.Close()
	assert.NotPanics(t, func() { bus.Unsubscribe(ch) })
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := NewTyped[int](WithBuffer(2))
	ch := bus.Subscribe()
	for i := 0; i < 5; i++ {
		bus.Publish(i)
	}
	require.Len(t, ch, 2)
	assert.Equal(t, uint64(3), bus.Dropped())
	assert.Equal(t, 0, <-ch)
	assert.Equal(t, 1, <-ch)
}

func TestBusConcurrentPublish(t *testing.T) {
	bus := NewTyped[int](WithBuffer(1000))
	ch := bus.Subscribe()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				bus.Publish(j)
			}
		}()
	}
	wg.Wait()
	assert.Len(t, ch, 500)
	assert.Zero(t, bus.Dropped())
}
