package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain[T any](ch <-chan T) []T {
	var out []T
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, v)
		default:
			return out
		}
	}
}

func TestBus_PublishOrder(t *testing.T) {
	bus := NewBus[int](8)
	defer bus.Close()

	sub := bus.Subscribe()
	for i := 0; i < 5; i++ {
		bus.Publish(i)
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, drain(sub.C))
}

func TestBus_Multicast(t *testing.T) {
	bus := NewBus[string](8)
	defer bus.Close()

	a := bus.Subscribe()
	b := bus.Subscribe()
	require.Equal(t, 2, bus.SubscriberCount())

	bus.Publish("x")
	bus.Publish("y")

	assert.Equal(t, []string{"x", "y"}, drain(a.C))
	assert.Equal(t, []string{"x", "y"}, drain(b.C))
}

func TestBus_NoReplayForLateSubscriber(t *testing.T) {
	bus := NewBus[int](8)
	defer bus.Close()

	bus.Publish(1)
	bus.Publish(2)

	late := bus.Subscribe()
	bus.Publish(3)

	assert.Equal(t, []int{3}, drain(late.C))
}

func TestBus_SlowConsumerDropsOldest(t *testing.T) {
	bus := NewBus[int](2)
	defer bus.Close()

	sub := bus.Subscribe()

	// Never blocks even with a full buffer.
	for i := 0; i < 10; i++ {
		bus.Publish(i)
	}

	got := drain(sub.C)
	require.Len(t, got, 2)
	// The newest event survives.
	assert.Equal(t, 9, got[len(got)-1])
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus[int](8)
	defer bus.Close()

	sub := bus.Subscribe()
	bus.Unsubscribe(sub)
	assert.Equal(t, 0, bus.SubscriberCount())

	_, open := <-sub.C
	assert.False(t, open)

	// Double unsubscribe is harmless.
	bus.Unsubscribe(sub)
}

func TestBus_Close(t *testing.T) {
	bus := NewBus[int](8)
	sub := bus.Subscribe()

	bus.Close()
	bus.Publish(1)

	_, open := <-sub.C
	assert.False(t, open)

	// Subscribing after close yields a closed subscription.
	after := bus.Subscribe()
	_, open = <-after.C
	assert.False(t, open)
}
