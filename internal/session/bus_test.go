package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusSubscribeAndPublish(t *testing.T) {
	bus := NewBus()
	var got []string

	unsubscribe := bus.Subscribe(func(e Expired) { got = append(got, e.Reason) })
	bus.NotifyExpired("token expired")

	assert.Equal(t, []string{"token expired"}, got)
	assert.Equal(t, 1, bus.Subscribers())

	unsubscribe()
	unsubscribe()
	bus.NotifyExpired("again")

	assert.Equal(t, []string{"token expired"}, got)
	assert.Equal(t, 0, bus.Subscribers())
}

func TestBusInstancesAreIsolated(t *testing.T) {
	first, second := NewBus(), NewBus()
	var firstCalls, secondCalls int

	first.Subscribe(func(Expired) { firstCalls++ })
	second.Subscribe(func(Expired) { secondCalls++ })

	first.NotifyExpired("401")

	assert.Equal(t, 1, firstCalls)
	assert.Equal(t, 0, secondCalls)
}

func TestBusUnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus()
	calls := 0
	var unsubscribe func()
	unsubscribe = bus.Subscribe(func(Expired) {
		calls++
		unsubscribe()
	})

	bus.NotifyExpired("a")
	bus.NotifyExpired("b")

	assert.Equal(t, 1, calls)
}
