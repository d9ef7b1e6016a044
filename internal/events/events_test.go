package events

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitRunsAllHandlers(t *testing.T) {
	bus := NewEventBus()
	var calls atomic.Int32

	bus.On(OrderCreated, func(data interface{}) {
		assert.Equal(t, "order-1", data)
		calls.Add(1)
	})
	bus.On(OrderCreated, func(interface{}) { calls.Add(1) })
	bus.On(OrderCancelled, func(interface{}) { calls.Add(100) })

	bus.Emit(OrderCreated, "order-1")
	bus.Wait()

	assert.Equal(t, int32(2), calls.Load())
}

func TestEmitRecoversFromPanics(t *testing.T) {
	bus := NewEventBus()
	var calls atomic.Int32

	bus.On(OperationCreated, func(interface{}) { panic("boom") })
	bus.On(OperationCreated, func(interface{}) { calls.Add(1) })

	assert.NotPanics(t, func() {
		bus.Emit(OperationCreated, nil)
		bus.Wait()
	})
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmitWithoutHandlers(t *testing.T) {
	bus := NewEventBus()
	bus.Emit("nothing.registered", nil)
	bus.Wait()
}
