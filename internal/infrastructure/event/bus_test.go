package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atelier-erp/backend/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
	}
}

func TestInMemoryEventBus_PublishToSubscriber(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"OrderConfirmed"}}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("OrderConfirmed"))
	require.NoError(t, err)
	require.Len(t, handler.received, 1)
	assert.Equal(t, "OrderConfirmed", handler.received[0].EventType())
}

func TestInMemoryEventBus_TypeFiltering(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"OrderConfirmed"}}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("StockIncreased"))
	require.NoError(t, err)
	assert.Empty(t, handler.received)
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(),
		newTestEvent("OrderConfirmed"),
		newTestEvent("StockIncreased"),
	)
	require.NoError(t, err)
	assert.Len(t, handler.received, 2)
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &recordingHandler{types: []string{"OrderConfirmed"}, err: errors.New("boom")}
	healthy := &recordingHandler{types: []string{"OrderConfirmed"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("OrderConfirmed"))
	require.NoError(t, err)
	assert.Len(t, healthy.received, 1)
}

func TestInMemoryEventBus_HandlerPanicRecovered(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	panicking := &recordingHandler{types: []string{"OrderConfirmed"}, panics: true}
	healthy := &recordingHandler{types: []string{"OrderConfirmed"}}
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent("OrderConfirmed"))
	})
	assert.Len(t, healthy.received, 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"OrderConfirmed"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("OrderConfirmed"))
	require.NoError(t, err)
	assert.Empty(t, handler.received)
}
