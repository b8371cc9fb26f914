package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func newTestEvent(eventType string) shared.DomainEvent {
	evt := shared.NewBaseDomainEvent(eventType, "Order", uuid.New())
	return &evt
}

func TestPublishDispatchesToSubscribedHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"trade.order.confirmed"}}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("trade.order.confirmed"))
	require.NoError(t, err)
	assert.Len(t, handler.received, 1)

	err = bus.Publish(context.Background(), newTestEvent("trade.order.cancelled"))
	require.NoError(t, err)
	assert.Len(t, handler.received, 1)
}

func TestPublishWildcardHandlerReceivesAll(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("quote.submitted"),
		newTestEvent("inventory.low_stock_crossed"),
	))
	assert.Len(t, handler.received, 2)
}

func TestPublishSurvivesFailingHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &recordingHandler{types: []string{"quote.replied"}, err: errors.New("handler broke")}
	healthy := &recordingHandler{types: []string{"quote.replied"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("quote.replied"))
	require.NoError(t, err)
	assert.Len(t, healthy.received, 1)
}

func TestPublishSurvivesPanickingHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	panicking := &recordingHandler{types: []string{"quote.accepted"}, panics: true}
	healthy := &recordingHandler{types: []string{"quote.accepted"}}
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("quote.accepted"))
	require.NoError(t, err)
	assert.Len(t, healthy.received, 1)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"quote.submitted"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("quote.submitted")))
	assert.Empty(t, handler.received)
}
