package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erp/contracts/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []string
	fail     bool
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.received = append(h.received, event.EventType())
	if h.fail {
		return errors.New("handler failure")
	}
	return nil
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func testEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "contract", uuid.New(), uuid.New())
	return &e
}

func TestInMemoryEventBus_PublishToSubscribedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"contract.validated"}}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), testEvent("contract.validated")))
	require.NoError(t, bus.Publish(context.Background(), testEvent("contract.cancelled")))

	assert.Equal(t, []string{"contract.validated"}, handler.received)
}

func TestInMemoryEventBus_CatchAllHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), testEvent("a"), testEvent("b")))

	assert.Equal(t, []string{"a", "b"}, handler.received)
}

func TestInMemoryEventBus_FailingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &recordingHandler{types: []string{"x"}, fail: true}
	healthy := &recordingHandler{types: []string{"x"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), testEvent("x")))

	assert.Len(t, failing.received, 1)
	assert.Len(t, healthy.received, 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"x"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), testEvent("x")))

	assert.Empty(t, handler.received)
}
