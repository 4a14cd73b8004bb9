package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
)

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType, aggregateID string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", aggregateID),
		Data:            "test data",
	}
}

// testHandler implements EventHandler for testing
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panics     bool
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{
		eventTypes: eventTypes,
		handled:    make([]shared.DomainEvent, 0),
	}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panics {
		panic("handler exploded")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler, "TestEvent")

	event := newTestEvent("TestEvent", "q1")
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	require.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
	assert.Equal(t, "q1", handler.getHandled()[0].AggregateID())
}

func TestInMemoryEventBus_SubscribeUsesHandlerEventTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("A", "B")
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A", "1"), newTestEvent("B", "2"), newTestEvent("C", "3")))
	assert.Len(t, handler.getHandled(), 2)
}

func TestInMemoryEventBus_Publish_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	wildcardHandler := newTestHandler() // No event types = wildcard
	bus.Subscribe(wildcardHandler)

	err := bus.Publish(context.Background(), newTestEvent("AnyEventType", "x"))

	require.NoError(t, err)
	assert.Len(t, wildcardHandler.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_HandlerErrorAndPanic(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newTestHandler("TestEvent")
	failing.err = errors.New("handler error")
	panicking := newTestHandler("TestEvent")
	panicking.panics = true
	healthy := newTestHandler("TestEvent")
	bus.Subscribe(failing, "TestEvent")
	bus.Subscribe(panicking, "TestEvent")
	bus.Subscribe(healthy, "TestEvent")

	err := bus.Publish(context.Background(), newTestEvent("TestEvent", "q1"))

	// Should not return error, but continue with other handlers
	require.NoError(t, err)
	assert.Len(t, failing.getHandled(), 1)
	assert.Len(t, panicking.getHandled(), 1)
	assert.Len(t, healthy.getHandled(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler, "TestEvent")

	_ = bus.Publish(context.Background(), newTestEvent("TestEvent", "1"))
	assert.Len(t, handler.getHandled(), 1)

	bus.Unsubscribe(handler)

	_ = bus.Publish(context.Background(), newTestEvent("TestEvent", "2"))
	assert.Len(t, handler.getHandled(), 1) // Still 1, not 2
}

func TestInMemoryEventBus_AsyncDispatch(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsyncDispatch())
	require.NoError(t, bus.Start(context.Background()))

	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler, "TestEvent")

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, newTestEvent("TestEvent", "1"), newTestEvent("TestEvent", "2")))
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	require.NoError(t, bus.Stop(stopCtx))

	assert.Len(t, handler.getHandled(), 2)
}

func TestHandlerRegistry_GetHandlers(t *testing.T) {
	r := NewHandlerRegistry()
	specific := newTestHandler("A")
	wildcard := newTestHandler()
	r.Register(specific, "A")
	r.Register(wildcard)

	assert.Len(t, r.GetHandlers("A"), 2)
	assert.Len(t, r.GetHandlers("B"), 1)

	r.Unregister(specific)
	assert.Len(t, r.GetHandlers("A"), 1)
}
