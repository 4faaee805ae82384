package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string, aggregateID int64) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Product", aggregateID),
		Data:            "test data",
	}
}

// testHandler implements EventHandler for testing
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
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
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) setError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	log := zap.NewNop()
	bus := NewInMemoryEventBus(log)

	handler := newTestHandler("ProductUpserted")
	bus.Subscribe(handler, "ProductUpserted")

	event := newTestEvent("ProductUpserted", 1)
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_Publish_MultipleEvents(t *testing.T) {
	log := zap.NewNop()
	bus := NewInMemoryEventBus(log)

	handler := newTestHandler("ProductUpserted")
	bus.Subscribe(handler, "ProductUpserted")

	event1 := newTestEvent("ProductUpserted", 2)
	event2 := newTestEvent("ProductUpserted", 3)
	err := bus.Publish(context.Background(), event1, event2)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 2)
}

func TestInMemoryEventBus_Publish_MultipleHandlers(t *testing.T) {
	log := zap.NewNop()
	bus := NewInMemoryEventBus(log)

	handler1 := newTestHandler("ProductUpserted")
	handler2 := newTestHandler("ProductUpserted")
	bus.Subscribe(handler1, "ProductUpserted")
	bus.Subscribe(handler2, "ProductUpserted")

	event := newTestEvent("ProductUpserted", 4)
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler1.getHandled(), 1)
	assert.Len(t, handler2.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_WildcardHandler(t *testing.T) {
	log := zap.NewNop()
	bus := NewInMemoryEventBus(log)

	wildcardHandler := newTestHandler() // No event types = wildcard
	bus.Subscribe(wildcardHandler)

	event := newTestEvent("AnyEventType", 5)
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, wildcardHandler.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_HandlerError(t *testing.T) {
	log := zap.NewNop()
	bus := NewInMemoryEventBus(log)

	handler1 := newTestHandler("ProductUpserted")
	handler1.setError(errors.New("handler error"))
	handler2 := newTestHandler("ProductUpserted")
	bus.Subscribe(handler1, "ProductUpserted")
	bus.Subscribe(handler2, "ProductUpserted")

	event := newTestEvent("ProductUpserted", 6)
	err := bus.Publish(context.Background(), event)

	// Should not return error, but continue with other handlers
	require.NoError(t, err)
	assert.Len(t, handler1.getHandled(), 1)
	assert.Len(t, handler2.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_NoMatchingHandlers(t *testing.T) {
	log := zap.NewNop()
	bus := NewInMemoryEventBus(log)

	handler := newTestHandler("ProductDeleted")
	bus.Subscribe(handler, "ProductDeleted")

	event := newTestEvent("ProductUpserted", 7)
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 0)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	log := zap.NewNop()
	bus := NewInMemoryEventBus(log)

	handler := newTestHandler("ProductUpserted")
	bus.Subscribe(handler, "ProductUpserted")

	event1 := newTestEvent("ProductUpserted", 8)
	_ = bus.Publish(context.Background(), event1)
	assert.Len(t, handler.getHandled(), 1)

	bus.Unsubscribe(handler)

	event2 := newTestEvent("ProductUpserted", 9)
	_ = bus.Publish(context.Background(), event2)
	assert.Len(t, handler.getHandled(), 1) // Still 1, not 2
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	log := zap.NewNop()
	bus := NewInMemoryEventBus(log)

	ctx := context.Background()
	err := bus.Start(ctx)
	require.NoError(t, err)

	// Can still publish after start
	handler := newTestHandler("ProductUpserted")
	bus.Subscribe(handler, "ProductUpserted")
	event := newTestEvent("ProductUpserted", 10)
	err = bus.Publish(ctx, event)
	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = bus.Stop(ctx)
	require.NoError(t, err)
}

func TestInMemoryEventBus_Publish_HandlerPanic(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	bus.Subscribe(panicHandler{}, "ProductUpserted")
	survivor := newTestHandler("ProductUpserted")
	bus.Subscribe(survivor, "ProductUpserted")

	ctx := logger.ContextWithRequestID(context.Background(), "req-5")
	require.NoError(t, bus.Publish(ctx, newTestEvent("ProductUpserted", 42)))
	assert.Len(t, survivor.getHandled(), 1)

	logs := recorded.FilterMessage("handler failed to process event").All()
	require.Len(t, logs, 1)
	assert.Equal(t, "req-5", logs[0].ContextMap()["request_id"])
	assert.Equal(t, "handler panicked: boom", logs[0].ContextMap()["error"])
}

func TestInMemoryEventBus_Async_DeliversAfterStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsyncDispatch(16))
	handler := newTestHandler("ProductUpserted")
	bus.Subscribe(handler)

	require.NoError(t, bus.Start(context.Background()))
	for i := int64(1); i <= 10; i++ {
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("ProductUpserted", i)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))

	handled := handler.getHandled()
	require.Len(t, handled, 10)
	// a single worker preserves publish order
	for i, event := range handled {
		assert.Equal(t, int64(i+1), event.AggregateID())
	}
}

func TestInMemoryEventBus_Async_RejectsWhenStopped(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsyncDispatch(1))

	err := bus.Publish(context.Background(), newTestEvent("ProductUpserted", 1))
	assert.ErrorIs(t, err, ErrBusStopped)

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))

	err = bus.Publish(context.Background(), newTestEvent("ProductUpserted", 2))
	assert.ErrorIs(t, err, ErrBusStopped)
}

func TestInMemoryEventBus_Async_DetachesPublisherContext(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsyncDispatch(4))
	handler := &ctxRecordingHandler{}
	bus.Subscribe(handler, "ProductUpserted")
	require.NoError(t, bus.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, newTestEvent("ProductUpserted", 7)))
	cancel()

	require.NoError(t, bus.Stop(context.Background()))
	require.Len(t, handler.errs, 1)
	assert.NoError(t, handler.errs[0])
}

type panicHandler struct{}

func (panicHandler) Handle(context.Context, shared.DomainEvent) error { panic("boom") }
func (panicHandler) EventTypes() []string                             { return nil }

type ctxRecordingHandler struct {
	mu   sync.Mutex
	errs []error
}

func (h *ctxRecordingHandler) Handle(ctx context.Context, _ shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, ctx.Err())
	return nil
}

func (h *ctxRecordingHandler) EventTypes() []string { return nil }
