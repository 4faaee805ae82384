package telemetry

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope for storefront business metrics.
const MeterName = "github.com/storefront/backend"

// EventMetrics counts domain events published on the event bus.
// It subscribes like any other handler, so services stay free of metric calls.
type EventMetrics struct {
	ordersPlaced   metric.Int64Counter
	unitsOrdered   metric.Int64Counter
	revenue        metric.Float64Counter
	statusChanges  metric.Int64Counter
	catalogChanges metric.Int64Counter
}

// NewEventMetrics creates the instruments on the given meter.
func NewEventMetrics(meter metric.Meter) (*EventMetrics, error) {
	m := &EventMetrics{}
	var err error

	if m.ordersPlaced, err = meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Orders placed"),
		metric.WithUnit("{order}"),
	); err != nil {
		return nil, fmt.Errorf("orders placed counter: %w", err)
	}
	if m.unitsOrdered, err = meter.Int64Counter("storefront.orders.units",
		metric.WithDescription("Product units ordered"),
		metric.WithUnit("{unit}"),
	); err != nil {
		return nil, fmt.Errorf("units counter: %w", err)
	}
	if m.revenue, err = meter.Float64Counter("storefront.orders.amount",
		metric.WithDescription("Total amount of placed orders"),
	); err != nil {
		return nil, fmt.Errorf("amount counter: %w", err)
	}
	if m.statusChanges, err = meter.Int64Counter("storefront.orders.status_changes",
		metric.WithDescription("Order status transitions"),
	); err != nil {
		return nil, fmt.Errorf("status counter: %w", err)
	}
	if m.catalogChanges, err = meter.Int64Counter("storefront.catalog.changes",
		metric.WithDescription("Catalog mutations by event type"),
	); err != nil {
		return nil, fmt.Errorf("catalog counter: %w", err)
	}

	return m, nil
}

// EventTypes implements shared.EventHandler
func (m *EventMetrics) EventTypes() []string {
	return []string{
		trade.EventTypeOrderPlaced,
		trade.EventTypeOrderStatusChanged,
		catalog.EventTypeProductUpserted,
		catalog.EventTypeProductDeleted,
		catalog.EventTypeCategoryDeleted,
	}
}

// Handle implements shared.EventHandler
func (m *EventMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.OrderPlacedEvent:
		m.ordersPlaced.Add(ctx, 1)
		m.unitsOrdered.Add(ctx, int64(e.Quantity))
		amount, _ := e.TotalAmount.Float64()
		m.revenue.Add(ctx, amount)
	case *trade.OrderStatusChangedEvent:
		m.statusChanges.Add(ctx, 1, metric.WithAttributes(
			attribute.String("from", string(e.From)),
			attribute.String("to", string(e.To)),
		))
	default:
		m.catalogChanges.Add(ctx, 1, metric.WithAttributes(
			attribute.String("event_type", event.EventType()),
		))
	}
	return nil
}

var _ shared.EventHandler = (*EventMetrics)(nil)
