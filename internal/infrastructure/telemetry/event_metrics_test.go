package telemetry

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestEventMetrics(t *testing.T) (*EventMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewEventMetrics(mp.Meter(MeterName))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func newPlacedOrder(t *testing.T) *trade.Order {
	t.Helper()
	order, err := trade.NewOrder(trade.PlaceOrderInput{
		OrderNumber: "ORD-20261017-AAAA0001",
		CustomerID:  1,
		ProductID:   2,
		Quantity:    3,
		UnitPrice:   valueobject.USD(decimal.RequireFromString("19.99")),
	})
	require.NoError(t, err)
	order.ID = 10
	return order
}

func TestEventMetricsOrderPlaced(t *testing.T) {
	m, reader := newTestEventMetrics(t)
	order := newPlacedOrder(t)

	require.NoError(t, m.Handle(context.Background(), trade.NewOrderPlacedEvent(order)))
	require.NoError(t, m.Handle(context.Background(), trade.NewOrderPlacedEvent(order)))

	metrics := collect(t, reader)

	placed := metrics["storefront.orders.placed"].Data.(metricdata.Sum[int64])
	require.Len(t, placed.DataPoints, 1)
	assert.Equal(t, int64(2), placed.DataPoints[0].Value)

	units := metrics["storefront.orders.units"].Data.(metricdata.Sum[int64])
	assert.Equal(t, int64(6), units.DataPoints[0].Value)

	amount := metrics["storefront.orders.amount"].Data.(metricdata.Sum[float64])
	assert.InDelta(t, 119.94, amount.DataPoints[0].Value, 0.0001)
}

func TestEventMetricsStatusChanged(t *testing.T) {
	m, reader := newTestEventMetrics(t)
	order := newPlacedOrder(t)
	require.NoError(t, order.TransitionTo(trade.OrderStatusProcessing))

	require.NoError(t, m.Handle(context.Background(),
		trade.NewOrderStatusChangedEvent(order, trade.OrderStatusPending)))

	changes := collect(t, reader)["storefront.orders.status_changes"].Data.(metricdata.Sum[int64])
	require.Len(t, changes.DataPoints, 1)
	dp := changes.DataPoints[0]
	assert.Equal(t, int64(1), dp.Value)
	from, _ := dp.Attributes.Value(attribute.Key("from"))
	to, _ := dp.Attributes.Value(attribute.Key("to"))
	assert.Equal(t, "pending", from.AsString())
	assert.Equal(t, "processing", to.AsString())
}

func TestEventMetricsCatalogChanges(t *testing.T) {
	m, reader := newTestEventMetrics(t)

	category, err := catalog.NewCategory("Books")
	require.NoError(t, err)
	category.ID = 4

	require.NoError(t, m.Handle(context.Background(), catalog.NewCategoryDeletedEvent(category, 2)))

	changes := collect(t, reader)["storefront.catalog.changes"].Data.(metricdata.Sum[int64])
	require.Len(t, changes.DataPoints, 1)
	eventType, ok := changes.DataPoints[0].Attributes.Value(attribute.Key("event_type"))
	require.True(t, ok)
	assert.Equal(t, catalog.EventTypeCategoryDeleted, eventType.AsString())
}

func TestEventMetricsSubscribesToDomainEvents(t *testing.T) {
	m, _ := newTestEventMetrics(t)
	assert.ElementsMatch(t, []string{
		trade.EventTypeOrderPlaced,
		trade.EventTypeOrderStatusChanged,
		catalog.EventTypeProductUpserted,
		catalog.EventTypeProductDeleted,
		catalog.EventTypeCategoryDeleted,
	}, m.EventTypes())
}
