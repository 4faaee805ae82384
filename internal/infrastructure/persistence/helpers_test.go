package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/partner"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/require"
)

// newTestDatabase opens a fresh in-memory sqlite database with the schema applied
func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        ":memory:",
		LogLevel:    "silent",
		LockTimeout: time.Second,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func seedCategory(t *testing.T, db *Database, name string) *catalog.Category {
	t.Helper()
	c, err := catalog.NewCategory(name)
	require.NoError(t, err)
	require.NoError(t, NewGormCategoryRepository(db.DB).Create(context.Background(), c))
	return c
}

func seedProduct(t *testing.T, db *Database, asin, title, price string, categoryID *int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductRecord{
		ASIN:        asin,
		Title:       title,
		Price:       decPtr(price),
		ReviewCount: 10,
		CategoryID:  categoryID,
	})
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db.DB).Insert(context.Background(), p))
	return p
}

func seedCustomer(t *testing.T, db *Database, email string) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(partner.CustomerRecord{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
	})
	require.NoError(t, err)
	require.NoError(t, NewGormCustomerRepository(db.DB).Create(context.Background(), c))
	return c
}

func seedOrder(t *testing.T, db *Database, number string, customerID, productID int64) *trade.Order {
	t.Helper()
	o, err := trade.NewOrder(trade.PlaceOrderInput{
		OrderNumber: number,
		CustomerID:  customerID,
		ProductID:   productID,
		Quantity:    2,
		UnitPrice:   valueobject.USD(decimal.RequireFromString("19.99")),
	})
	require.NoError(t, err)
	require.NoError(t, NewGormOrderRepository(db.DB).Create(context.Background(), o))
	return o
}

func newPendingOrder(t *testing.T, number string) *trade.Order {
	t.Helper()
	o, err := trade.NewOrder(trade.PlaceOrderInput{
		OrderNumber: number,
		CustomerID:  1,
		ProductID:   1,
		Quantity:    1,
		UnitPrice:   valueobject.USD(decimal.NewFromInt(5)),
	})
	require.NoError(t, err)
	return o
}
