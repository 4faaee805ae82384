package trade

import (
	"context"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id int64) (*Order, error)

	// FindByIDForUpdate finds an order and locks its row until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id int64) (*Order, error)

	// FindByOrderNumber finds an order by its external reference
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindByCustomer returns a customer's orders, newest first
	FindByCustomer(ctx context.Context, customerID int64) ([]Order, error)

	// CountByProduct counts orders that reference a product
	CountByProduct(ctx context.Context, productID int64) (int64, error)

	// Create inserts an order. Fails with ConflictError if the order number is taken.
	Create(ctx context.Context, order *Order) error

	// UpdateStatus persists the order's current status and update time
	UpdateStatus(ctx context.Context, order *Order) error

	// DeleteByCustomer removes every order of a customer and returns how many were removed
	DeleteByCustomer(ctx context.Context, customerID int64) (int64, error)
}
