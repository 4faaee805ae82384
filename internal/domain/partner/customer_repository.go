package partner

import (
	"context"

	"github.com/storefront/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by its ID
	FindByID(ctx context.Context, id int64) (*Customer, error)

	// FindByIDForShare finds a customer and holds a shared row lock until the transaction ends
	FindByIDForShare(ctx context.Context, id int64) (*Customer, error)

	// FindByEmail finds a customer by email, ignoring case
	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// FindAll returns a page of customers and the total count
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, int64, error)

	// Create inserts a customer. Fails with DuplicateEmail if the email is registered.
	Create(ctx context.Context, customer *Customer) error

	// Delete removes a customer. Orders of the customer are removed with it.
	Delete(ctx context.Context, id int64) error
}
