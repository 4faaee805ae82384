package trade

import (
	"context"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/partner"
	"github.com/storefront/backend/internal/domain/trade"
)

// TransactionalRepositories provides repositories that share one database transaction
type TransactionalRepositories interface {
	Products() catalog.ProductRepository
	Customers() partner.CustomerRepository
	Orders() trade.OrderRepository
}

// TransactionScope runs a unit of work atomically.
// fn's repositories are bound to the transaction; returning an error rolls it back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
