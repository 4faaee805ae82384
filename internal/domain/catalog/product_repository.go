package catalog

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductFilter narrows a product listing
type ProductFilter struct {
	shared.Filter
	CategoryID    *int64
	Uncategorized bool
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	MinRating     *decimal.Decimal
	BestSeller    *bool
	IDs           []int64
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindByIDForShare finds a product and holds a shared lock on its row until the
	// surrounding transaction ends, so it cannot be deleted underneath the caller
	FindByIDForShare(ctx context.Context, id int64) (*Product, error)

	// FindByASIN finds a product by its external catalog code
	FindByASIN(ctx context.Context, asin string) (*Product, error)

	// FindAll finds products matching the filter and returns the total match count
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, int64, error)

	// FindAfter returns up to limit products with ID greater than afterID, ordered by ID
	FindAfter(ctx context.Context, afterID int64, limit int) ([]Product, error)

	// Insert creates a product. Fails with ConflictError if the ASIN exists.
	Insert(ctx context.Context, product *Product) error

	// UpsertByASIN inserts the product or overwrites the row with the same ASIN.
	// An existing description is kept when the incoming one is nil.
	// created reports whether a new row was inserted; product.ID is set either way.
	UpsertByASIN(ctx context.Context, product *Product) (created bool, err error)

	// Update saves changes to an existing product
	Update(ctx context.Context, product *Product) error

	// Delete removes a product. Fails with ReferentialError while any order references it.
	Delete(ctx context.Context, id int64) error
}
