package catalog

import (
	"context"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// FindByID finds a category by its ID
	FindByID(ctx context.Context, id int64) (*Category, error)

	// FindByName finds a category by name, ignoring case
	FindByName(ctx context.Context, name string) (*Category, error)

	// FindAll returns every category ordered by ID
	FindAll(ctx context.Context) ([]Category, error)

	// Create inserts a new category. Fails with DuplicateName if the folded name is taken.
	Create(ctx context.Context, category *Category) error

	// EnsureByName returns the category with the given name, inserting it if absent.
	// created reports whether this call inserted the row.
	EnsureByName(ctx context.Context, name string) (category *Category, created bool, err error)

	// Delete removes a category and clears the reference on every product that pointed at it.
	// It returns the number of products whose category was cleared.
	Delete(ctx context.Context, id int64) (int64, error)
}
