package persistence

import (
	"context"

	appexport "github.com/storefront/backend/internal/application/export"
	"github.com/storefront/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormSnapshotScope runs catalog reads inside a single read-only snapshot transaction
type GormSnapshotScope struct {
	db *Database
}

// NewGormSnapshotScope creates a new GormSnapshotScope
func NewGormSnapshotScope(db *Database) *GormSnapshotScope {
	return &GormSnapshotScope{db: db}
}

// Read calls fn with repositories bound to one point-in-time view of the catalog
func (s *GormSnapshotScope) Read(ctx context.Context, fn func(repos appexport.SnapshotRepositories) error) error {
	return s.db.ReadSnapshot(ctx, func(tx *gorm.DB) error {
		return fn(&gormSnapshotRepositories{tx: tx})
	})
}

type gormSnapshotRepositories struct {
	tx *gorm.DB
}

func (r *gormSnapshotRepositories) Categories() catalog.CategoryRepository {
	return NewGormCategoryRepository(r.tx)
}

func (r *gormSnapshotRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

var _ appexport.SnapshotScope = (*GormSnapshotScope)(nil)
