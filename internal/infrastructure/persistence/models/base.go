package models

import (
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// Row holds the columns every storefront table shares
type Row struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (r Row) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func rowOf(e shared.BaseEntity) Row {
	return Row{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

// All lists every model with referenced tables first, for auto-migration
func All() []any {
	return []any{&CategoryModel{}, &ProductModel{}, &CustomerModel{}, &OrderModel{}}
}
