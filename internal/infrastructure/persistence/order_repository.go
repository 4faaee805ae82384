package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*trade.Order, error) {
	return r.findOne(r.db.WithContext(ctx).Where("id = ?", id), fmt.Sprintf("Order %d not found", id))
}

// FindByIDForUpdate finds an order and locks its row until the surrounding transaction ends
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id int64) (*trade.Order, error) {
	return r.findOne(
		r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id),
		fmt.Sprintf("Order %d not found", id),
	)
}

// FindByOrderNumber finds an order by its order number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*trade.Order, error) {
	return r.findOne(
		r.db.WithContext(ctx).Where("order_number = ?", orderNumber),
		fmt.Sprintf("Order %s not found", orderNumber),
	)
}

func (r *GormOrderRepository) findOne(query *gorm.DB, notFoundMsg string) (*trade.Order, error) {
	var model models.OrderModel
	if err := query.Take(&model).Error; err != nil {
		return nil, translateError(err, notFoundMsg)
	}
	return model.ToDomain(), nil
}

// FindByCustomer returns a customer's orders, newest first
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID int64) ([]trade.Order, error) {
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("order_date DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err, "")
	}
	orders := make([]trade.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// CountByProduct counts orders that reference a product
func (r *GormOrderRepository) CountByProduct(ctx context.Context, productID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return 0, translateError(err, "")
	}
	return count, nil
}

// Create inserts an order and assigns its ID. Fails with ConflictError if the order number is taken.
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.WrapDomainError(shared.CodeConflict,
				fmt.Sprintf("Order number %s already exists", order.OrderNumber), err)
		}
		return translateError(err, "")
	}
	order.ID = model.ID
	return nil
}

// UpdateStatus persists the order's current status and update time
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, order *trade.Order) error {
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = time.Now()
	}
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":     order.Status,
			"updated_at": order.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "")
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Order %d not found", order.ID))
	}
	return nil
}

// DeleteByCustomer removes every order of a customer and returns how many were removed
func (r *GormOrderRepository) DeleteByCustomer(ctx context.Context, customerID int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.OrderModel{}, "customer_id = ?", customerID)
	if result.Error != nil {
		return 0, translateError(result.Error, "")
	}
	return result.RowsAffected, nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
