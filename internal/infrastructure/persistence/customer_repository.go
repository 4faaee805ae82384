package persistence

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/partner"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id int64) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).Take(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, fmt.Sprintf("Customer %d not found", id))
	}
	return model.ToDomain(), nil
}

// FindByIDForShare finds a customer and holds a shared row lock until the transaction ends
func (r *GormCustomerRepository) FindByIDForShare(ctx context.Context, id int64) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Take(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, fmt.Sprintf("Customer %d not found", id))
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a customer by email, ignoring case
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, email string) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", partner.NormalizeEmail(email)).
		Take(&model).Error; err != nil {
		return nil, translateError(err, fmt.Sprintf("Customer %s not found", email))
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of customers and the total count
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "")
	}

	var rows []models.CustomerModel
	if err := applyPage(query, filter, CustomerSortFields).Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, "")
	}
	customers := make([]partner.Customer, len(rows))
	for i := range rows {
		customers[i] = *rows[i].ToDomain()
	}
	return customers, total, nil
}

// Create inserts a customer and assigns its ID. Fails with DuplicateEmail if the email is registered.
func (r *GormCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.WrapDomainError(shared.CodeDuplicateEmail,
				fmt.Sprintf("Customer with email %s already exists", customer.Email), err)
		}
		return translateError(err, "")
	}
	customer.ID = model.ID
	return nil
}

// Delete removes a customer. The orders foreign key cascades the delete to the customer's orders.
func (r *GormCustomerRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "")
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Customer %d not found", id))
	}
	return nil
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
