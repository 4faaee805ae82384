package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	return r.findOne(r.db.WithContext(ctx).Where("id = ?", id), fmt.Sprintf("Product %d not found", id))
}

// FindByIDForShare finds a product and holds a shared row lock until the transaction ends
func (r *GormProductRepository) FindByIDForShare(ctx context.Context, id int64) (*catalog.Product, error) {
	return r.findOne(
		r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "SHARE"}).Where("id = ?", id),
		fmt.Sprintf("Product %d not found", id),
	)
}

// FindByASIN finds a product by its ASIN
func (r *GormProductRepository) FindByASIN(ctx context.Context, asin string) (*catalog.Product, error) {
	return r.findOne(r.db.WithContext(ctx).Where("asin = ?", asin), fmt.Sprintf("Product %s not found", asin))
}

func (r *GormProductRepository) findOne(query *gorm.DB, notFoundMsg string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := query.Take(&model).Error; err != nil {
		return nil, translateError(err, notFoundMsg)
	}
	return model.ToDomain(), nil
}

// FindAll finds products matching the filter and returns the total match count
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "")
	}

	var rows []models.ProductModel
	if err := applyPage(query, filter.Filter, ProductSortFields).Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, "")
	}
	return toDomainProducts(rows), total, nil
}

// FindAfter returns up to limit products with ID greater than afterID, ordered by ID
func (r *GormProductRepository) FindAfter(ctx context.Context, afterID int64, limit int) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, translateError(err, "")
	}
	return toDomainProducts(rows), nil
}

// Insert creates a product and assigns its ID. Fails with ConflictError if the ASIN exists.
func (r *GormProductRepository) Insert(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.WrapDomainError(shared.CodeConflict,
				fmt.Sprintf("Product with ASIN %s already exists", product.ASIN), err)
		}
		return translateError(err, "")
	}
	product.ID = model.ID
	return nil
}

// UpsertByASIN inserts the product or overwrites the row with the same ASIN.
// An existing description survives when the incoming one is nil.
func (r *GormProductRepository) UpsertByASIN(ctx context.Context, product *catalog.Product) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ProductModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("asin = ?", product.ASIN).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			model := models.ProductModelFromDomain(product)
			result := tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "asin"}}, DoNothing: true}).
				Create(model)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 1 {
				product.ID = model.ID
				created = true
				return nil
			}
			// a concurrent writer inserted the ASIN first; overwrite its row
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("asin = ?", product.ASIN).Take(&existing).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		if product.Description == nil {
			product.Description = existing.Description
		}
		product.ID = existing.ID
		product.CreatedAt = existing.CreatedAt
		return r.overwrite(tx, product)
	})
	if err != nil {
		return false, translateError(err, "")
	}
	return created, nil
}

// Update saves every writable field of an existing product
func (r *GormProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	if err := r.overwrite(r.db.WithContext(ctx), product); err != nil {
		return translateError(err, fmt.Sprintf("Product %d not found", product.ID))
	}
	return nil
}

func (r *GormProductRepository) overwrite(tx *gorm.DB, product *catalog.Product) error {
	product.UpdatedAt = time.Now()
	model := models.ProductModelFromDomain(product)
	result := tx.Model(&models.ProductModel{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"title":                model.Title,
			"image_url":            model.ImageURL,
			"product_url":          model.ProductURL,
			"rating":               model.Rating,
			"review_count":         model.ReviewCount,
			"price":                model.Price,
			"list_price":           model.ListPrice,
			"category_id":          model.CategoryID,
			"is_best_seller":       model.IsBestSeller,
			"bought_in_last_month": model.BoughtInLastMonth,
			"description":          model.Description,
			"updated_at":           model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a product. Fails with ReferentialError while any order references it.
// The row lock keeps a concurrent order from slipping in between the count and the delete.
func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.ProductModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&model, "id = ?", id).Error; err != nil {
			return translateError(err, fmt.Sprintf("Product %d not found", id))
		}

		var orders int64
		if err := tx.Model(&models.OrderModel{}).Where("product_id = ?", id).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return shared.NewDomainError(shared.CodeReferential,
				fmt.Sprintf("Product %s is referenced by %d order(s) and cannot be deleted", model.ASIN, orders))
		}

		return tx.Delete(&models.ProductModel{}, "id = ?", id).Error
	})
	return translateError(err, "")
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.Uncategorized {
		query = query.Where("category_id IS NULL")
	} else if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.MinRating != nil {
		query = query.Where("rating >= ?", *filter.MinRating)
	}
	if filter.BestSeller != nil {
		query = query.Where("is_best_seller = ?", *filter.BestSeller)
	}
	return query
}

func toDomainProducts(rows []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
