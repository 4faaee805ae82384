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

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id int64) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).Take(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, fmt.Sprintf("Category %d not found", id))
	}
	return model.ToDomain(), nil
}

// FindByName finds a category by name, ignoring case
func (r *GormCategoryRepository) FindByName(ctx context.Context, name string) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).
		Where("name_key = ?", catalog.CategoryNameKey(name)).
		Take(&model).Error; err != nil {
		return nil, translateError(err, fmt.Sprintf("Category %q not found", name))
	}
	return model.ToDomain(), nil
}

// FindAll returns every category ordered by ID
func (r *GormCategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err, "")
	}
	categories := make([]catalog.Category, len(rows))
	for i := range rows {
		categories[i] = *rows[i].ToDomain()
	}
	return categories, nil
}

// Create inserts a new category and assigns its ID
func (r *GormCategoryRepository) Create(ctx context.Context, category *catalog.Category) error {
	model := models.CategoryModelFromDomain(category)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.WrapDomainError(shared.CodeDuplicateName,
				fmt.Sprintf("Category %q already exists", category.Name), err)
		}
		return translateError(err, "")
	}
	category.ID = model.ID
	return nil
}

// EnsureByName returns the category with the given name, inserting it if absent.
// A concurrent insert of the same name is absorbed by ON CONFLICT DO NOTHING and a re-read.
func (r *GormCategoryRepository) EnsureByName(ctx context.Context, name string) (*catalog.Category, bool, error) {
	existing, err := r.FindByName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}

	category, err := catalog.NewCategory(name)
	if err != nil {
		return nil, false, err
	}
	model := models.CategoryModelFromDomain(category)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name_key"}}, DoNothing: true}).
		Create(model)
	if result.Error != nil {
		return nil, false, translateError(result.Error, "")
	}
	if result.RowsAffected == 0 {
		existing, err := r.FindByName(ctx, name)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	category.ID = model.ID
	return category, true, nil
}

// Delete removes a category after clearing the reference on its products.
// Returns the number of products whose category was cleared.
func (r *GormCategoryRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var detached int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.CategoryModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&model, "id = ?", id).Error; err != nil {
			return translateError(err, fmt.Sprintf("Category %d not found", id))
		}

		result := tx.Model(&models.ProductModel{}).
			Where("category_id = ?", id).
			Updates(map[string]any{"category_id": nil, "updated_at": time.Now()})
		if result.Error != nil {
			return result.Error
		}
		detached = result.RowsAffected

		return tx.Delete(&models.CategoryModel{}, "id = ?", id).Error
	})
	if err != nil {
		return 0, translateError(err, "")
	}
	return detached, nil
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
