package catalog

import (
	"context"

	"github.com/storefront/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// CreateCategory creates a category. Fails with DuplicateName if the name is taken, ignoring case.
func (s *CatalogService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("category created",
		zap.Int64("category_id", category.ID),
		zap.String("name", category.Name),
	)
	response := ToCategoryResponse(category)
	return &response, nil
}

// GetCategory retrieves a category by ID
func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category)
	return &response, nil
}

// ListCategories returns every category ordered by ID
func (s *CatalogService) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses, nil
}

// DeleteCategory removes a category. Products that referenced it stay, with no category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) (*DeleteCategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detached, err := s.categoryRepo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("category deleted",
		zap.Int64("category_id", id),
		zap.Int64("products_detached", detached),
	)
	s.publish(ctx, catalog.NewCategoryDeletedEvent(category, detached))
	return &DeleteCategoryResponse{CategoryID: id, ProductsDetached: detached}, nil
}
