package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CatalogService handles category and product operations
type CatalogService struct {
	categoryRepo   catalog.CategoryRepository
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher that carries catalog changes to the search index
func (s *CatalogService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateProduct inserts a new product. Fails with ConflictError if the ASIN exists.
func (s *CatalogService) CreateProduct(ctx context.Context, req ProductRequest) (*ProductResponse, error) {
	rec, err := s.prepareRecord(ctx, req.ToRecord())
	if err != nil {
		return nil, err
	}
	product, err := catalog.NewProduct(rec)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Insert(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.Int64("product_id", product.ID),
		zap.String("asin", product.ASIN),
	)
	s.publish(ctx, catalog.NewProductUpsertedEvent(product))
	response := ToProductResponse(product)
	return &response, nil
}

// UpsertProduct inserts the product or overwrites the one with the same ASIN.
// A nil description leaves an existing description in place.
func (s *CatalogService) UpsertProduct(ctx context.Context, req ProductRequest) (*UpsertProductResponse, error) {
	rec, err := s.prepareRecord(ctx, req.ToRecord())
	if err != nil {
		return nil, err
	}
	product, created, err := s.upsert(ctx, rec)
	if err != nil {
		return nil, err
	}
	return &UpsertProductResponse{Product: ToProductResponse(product), Created: created}, nil
}

// UpsertRecord is UpsertProduct for callers that already hold a resolved domain record
func (s *CatalogService) UpsertRecord(ctx context.Context, rec catalog.ProductRecord) (*catalog.Product, bool, error) {
	rec, err := s.prepareRecord(ctx, rec)
	if err != nil {
		return nil, false, err
	}
	return s.upsert(ctx, rec)
}

func (s *CatalogService) upsert(ctx context.Context, rec catalog.ProductRecord) (*catalog.Product, bool, error) {
	product, err := catalog.NewProduct(rec)
	if err != nil {
		return nil, false, err
	}
	created, err := s.productRepo.UpsertByASIN(ctx, product)
	if err != nil {
		return nil, false, err
	}

	s.logger.Debug("product upserted",
		zap.Int64("product_id", product.ID),
		zap.String("asin", product.ASIN),
		zap.Bool("created", created),
	)
	s.publish(ctx, catalog.NewProductUpsertedEvent(product))
	return product, created, nil
}

// GetProduct retrieves a product by ID, with its category name
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, product)
}

// GetProductByASIN retrieves a product by its external catalog code
func (s *CatalogService) GetProductByASIN(ctx context.Context, asin string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByASIN(ctx, asin)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, product)
}

// ListProducts returns a filtered page of products
func (s *CatalogService) ListProducts(ctx context.Context, filter ProductListFilter) (shared.Paginated[ProductResponse], error) {
	base := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}.WithDefaults()

	products, total, err := s.productRepo.FindAll(ctx, filter.toDomain(base))
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	return shared.NewPaginated(ToProductResponses(products), total, base), nil
}

// SetDescription is the enrichment step: it sets or, given nil or blank text, clears the description
func (s *CatalogService) SetDescription(ctx context.Context, id int64, req SetDescriptionRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.SetDescription(req.Description)
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product description updated",
		zap.Int64("product_id", id),
		zap.Bool("cleared", product.Description == nil),
	)
	s.publish(ctx, catalog.NewProductUpsertedEvent(product))
	response := ToProductResponse(product)
	return &response, nil
}

// DeleteProduct removes a product. Fails with ReferentialError while any order references it.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("product deleted",
		zap.Int64("product_id", id),
		zap.String("asin", product.ASIN),
	)
	s.publish(ctx, catalog.NewProductDeletedEvent(product))
	return nil
}

// prepareRecord validates rec and resolves its category reference.
// Validation runs first so a rejected record never creates a category.
func (s *CatalogService) prepareRecord(ctx context.Context, rec catalog.ProductRecord) (catalog.ProductRecord, error) {
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		return rec, err
	}

	switch {
	case rec.CategoryName != "":
		category, created, err := s.categoryRepo.EnsureByName(ctx, rec.CategoryName)
		if err != nil {
			return rec, err
		}
		if created {
			s.logger.Info("category created implicitly",
				zap.Int64("category_id", category.ID),
				zap.String("name", category.Name),
			)
		}
		rec.CategoryID = &category.ID
		rec.CategoryName = ""
	case rec.CategoryID != nil:
		if _, err := s.categoryRepo.FindByID(ctx, *rec.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return rec, shared.NewDomainError(shared.CodeReferential,
					fmt.Sprintf("Category %d does not exist", *rec.CategoryID))
			}
			return rec, err
		}
	}
	return rec, nil
}

func (s *CatalogService) detail(ctx context.Context, product *catalog.Product) (*ProductResponse, error) {
	response := ToProductResponse(product)
	if product.CategoryID != nil {
		category, err := s.categoryRepo.FindByID(ctx, *product.CategoryID)
		switch {
		case err == nil:
			response.CategoryName = category.Name
		case !errors.Is(err, shared.ErrNotFound):
			return nil, err
		}
	}
	return &response, nil
}

func (s *CatalogService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish catalog events", zap.Error(err))
	}
}
