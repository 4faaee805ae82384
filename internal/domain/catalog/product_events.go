package catalog

import (
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeProduct  = "Product"
	AggregateTypeCategory = "Category"
)

// Event type constants
const (
	EventTypeProductUpserted = "ProductUpserted"
	EventTypeProductDeleted  = "ProductDeleted"
	EventTypeCategoryDeleted = "CategoryDeleted"
)

// ProductUpsertedEvent is published after a product is created or changed.
// It carries what the search index needs so handlers do not read the store.
type ProductUpsertedEvent struct {
	shared.BaseDomainEvent
	ProductID   int64  `json:"product_id"`
	ASIN        string `json:"asin"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ReviewCount int    `json:"review_count"`
	CategoryID  *int64 `json:"category_id,omitempty"`
}

// NewProductUpsertedEvent creates a new ProductUpsertedEvent
func NewProductUpsertedEvent(product *Product) *ProductUpsertedEvent {
	title, description := product.SearchText()
	return &ProductUpsertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpserted, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		ASIN:            product.ASIN,
		Title:           title,
		Description:     description,
		ReviewCount:     product.ReviewCount,
		CategoryID:      product.CategoryID,
	}
}

// ProductDeletedEvent is published after a product is removed
type ProductDeletedEvent struct {
	shared.BaseDomainEvent
	ProductID int64  `json:"product_id"`
	ASIN      string `json:"asin"`
}

// NewProductDeletedEvent creates a new ProductDeletedEvent
func NewProductDeletedEvent(product *Product) *ProductDeletedEvent {
	return &ProductDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductDeleted, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		ASIN:            product.ASIN,
	}
}

// CategoryDeletedEvent is published after a category is removed and its products detached
type CategoryDeletedEvent struct {
	shared.BaseDomainEvent
	CategoryID       int64  `json:"category_id"`
	Name             string `json:"name"`
	DetachedProducts int64  `json:"detached_products"`
}

// NewCategoryDeletedEvent creates a new CategoryDeletedEvent
func NewCategoryDeletedEvent(category *Category, detached int64) *CategoryDeletedEvent {
	return &CategoryDeletedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCategoryDeleted, AggregateTypeCategory, category.ID),
		CategoryID:       category.ID,
		Name:             category.Name,
		DetachedProducts: detached,
	}
}
