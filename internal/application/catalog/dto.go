package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// ==================== Category DTOs ====================

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ToCategoryResponse converts a domain Category to a response
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
	}
}

// DeleteCategoryResponse reports what a category deletion changed
type DeleteCategoryResponse struct {
	CategoryID       int64 `json:"category_id"`
	ProductsDetached int64 `json:"products_detached"`
}

// ==================== Product DTOs ====================

// ProductRequest carries every writable product field.
// CategoryName is resolved to a category, created if absent, and wins over CategoryID.
type ProductRequest struct {
	ASIN              string           `json:"asin" binding:"required,asin"`
	Title             string           `json:"title" binding:"required,max=500"`
	ImageURL          string           `json:"image_url" binding:"max=500"`
	ProductURL        string           `json:"product_url" binding:"max=500"`
	Rating            *decimal.Decimal `json:"rating"`
	ReviewCount       int              `json:"review_count" binding:"min=0"`
	Price             *decimal.Decimal `json:"price"`
	ListPrice         *decimal.Decimal `json:"list_price"`
	CategoryID        *int64           `json:"category_id"`
	CategoryName      string           `json:"category_name" binding:"max=255"`
	IsBestSeller      bool             `json:"is_best_seller"`
	BoughtInLastMonth int              `json:"bought_in_last_month" binding:"min=0"`
	Description       *string          `json:"description"`
}

// ToRecord converts the request to a domain record
func (r ProductRequest) ToRecord() catalog.ProductRecord {
	return catalog.ProductRecord{
		ASIN:              r.ASIN,
		Title:             r.Title,
		ImageURL:          r.ImageURL,
		ProductURL:        r.ProductURL,
		Rating:            r.Rating,
		ReviewCount:       r.ReviewCount,
		Price:             r.Price,
		ListPrice:         r.ListPrice,
		CategoryID:        r.CategoryID,
		CategoryName:      r.CategoryName,
		IsBestSeller:      r.IsBestSeller,
		BoughtInLastMonth: r.BoughtInLastMonth,
		Description:       r.Description,
	}
}

// SetDescriptionRequest sets or clears a product description
type SetDescriptionRequest struct {
	Description *string `json:"description"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                int64            `json:"id"`
	ASIN              string           `json:"asin"`
	Title             string           `json:"title"`
	ImageURL          string           `json:"image_url,omitempty"`
	ProductURL        string           `json:"product_url,omitempty"`
	Rating            *decimal.Decimal `json:"rating"`
	ReviewCount       int              `json:"review_count"`
	Price             *decimal.Decimal `json:"price"`
	ListPrice         *decimal.Decimal `json:"list_price"`
	CategoryID        *int64           `json:"category_id"`
	CategoryName      string           `json:"category_name,omitempty"`
	IsBestSeller      bool             `json:"is_best_seller"`
	BoughtInLastMonth int              `json:"bought_in_last_month"`
	Description       *string          `json:"description"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// ToProductResponse converts a domain Product to a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		ASIN:              p.ASIN,
		Title:             p.Title,
		ImageURL:          p.ImageURL,
		ProductURL:        p.ProductURL,
		Rating:            p.Rating,
		ReviewCount:       p.ReviewCount,
		Price:             p.Price,
		ListPrice:         p.ListPrice,
		CategoryID:        p.CategoryID,
		IsBestSeller:      p.IsBestSeller,
		BoughtInLastMonth: p.BoughtInLastMonth,
		Description:       p.Description,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain Products to responses
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// UpsertProductResponse reports the stored product and whether it was newly created
type UpsertProductResponse struct {
	Product ProductResponse `json:"product"`
	Created bool            `json:"created"`
}

// ProductAttributeFilter holds the attribute filters shared by listing and search.
// Query binding skips these fields; the HTTP layer parses them from the query string.
type ProductAttributeFilter struct {
	CategoryID    *int64           `form:"-" json:"category_id"`
	Uncategorized bool             `form:"-" json:"uncategorized"`
	MinPrice      *decimal.Decimal `form:"-" json:"min_price"`
	MaxPrice      *decimal.Decimal `form:"-" json:"max_price"`
	MinRating     *decimal.Decimal `form:"-" json:"min_rating"`
	BestSeller    *bool            `form:"-" json:"best_seller"`
}

// IsEmpty reports whether no attribute filter is set
func (f ProductAttributeFilter) IsEmpty() bool {
	return f.CategoryID == nil && !f.Uncategorized && f.MinPrice == nil &&
		f.MaxPrice == nil && f.MinRating == nil && f.BestSeller == nil
}

func (f ProductAttributeFilter) toDomain(base shared.Filter) catalog.ProductFilter {
	return catalog.ProductFilter{
		Filter:        base,
		CategoryID:    f.CategoryID,
		Uncategorized: f.Uncategorized,
		MinPrice:      f.MinPrice,
		MaxPrice:      f.MaxPrice,
		MinRating:     f.MinRating,
		BestSeller:    f.BestSeller,
	}
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	ProductAttributeFilter
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ==================== Search DTOs ====================

// SearchRequest is the search_products call
type SearchRequest struct {
	ProductAttributeFilter
	Query  string `form:"q" json:"query"`
	Limit  int    `form:"limit" json:"limit" binding:"omitempty,min=1"`
	Offset int    `form:"offset" json:"offset" binding:"omitempty,min=0"`
}

// SearchHitResponse is one ranked product summary
type SearchHitResponse struct {
	ProductResponse
	Score float64 `json:"score"`
}

// SearchResponse is a page of ranked product summaries
type SearchResponse struct {
	Items  []SearchHitResponse `json:"items"`
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}
