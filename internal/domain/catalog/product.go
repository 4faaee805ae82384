package catalog

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Field limits, in characters
const (
	MaxASINLength  = 20
	MaxTitleLength = 500
	MaxURLLength   = 500
)

// MaxCount bounds the review and recent purchase counters, which are stored as INTEGER
const MaxCount = math.MaxInt32

var maxRating = decimal.NewFromInt(5)

// Product represents a product in the catalog.
// ASIN is the natural key from the source feed; ID is the surrogate key.
type Product struct {
	shared.BaseEntity
	ASIN              string
	Title             string
	ImageURL          string
	ProductURL        string
	Rating            *decimal.Decimal
	ReviewCount       int
	Price             *decimal.Decimal
	ListPrice         *decimal.Decimal
	CategoryID        *int64
	IsBestSeller      bool
	BoughtInLastMonth int
	Description       *string
}

// ProductRecord carries every writable product field.
// CategoryName, when set, is resolved to a category by the application layer and wins over CategoryID.
type ProductRecord struct {
	ASIN              string
	Title             string
	ImageURL          string
	ProductURL        string
	Rating            *decimal.Decimal
	ReviewCount       int
	Price             *decimal.Decimal
	ListPrice         *decimal.Decimal
	CategoryID        *int64
	CategoryName      string
	IsBestSeller      bool
	BoughtInLastMonth int
	Description       *string
}

// Normalize trims surrounding whitespace from the text fields
func (r *ProductRecord) Normalize() {
	r.ASIN = strings.TrimSpace(r.ASIN)
	r.Title = strings.TrimSpace(r.Title)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	r.ProductURL = strings.TrimSpace(r.ProductURL)
	r.CategoryName = strings.TrimSpace(r.CategoryName)
}

// Validate checks the record against the product field rules
func (r *ProductRecord) Validate() error {
	if r.ASIN == "" {
		return validationError("ASIN cannot be empty")
	}
	if utf8.RuneCountInString(r.ASIN) > MaxASINLength {
		return validationError(fmt.Sprintf("ASIN cannot exceed %d characters", MaxASINLength))
	}
	if r.Title == "" {
		return validationError("Title cannot be empty")
	}
	if utf8.RuneCountInString(r.Title) > MaxTitleLength {
		return validationError(fmt.Sprintf("Title cannot exceed %d characters", MaxTitleLength))
	}
	if utf8.RuneCountInString(r.ImageURL) > MaxURLLength {
		return validationError(fmt.Sprintf("Image URL cannot exceed %d characters", MaxURLLength))
	}
	if utf8.RuneCountInString(r.ProductURL) > MaxURLLength {
		return validationError(fmt.Sprintf("Product URL cannot exceed %d characters", MaxURLLength))
	}
	if err := ValidateRating(r.Rating); err != nil {
		return err
	}
	if r.ReviewCount < 0 || r.ReviewCount > MaxCount {
		return validationError(fmt.Sprintf("Review count must be between 0 and %d", MaxCount))
	}
	if r.BoughtInLastMonth < 0 || r.BoughtInLastMonth > MaxCount {
		return validationError(fmt.Sprintf("Recent purchase count must be between 0 and %d", MaxCount))
	}
	if err := valueobject.ValidatePrice("Price", r.Price); err != nil {
		return validationError(err.Error())
	}
	if err := valueobject.ValidatePrice("List price", r.ListPrice); err != nil {
		return validationError(err.Error())
	}
	return nil
}

// ValidateRating checks that an optional rating lies in [0, 5] with at most two fractional digits
func ValidateRating(rating *decimal.Decimal) error {
	if rating == nil {
		return nil
	}
	if rating.IsNegative() || rating.GreaterThan(maxRating) {
		return validationError("Rating must be between 0.00 and 5.00")
	}
	if !rating.Equal(rating.Round(2)) {
		return validationError("Rating cannot have more than 2 decimal places")
	}
	return nil
}

// NewProduct creates a new product from a validated record
func NewProduct(rec ProductRecord) (*Product, error) {
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	p := &Product{BaseEntity: shared.NewBaseEntity()}
	p.assign(rec)
	return p, nil
}

// Apply overwrites the product's fields with rec.
// The ASIN is the identity of the product and cannot change through Apply.
func (p *Product) Apply(rec ProductRecord) error {
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.ASIN != p.ASIN {
		return validationError(fmt.Sprintf("ASIN mismatch: %s != %s", rec.ASIN, p.ASIN))
	}

	p.assign(rec)
	p.Touch()
	return nil
}

func (p *Product) assign(rec ProductRecord) {
	p.ASIN = rec.ASIN
	p.Title = rec.Title
	p.ImageURL = rec.ImageURL
	p.ProductURL = rec.ProductURL
	p.Rating = rec.Rating
	p.ReviewCount = rec.ReviewCount
	p.Price = rec.Price
	p.ListPrice = rec.ListPrice
	p.CategoryID = rec.CategoryID
	p.IsBestSeller = rec.IsBestSeller
	p.BoughtInLastMonth = rec.BoughtInLastMonth
	p.Description = rec.Description
}

// SetDescription is the enrichment stage of the description lifecycle.
// A nil or blank description clears it.
func (p *Product) SetDescription(description *string) {
	if description != nil && strings.TrimSpace(*description) == "" {
		description = nil
	}
	p.Description = description
	p.Touch()
}

// UnitPrice returns the current price as Money, or a ValidationError if no price is set
func (p *Product) UnitPrice() (valueobject.Money, error) {
	if p.Price == nil {
		return valueobject.Money{}, validationError(fmt.Sprintf("Product %s has no price set", p.ASIN))
	}
	return valueobject.USD(*p.Price), nil
}

// SearchText returns the text the search index covers
func (p *Product) SearchText() (title, description string) {
	if p.Description != nil {
		description = *p.Description
	}
	return p.Title, description
}

func validationError(msg string) error {
	return shared.NewDomainError(shared.CodeValidation, msg)
}
