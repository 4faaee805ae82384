package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// parseIDParam reads a positive int64 path parameter
func parseIDParam(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Invalid %s: %q", name, raw))
	}
	return id, nil
}

// parseDecimalQuery reads an optional decimal query parameter
func parseDecimalQuery(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("%s must be a decimal number", name))
	}
	return &d, nil
}

// parseAttributeFilter reads the product attribute filters shared by listing and search.
// category_id=none selects uncategorized products.
func parseAttributeFilter(c *gin.Context) (catalogapp.ProductAttributeFilter, error) {
	var f catalogapp.ProductAttributeFilter

	if raw := c.Query("category_id"); raw != "" {
		if raw == "none" {
			f.Uncategorized = true
		} else {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				return f, shared.NewDomainError(shared.CodeValidation, "category_id must be a positive integer or 'none'")
			}
			f.CategoryID = &id
		}
	}

	var err error
	if f.MinPrice, err = parseDecimalQuery(c, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parseDecimalQuery(c, "max_price"); err != nil {
		return f, err
	}
	if f.MinRating, err = parseDecimalQuery(c, "min_rating"); err != nil {
		return f, err
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return f, shared.NewDomainError(shared.CodeValidation, "min_price cannot exceed max_price")
	}

	if raw := c.Query("best_seller"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, shared.NewDomainError(shared.CodeValidation, "best_seller must be true or false")
		}
		f.BestSeller = &b
	}
	return f, nil
}
