package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/text/cases"
)

// MaxCategoryNameLength is the maximum length of a category name, in characters
const MaxCategoryNameLength = 255

// Category represents a product category in the catalog.
// Names are unique ignoring case; NameKey holds the folded form the uniqueness constraint is built on.
type Category struct {
	shared.BaseEntity
	Name    string
	NameKey string
}

// NewCategory creates a new category
func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		NameKey:    CategoryNameKey(name),
	}, nil
}

// CategoryNameKey folds a category name for case-insensitive comparison.
// Runs of whitespace collapse to a single space.
func CategoryNameKey(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewDomainError(shared.CodeValidation, "Category name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Category name cannot exceed %d characters", MaxCategoryNameLength))
	}
	return nil
}
