package models

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// CategoryModel is the persistence model for the Category domain entity.
// NameKey carries the case-folded name and holds the uniqueness constraint.
type CategoryModel struct {
	Row
	Name    string `gorm:"type:varchar(255);not null"`
	NameKey string `gorm:"type:varchar(255);not null;uniqueIndex:uq_categories_name_key"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseEntity: m.Row.entity(),
		Name:       m.Name,
		NameKey:    m.NameKey,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.Row = rowOf(c.BaseEntity)
	m.Name = c.Name
	m.NameKey = c.NameKey
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	Row
	ASIN              string              `gorm:"column:asin;type:varchar(20);not null;uniqueIndex:uq_products_asin"`
	Title             string              `gorm:"type:varchar(500);not null"`
	ImageURL          string              `gorm:"column:image_url;type:varchar(500)"`
	ProductURL        string              `gorm:"column:product_url;type:varchar(500)"`
	Rating            decimal.NullDecimal `gorm:"type:decimal(3,2);index:idx_products_rating"`
	ReviewCount       int                 `gorm:"not null;default:0"`
	Price             decimal.NullDecimal `gorm:"type:decimal(10,2);index:idx_products_price"`
	ListPrice         decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	CategoryID        *int64              `gorm:"index:idx_products_category"`
	Category          *CategoryModel      `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	IsBestSeller      bool                `gorm:"not null;default:false"`
	BoughtInLastMonth int                 `gorm:"not null;default:0"`
	Description       *string             `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:        m.Row.entity(),
		ASIN:              m.ASIN,
		Title:             m.Title,
		ImageURL:          m.ImageURL,
		ProductURL:        m.ProductURL,
		Rating:            fromNullDecimal(m.Rating),
		ReviewCount:       m.ReviewCount,
		Price:             fromNullDecimal(m.Price),
		ListPrice:         fromNullDecimal(m.ListPrice),
		CategoryID:        m.CategoryID,
		IsBestSeller:      m.IsBestSeller,
		BoughtInLastMonth: m.BoughtInLastMonth,
		Description:       m.Description,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.Row = rowOf(p.BaseEntity)
	m.ASIN = p.ASIN
	m.Title = p.Title
	m.ImageURL = p.ImageURL
	m.ProductURL = p.ProductURL
	m.Rating = toNullDecimal(p.Rating)
	m.ReviewCount = p.ReviewCount
	m.Price = toNullDecimal(p.Price)
	m.ListPrice = toNullDecimal(p.ListPrice)
	m.CategoryID = p.CategoryID
	m.IsBestSeller = p.IsBestSeller
	m.BoughtInLastMonth = p.BoughtInLastMonth
	m.Description = p.Description
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func fromNullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
