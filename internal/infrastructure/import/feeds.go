package csvimport

import (
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Category feed columns
const (
	ColCategoryID   = "id"
	ColCategoryName = "category_name"
)

// Product feed columns
const (
	ColASIN              = "asin"
	ColTitle             = "title"
	ColImageURL          = "img_url"
	ColProductURL        = "product_url"
	ColStars             = "stars"
	ColReviews           = "reviews"
	ColPrice             = "price"
	ColListPrice         = "list_price"
	ColCategoryReference = "category_reference"
	ColIsBestSeller      = "is_best_seller"
	ColBoughtInLastMonth = "bought_in_last_month"
)

// FeedHeaderAliases maps the header spellings found in public dumps of the feed to the canonical columns
var FeedHeaderAliases = map[string]string{
	"imgurl":            ColImageURL,
	"producturl":        ColProductURL,
	"listprice":         ColListPrice,
	"category_id":       ColCategoryReference,
	"category":          ColCategoryReference,
	"isbestseller":      ColIsBestSeller,
	"boughtinlastmonth": ColBoughtInLastMonth,
}

// RequiredCategoryColumns must appear in a category feed header
var RequiredCategoryColumns = []string{ColCategoryName}

// RequiredProductColumns must appear in a product feed header
var RequiredProductColumns = []string{ColASIN, ColTitle}

// CategoryFeed validates category feed rows
var CategoryFeed = Schema{
	{Column: ColCategoryID, Kind: Integer, Min: bound(1)},
	{Column: ColCategoryName, Required: true, MaxLen: 255},
}

var maxPrice = valueobject.MaxPrice

// ProductFeed validates product feed rows. Upper bounds follow the column types,
// so an oversized value is a row error rather than a failed write.
var ProductFeed = Schema{
	{Column: ColASIN, Required: true, MaxLen: 20},
	{Column: ColTitle, Required: true, MaxLen: 500},
	{Column: ColImageURL, MaxLen: 500},
	{Column: ColProductURL, MaxLen: 500},
	{Column: ColStars, Kind: Number, Min: bound(0), Max: bound(5), Scale: 2},
	{Column: ColReviews, Kind: Integer, Min: bound(0), Max: bound(catalog.MaxCount)},
	{Column: ColPrice, Kind: Number, Min: bound(0), Max: &maxPrice, Scale: 2},
	{Column: ColListPrice, Kind: Number, Min: bound(0), Max: &maxPrice, Scale: 2},
	{Column: ColIsBestSeller, Kind: Flag},
	{Column: ColBoughtInLastMonth, Kind: Integer, Min: bound(0), Max: bound(catalog.MaxCount)},
}

// CategoryRow is a validated category feed row.
// Label is the value product rows use to refer to it: the feed id when present, else the name.
type CategoryRow struct {
	Line  int
	Label string
	Name  string
}

// ParseCategoryRow validates row and converts it
func ParseCategoryRow(row Row) (CategoryRow, []RowError) {
	if errs := CategoryFeed.Check(row); len(errs) > 0 {
		return CategoryRow{}, errs
	}
	out := CategoryRow{
		Line:  row.Line,
		Label: row.Get(ColCategoryID),
		Name:  row.Get(ColCategoryName),
	}
	if out.Label != "" {
		// "07" and "7" name the same feed id
		n, _ := ParseInt(out.Label)
		out.Label = strconv.FormatInt(n, 10)
	}
	return out, nil
}

// ProductRow is a validated product feed row.
// A description column, if the feed has one, is not read: descriptions come from enrichment.
type ProductRow struct {
	Line              int
	ASIN              string
	Title             string
	ImageURL          string
	ProductURL        string
	Rating            *decimal.Decimal
	ReviewCount       int
	Price             *decimal.Decimal
	ListPrice         *decimal.Decimal
	CategoryReference string
	IsBestSeller      bool
	BoughtInLastMonth int
}

// ParseProductRow validates row and converts it
func ParseProductRow(row Row) (ProductRow, []RowError) {
	if errs := ProductFeed.Check(row); len(errs) > 0 {
		return ProductRow{}, errs
	}
	out := ProductRow{
		Line:              row.Line,
		ASIN:              row.Get(ColASIN),
		Title:             row.Get(ColTitle),
		ImageURL:          row.Get(ColImageURL),
		ProductURL:        row.Get(ColProductURL),
		Rating:            optionalDecimal(row.Get(ColStars)),
		ReviewCount:       optionalInt(row.Get(ColReviews)),
		Price:             optionalDecimal(row.Get(ColPrice)),
		ListPrice:         optionalDecimal(row.Get(ColListPrice)),
		CategoryReference: row.Get(ColCategoryReference),
		BoughtInLastMonth: optionalInt(row.Get(ColBoughtInLastMonth)),
	}
	if v := row.Get(ColIsBestSeller); v != "" {
		out.IsBestSeller, _ = ParseBool(v)
	}
	return out, nil
}

// optionalDecimal parses an already validated value; empty means absent
func optionalDecimal(value string) *decimal.Decimal {
	if value == "" {
		return nil
	}
	d := decimal.RequireFromString(value)
	return &d
}

func optionalInt(value string) int {
	if value == "" {
		return 0
	}
	n, _ := ParseInt(value)
	return int(n)
}
