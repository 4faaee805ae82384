// Package valueobject holds small immutable values shared by the aggregates.
package valueobject

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept for stored amounts
const Scale int32 = 2

// Largest amounts the price and order total columns hold
var (
	MaxPrice = decimal.RequireFromString("99999999.99")
	MaxTotal = decimal.RequireFromString("9999999999.99")
)

// Money is an amount in US dollars. The storefront sells in a single currency,
// so no currency code travels with the amount.
type Money struct {
	amount decimal.Decimal
}

// USD wraps amount
func USD(amount decimal.Decimal) Money { return Money{amount: amount} }

// ParseUSD reads a decimal string such as "19.99"
func ParseUSD(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return USD(d), nil
}

func (m Money) Decimal() decimal.Decimal { return m.amount }
func (m Money) IsNegative() bool         { return m.amount.IsNegative() }
func (m Money) Equal(o Money) bool       { return m.amount.Equal(o.amount) }
func (m Money) Plus(o Money) Money       { return USD(m.amount.Add(o.amount)) }
func (m Money) Times(n int64) Money      { return USD(m.amount.Mul(decimal.NewFromInt(n))) }

// ToCents rounds half away from zero to whole cents
func (m Money) ToCents() Money { return USD(m.amount.Round(Scale)) }

func (m Money) String() string { return "$" + m.amount.StringFixed(Scale) }

// MarshalJSON writes the amount as a fixed two-place string
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.amount.StringFixed(Scale))
}

// ValidatePrice checks that an optional price lies in [0, MaxPrice] and has whole cents
func ValidatePrice(field string, price *decimal.Decimal) error {
	switch {
	case price == nil:
		return nil
	case price.IsNegative():
		return fmt.Errorf("%s cannot be negative", field)
	case price.GreaterThan(MaxPrice):
		return fmt.Errorf("%s cannot exceed %s", field, MaxPrice.StringFixed(Scale))
	case !price.Equal(price.Round(Scale)):
		return fmt.Errorf("%s cannot have more than %d decimal places", field, Scale)
	}
	return nil
}
