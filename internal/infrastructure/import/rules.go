package csvimport

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Kind is the value type a column must hold
type Kind uint8

const (
	Text Kind = iota
	Integer
	Number
	Flag
)

// Rule constrains one column. Empty values only fail Required; the other checks apply to non-empty values.
type Rule struct {
	Column   string
	Kind     Kind
	Required bool
	MaxLen   int // in runes, 0 is unbounded
	Min      *decimal.Decimal
	Max      *decimal.Decimal
	Scale    int32 // fractional digits allowed for Number, 0 is unbounded
}

// Schema is an ordered rule set for one feed
type Schema []Rule

// Columns returns the constrained columns in rule order
func (s Schema) Columns() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = r.Column
	}
	return out
}

// Check returns every violation in row, in rule order
func (s Schema) Check(row Row) []RowError {
	var errs []RowError
	for _, r := range s {
		if e, bad := r.check(row.Line, row.Get(r.Column)); bad {
			errs = append(errs, e)
		}
	}
	return errs
}

func (r Rule) check(line int, v string) (RowError, bool) {
	if v == "" {
		if r.Required {
			return Reject(line, r.Column, CodeRequired, r.Column+" is required"), true
		}
		return RowError{}, false
	}
	if r.MaxLen > 0 && utf8.RuneCountInString(v) > r.MaxLen {
		return Reject(line, r.Column, CodeLength, fmt.Sprintf("longer than %d characters", r.MaxLen)), true
	}

	var n decimal.Decimal
	switch r.Kind {
	case Text:
		return RowError{}, false
	case Flag:
		if _, err := ParseBool(v); err != nil {
			return Reject(line, r.Column, CodeType, "not a boolean").WithValue(v), true
		}
		return RowError{}, false
	case Integer:
		i, err := ParseInt(v)
		if err != nil {
			return Reject(line, r.Column, CodeType, "not an integer").WithValue(v), true
		}
		n = decimal.NewFromInt(i)
	case Number:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return Reject(line, r.Column, CodeType, "not a number").WithValue(v), true
		}
		if r.Scale > 0 && !d.Equal(d.Truncate(r.Scale)) {
			return Reject(line, r.Column, CodeScale, fmt.Sprintf("more than %d decimal places", r.Scale)).WithValue(v), true
		}
		n = d
	}

	if r.Min != nil && n.LessThan(*r.Min) {
		return Reject(line, r.Column, CodeRange, "below "+r.Min.String()).WithValue(v), true
	}
	if r.Max != nil && n.GreaterThan(*r.Max) {
		return Reject(line, r.Column, CodeRange, "above "+r.Max.String()).WithValue(v), true
	}
	return RowError{}, false
}

func bound(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// ParseInt parses a count. Whole-number decimals such as "12.0" are accepted.
func ParseInt(v string) (int64, error) {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil || !d.IsInteger() {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return d.IntPart(), nil
}

// ParseBool accepts true/false, t/f, 1/0, yes/no and y/n in any case
func ParseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "true", "t", "1", "yes", "y":
		return true, nil
	case "false", "f", "0", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}
