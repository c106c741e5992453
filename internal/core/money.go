// Package core provides money parsing and handling utilities.
//
// Amounts are shopspring decimals rounded to cents. Storage keeps them as
// integer cents so that SQL sums stay exact.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MaxAmount is the largest accepted transaction amount. At this size the
// cents of hundreds of thousands of rows still sum inside int64.
var MaxAmount = decimal.New(1, 13)

// ParseAmount converts a decimal string to an amount rounded to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Zero and negative values are
// rejected.
//
// Examples:
//   ParseAmount("12.34")  -> 12.34
//   ParseAmount("12,345") -> 12.35
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, NewValidationError("amount", "must not be empty")
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, NewValidationError("amount", "not a number")
	}
	d = RoundAmount(d)
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// RoundAmount rounds half away from zero to two decimal places.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ValidateAmount rejects zero, negative and out-of-range amounts.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return NewValidationError("amount", "must be greater than zero")
	}
	if d.GreaterThan(MaxAmount) {
		return NewValidationError("amount", "must not exceed "+MaxAmount.String())
	}
	return nil
}

// ToCents converts an amount to integer cents. It fails instead of
// wrapping when the cents do not fit in an int64.
func ToCents(d decimal.Decimal) (int64, error) {
	cents := d.Mul(hundred).Round(0).BigInt()
	if !cents.IsInt64() {
		return 0, NewValidationError("amount", "out of range")
	}
	return cents.Int64(), nil
}

// FromCents converts integer cents to an amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Percentage returns part/whole*100 rounded to two decimals, or zero when
// whole is zero.
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}
