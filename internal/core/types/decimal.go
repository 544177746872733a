// Package types provides the numeric types of the ledger.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Kilograms is a fish quantity in kilograms with full precision.
type Kilograms = decimal.Decimal

// CurrencyPlaces is the presentation precision of money amounts.
const CurrencyPlaces = 2

var hundred = decimal.NewFromInt(100)

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustDecimal creates a decimal from a string, panics on error.
// Use only for constants and tests.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns the zero value.
func Zero() decimal.Decimal {
	return decimal.Zero
}

// Hundred returns 100, the percentage base.
func Hundred() decimal.Decimal {
	return hundred
}

// RoundCurrency rounds a stored amount to currency precision (half-up).
// Stored values keep full precision; round only when presenting.
func RoundCurrency(m Money) Money {
	return m.Round(CurrencyPlaces)
}

// Min returns the smaller of two decimals.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// NonNegative floors a value at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Sum adds values together.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
