// Package types provides common value types and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
// This is the preferred constructor for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FitsScale reports whether m has no digits beyond the given number of decimal places.
// Trailing zeros do not count: 12.500 fits scale 2.
func FitsScale(m Money, places int32) bool {
	return m.Equal(m.Round(places))
}

// IsNonNegative reports whether m >= 0.
func IsNonNegative(m Money) bool {
	return !m.IsNegative()
}
