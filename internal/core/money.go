package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a money cell to a decimal. Amount columns arrive as
// display strings, so separators, currency markers and whitespace are
// stripped; values stay exact decimals and never pass through float64.
//
// It accepts plain numbers ("1234.5"), separator-grouped numbers
// ("1,234.50") and currency-prefixed values ("₹1,234.50", "INR 500").
// Negative amounts parse as negative; opening balances legitimately carry
// credit values. Empty cells are an error so that callers choose between
// coercing to zero and failing the load.
//
// Examples:
//
//	ParseAmount("1,234.50") -> 1234.5, nil
//	ParseAmount("₹500")     -> 500, nil
//	ParseAmount("")         -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.TrimSpace(strings.TrimPrefix(s, "INR"))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// CoerceAmount parses a money cell, mapping blanks and junk to zero. Row
// loaders use it for balance columns where a bad cell must not sink the
// whole import.
func CoerceAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
