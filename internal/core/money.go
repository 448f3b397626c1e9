// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents so that balance arithmetic never drifts.
// Decimal text and JSON numbers are converted at the edges with half-up
// rounding to two places.
package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

var hundred = decimal.NewFromInt(100)

// decimalComma matches "12,5" and "12,34". Grouped forms such as "1,500"
// are ambiguous and rejected.
var decimalComma = regexp.MustCompile(`^\d+,\d{1,2}$`)

// ParseDecimal converts a decimal string to Money with half-up rounding.
//
// It accepts a dot (12.34) or a single comma with one or two decimals (12,34)
// as the decimal separator; thousands grouping is rejected. Negative
// values are rejected; zero is allowed so the result can be used for opening
// balances. Use ParseAmount for expense amounts.
//
// Examples:
//
//	ParseDecimal("12.34")  -> 1234 cents
//	ParseDecimal("12,34")  -> 1234 cents
//	ParseDecimal("12.345") -> 1235 cents (rounds half up)
//	ParseDecimal("12.344") -> 1234 cents
//	ParseDecimal("1,500")  -> error
func ParseDecimal(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		if !decimalComma.MatchString(s) {
			return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return FromDecimal(d)
}

// ParseAmount parses a strictly positive amount.
func ParseAmount(s string) (Money, error) {
	m, err := ParseDecimal(s)
	if err != nil {
		return Money{}, err
	}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// FromDecimal rounds d half-up to cents. Negative values are rejected.
func FromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, d.String())
	}
	cents := d.Mul(hundred).Round(0)
	if cents.GreaterThan(decimal.NewFromInt(maxCents)) {
		return Money{}, fmt.Errorf("%w: %s out of range", ErrInvalidAmount, d.String())
	}
	return Money{Cents: cents.IntPart()}, nil
}

const maxCents = (1<<63 - 1) / 100

// FromUnits builds Money from whole currency units, e.g. seed balances.
func FromUnits(units int64) Money {
	return Money{Cents: units * 100}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) IsNegative() bool {
	return m.Cents < 0
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// LessThan reports m < o.
func (m Money) LessThan(o Money) bool {
	return m.Cents < o.Cents
}

// Decimal returns the exact decimal value of m.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two decimals, e.g. "800.00".
// Currency symbols are a presentation concern.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	parsed, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
