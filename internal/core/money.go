// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts and monthly
// rates from strings and for converting between cents and display values.
package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the ISO code used when none is configured.
const DefaultCurrency = money.BRL

// Money is an amount in cents of the configured currency.
type Money struct {
	Cents int64
}

// Cents builds a Money value.
func Cents(c int64) Money { return Money{Cents: c} }

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, negative values, or zero amounts.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
//	ParseDecimalToCents("12.344") -> 1234, nil (rounds down)
func ParseDecimalToCents(s string) (int64, error) {
	cents, err := parseCents(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseMoney is like ParseDecimalToCents but accepts zero.
func ParseMoney(s string) (Money, error) {
	cents, err := parseCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

func parseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		if fracPart == "" {
			return 0, ErrInvalidAmount
		}
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	if iv > maxSafeInt64-1 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// ParseRate parses a monthly percentage such as "0.7" or "0,7".
// Negative rates are accepted.
func ParseRate(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidRate, s)
	}
	return d, nil
}

// Largest whole-unit amount whose cents still fit in an int64.
const maxSafeInt64 = (1<<63 - 1) / 100

var maxSafeCents = decimal.NewFromInt(maxSafeInt64 - 1).Shift(2)

// MoneyFromDecimal rounds a major-unit decimal half-up to cents.
// The caller guarantees d is in range; use DecimalToMoney for input.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

// DecimalToMoney is MoneyFromDecimal for untrusted values. Amounts whose
// cents do not fit in an int64 are rejected.
func DecimalToMoney(d decimal.Decimal) (Money, error) {
	cents := d.Shift(2).Round(0)
	if cents.Abs().GreaterThan(maxSafeCents) {
		return Money{}, fmt.Errorf("%w: %s out of range", ErrInvalidAmount, d.String())
	}
	return Money{Cents: cents.IntPart()}, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float64 returns the value in major units for display and charts.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Float64() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) IsZero() bool      { return m.Cents == 0 }

// String renders the plain decimal amount, e.g. "1234.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Format renders the amount with the currency's symbol and separators
// ("R$1.234,50" for BRL).
func (m Money) Format(currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return money.New(m.Cents, currency).Display()
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and strings ("12,34").
func (m *Money) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return ErrInvalidAmount
	}
	switch v := raw.(type) {
	case float64:
		if v < 0 {
			return ErrInvalidAmount
		}
		d, err := decimal.NewFromString(string(b))
		if err != nil {
			return ErrInvalidAmount
		}
		parsed, err := DecimalToMoney(d)
		if err != nil {
			return err
		}
		*m = parsed
	case string:
		parsed, err := ParseMoney(v)
		if err != nil {
			return err
		}
		*m = parsed
	default:
		return ErrInvalidAmount
	}
	return nil
}
