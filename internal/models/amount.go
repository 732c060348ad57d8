package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a canonical monetary value: non-negative with exactly two
// fraction digits. The zero value is 0.00.
type Amount struct {
	d decimal.Decimal
}

// ZeroAmount is 0.00
var ZeroAmount = Amount{}

// NewAmount rounds d to two places. Negative values clamp to zero.
func NewAmount(d decimal.Decimal) Amount {
	if d.IsNegative() {
		return ZeroAmount
	}
	return Amount{d: d.Round(2)}
}

// MustAmount parses a plain decimal string and panics on failure.
// Intended for tests and static tables.
func MustAmount(s string) Amount {
	return NewAmount(decimal.RequireFromString(s))
}

// Decimal returns the underlying decimal value
func (a Amount) Decimal() decimal.Decimal {
	return a.d
}

// IsPositive reports whether the amount is strictly greater than zero
func (a Amount) IsPositive() bool {
	return a.d.IsPositive()
}

// IsZero reports whether the amount is 0.00
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// Equal compares two amounts by value
func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

// String renders the amount with exactly two fraction digits
func (a Amount) String() string {
	return a.d.StringFixed(2)
}

// MarshalJSON encodes the amount as a two-decimal string, e.g. "2145046.40"
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts either a quoted decimal or a bare JSON number
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	*a = NewAmount(d)
	return nil
}
