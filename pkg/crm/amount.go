package crm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value with exact decimal arithmetic.
//
// It is written to JSON as a bare number and read back from either a number
// or a numeric string, since older data stored form input verbatim.
type Amount struct {
	decimal.Decimal
}

// NewAmount returns an Amount of whole units.
func NewAmount(units int64) Amount {
	return Amount{decimal.NewFromInt(units)}
}

// ParseAmount parses a decimal literal such as "5000" or "12.50".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{d}, nil
}

// coerceAmount parses s and falls back to zero on blank or non-numeric input.
func coerceAmount(s string) Amount {
	if s == "" {
		return Amount{}
	}
	a, err := ParseAmount(s)
	if err != nil {
		return Amount{}
	}
	return a
}

// Plus returns a + b.
func (a Amount) Plus(b Amount) Amount {
	return Amount{a.Decimal.Add(b.Decimal)}
}

func (a Amount) String() string {
	return a.Decimal.String()
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON accepts numbers and numeric strings. Anything else decodes as
// zero instead of failing, like the CSV path does.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		_ = json.Unmarshal(data, &s)
		*a = coerceAmount(s)
		return nil
	}
	*a = coerceAmount(string(data))
	return nil
}
