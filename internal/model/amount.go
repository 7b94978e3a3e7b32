package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits stored for money.
const AmountScale = 2

// AmountIntDigits is the number of integer digits a stored amount can
// hold (DECIMAL(12,2)).
const AmountIntDigits = 10

var amountLimit = decimal.New(1, AmountIntDigits)

// Amount is a fixed-point money value.  It scans from and writes to the
// database as a decimal string and renders as a plain JSON number; the
// float conversion on output is accepted for display.
type Amount struct {
	decimal.Decimal
}

// ParseAmount parses a decimal string such as "49.99".  More than two
// fractional digits are rejected rather than rounded, and so is anything
// at or beyond 10^10 in magnitude.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	if d.Exponent() < -AmountScale && !d.Equal(d.Truncate(AmountScale)) {
		return Amount{}, fmt.Errorf("amount %q has more than %d decimals", s, AmountScale)
	}
	if d.Abs().GreaterThanOrEqual(amountLimit) {
		return Amount{}, fmt.Errorf("amount %q has more than %d integer digits", s, AmountIntDigits)
	}
	return Amount{Decimal: d.Truncate(AmountScale)}, nil
}

// MarshalJSON renders the amount as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.InexactFloat64())
}

// String returns the fixed two-decimal form used for storage.
func (a Amount) String() string {
	return a.StringFixed(AmountScale)
}

// Value stores the fixed two-decimal string so every dialect sees the
// same representation.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}
