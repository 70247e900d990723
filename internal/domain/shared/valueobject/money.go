package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MinorUnitPlaces is the number of decimal places of the platform currency
const MinorUnitPlaces int32 = 2

// Money is an immutable monetary amount in the platform currency.
// Arithmetic is exact; rounding to the minor unit happens only through Round.
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates Money from a decimal amount
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// NewMoneyFromString parses an amount such as "1000.50"
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return Money{amount: d}, nil
}

// NewMoneyFromInt creates Money from a whole number of currency units
func NewMoneyFromInt(amount int64) Money {
	return Money{amount: decimal.NewFromInt(amount)}
}

// NewPositiveMoney parses amount and requires it to be > 0 with at most
// MinorUnitPlaces decimals
func NewPositiveMoney(amount decimal.Decimal) (Money, error) {
	if !amount.IsPositive() {
		return Money{}, errors.New("amount must be a positive number")
	}
	if !amount.Equal(amount.Round(MinorUnitPlaces)) {
		return Money{}, fmt.Errorf("amount cannot have more than %d decimal places", MinorUnitPlaces)
	}
	return Money{amount: amount}, nil
}

// Zero returns zero Money
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// Add returns the sum of both amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Multiply returns the amount multiplied by factor, unrounded
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor)}
}

// Round rounds half away from zero to the minor unit. For the non-negative
// amounts handled here this is round-half-up.
func (m Money) Round() Money {
	return Money{amount: m.amount.Round(MinorUnitPlaces)}
}

// Equals compares amounts numerically (1.0 == 1.00)
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

// String returns the amount with exactly MinorUnitPlaces decimals
func (m Money) String() string {
	return m.amount.StringFixed(MinorUnitPlaces)
}

// MarshalJSON encodes the amount as a JSON number with two decimals
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and numeric strings
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw json.Number
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = json.Number(s)
	} else {
		raw = json.Number(data)
	}
	d, err := decimal.NewFromString(raw.String())
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = d
	return nil
}

// Value implements driver.Valuer
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan implements sql.Scanner
func (m *Money) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("cannot scan %T into Money: %w", value, err)
	}
	m.amount = d
	return nil
}

// Sum adds all amounts
func Sum(amounts ...Money) Money {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.amount)
	}
	return Money{amount: total}
}
