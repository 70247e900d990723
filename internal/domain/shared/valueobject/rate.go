package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rate is a fraction in [0, 1) applied to a Money amount (0.10 = 10%)
type Rate struct {
	value decimal.Decimal
}

// NewRate validates and creates a Rate
func NewRate(value decimal.Decimal) (Rate, error) {
	if value.IsNegative() || value.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return Rate{}, fmt.Errorf("rate must be in [0, 1), got %s", value.String())
	}
	return Rate{value: value}, nil
}

// MustRate is NewRate for package-level constants and tests
func MustRate(value string) Rate {
	r, err := NewRate(decimal.RequireFromString(value))
	if err != nil {
		panic(err)
	}
	return r
}

// Decimal returns the rate as a decimal fraction
func (r Rate) Decimal() decimal.Decimal {
	return r.value
}

// Apply returns amount × rate rounded half-up to the minor unit
func (r Rate) Apply(amount Money) Money {
	return amount.Multiply(r.value).Round()
}

// String returns the rate as a fraction, e.g. "0.1"
func (r Rate) String() string {
	return r.value.String()
}
