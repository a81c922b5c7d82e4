// Package money holds fixed-point amounts in minor units (cents). Every
// fractional step is rounded half-up to the cent so that two engines fed
// the same inputs produce bit-identical totals.
package money

import (
	"errors"
	"fmt"

	"cart-engine/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has more than two decimal places")
	ErrAmountOverflow  = errors.New("amount is out of range")
)

const minorUnits = 2

// MaxCents bounds every amount produced by checked arithmetic. Sums of a
// few in-range amounts (subtotal, tax, shipping) still fit in int64.
const MaxCents int64 = 1_000_000_000_000_000

var maxDecimal = decimal.NewFromInt(MaxCents)

var hundred = decimal.NewFromInt(100)

type Money struct {
	cents int64
}

func Zero() Money {
	return Money{}
}

func FromCents(cents int64) Money {
	return Money{cents: cents}
}

// NewMoney rejects negative amounts; use FromCents for signed intermediates.
func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{cents: cents}, nil
}

// Parse reads a decimal major-unit string such as "19.99".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return FromDecimal(d)
}

func FromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	if !d.Equal(d.Round(minorUnits)) {
		return Money{}, ErrTooManyDecimals
	}
	cents := d.Shift(minorUnits)
	if cents.GreaterThan(maxDecimal) {
		return Money{}, overflow()
	}
	return Money{cents: cents.IntPart()}, nil
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.cents, -minorUnits)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(minorUnits)
}

// Add fails with ErrAmountOverflow, marked ErrInvalidPrice, when the result
// leaves [-MaxCents, MaxCents].
func (m Money) Add(other Money) (Money, error) {
	if !inRange(m.cents) || !inRange(other.cents) {
		return Money{}, overflow()
	}
	return checked(m.cents + other.cents)
}

func (m Money) Sub(other Money) Money {
	return Money{cents: m.cents - other.cents}
}

func (m Money) Mul(qty int) (Money, error) {
	if !inRange(m.cents) {
		return Money{}, overflow()
	}
	q := int64(qty)
	if q != 0 && (q > MaxCents || q < -MaxCents || abs(m.cents) > MaxCents/abs(q)) {
		return Money{}, overflow()
	}
	return checked(m.cents * q)
}

// Percent returns pct percent of m, rounded half-up to the cent.
func (m Money) Percent(pct decimal.Decimal) Money {
	v := decimal.NewFromInt(m.cents).Mul(pct).Div(hundred)
	return Money{cents: roundHalfUp(v)}
}

// BasisPoints returns bps/10000 of m, rounded half-up to the cent.
func (m Money) BasisPoints(bps int64) Money {
	v := decimal.NewFromInt(m.cents).Mul(decimal.NewFromInt(bps)).Div(decimal.NewFromInt(10000))
	return Money{cents: roundHalfUp(v)}
}

func (m Money) Min(other Money) Money {
	if other.cents < m.cents {
		return other
	}
	return m
}

// ClampZero returns m, or zero when m is negative.
func (m Money) ClampZero() Money {
	if m.cents < 0 {
		return Money{}
	}
	return m
}

func (m Money) IsZero() bool                 { return m.cents == 0 }
func (m Money) IsNegative() bool             { return m.cents < 0 }
func (m Money) Equal(other Money) bool       { return m.cents == other.cents }
func (m Money) GreaterThan(other Money) bool { return m.cents > other.cents }

func Sum(amounts ...Money) (Money, error) {
	var total Money
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

func inRange(cents int64) bool {
	return cents >= -MaxCents && cents <= MaxCents
}

func checked(cents int64) (Money, error) {
	if !inRange(cents) {
		return Money{}, overflow()
	}
	return Money{cents: cents}, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func overflow() error {
	return errs.Mark(ErrAmountOverflow, errs.ErrInvalidPrice)
}

// decimal.Round rounds half away from zero, which is half-up for the
// non-negative values the engine produces.
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
