package coupon

import (
	"errors"
	"time"

	"cart-engine/internal/domain/money"

	"github.com/google/uuid"
)

var (
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrCouponNotYetValid = errors.New("coupon is not yet valid")
	ErrCouponInactive    = errors.New("coupon is inactive")
	ErrCouponCurrency    = errors.New("coupon is not valid for this currency")
	ErrSubtotalTooLow    = errors.New("subtotal is below the coupon minimum")
	ErrCouponExhausted   = errors.New("coupon usage limit reached")
)

// Coupon is a catalog entry. Carts never hold it directly; they hold the
// Rule it produces when validated.
type Coupon struct {
	id         uuid.UUID
	rule       Rule
	currency   *money.Currency
	active     bool
	validFrom  *time.Time
	validTo    *time.Time
	usageLimit *int
	usedCount  int
	createdAt  time.Time
	updatedAt  time.Time
}

func NewCoupon(
	id uuid.UUID,
	rule Rule,
	currency *money.Currency,
	active bool,
	validFrom, validTo *time.Time,
	usageLimit *int,
	usedCount int,
	createdAt, updatedAt time.Time,
) (*Coupon, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return &Coupon{
		id:         id,
		rule:       rule,
		currency:   currency,
		active:     active,
		validFrom:  validFrom,
		validTo:    validTo,
		usageLimit: usageLimit,
		usedCount:  usedCount,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}, nil
}

func (c *Coupon) IsValidAt(t time.Time) bool {
	if c.validFrom != nil && t.Before(*c.validFrom) {
		return false
	}
	if c.validTo != nil && t.After(*c.validTo) {
		return false
	}
	return true
}

// ValidateUsage checks the coupon against the cart it is being applied to.
func (c *Coupon) ValidateUsage(t time.Time, subtotal money.Money, currency money.Currency) error {
	if !c.active {
		return ErrCouponInactive
	}
	if !c.IsValidAt(t) {
		if c.validFrom != nil && t.Before(*c.validFrom) {
			return ErrCouponNotYetValid
		}
		return ErrCouponExpired
	}
	if c.currency != nil && *c.currency != currency {
		return ErrCouponCurrency
	}
	if subtotal.Cents() < c.rule.MinSubtotal {
		return ErrSubtotalTooLow
	}
	if c.usageLimit != nil && c.usedCount >= *c.usageLimit {
		return ErrCouponExhausted
	}
	return nil
}

func (c *Coupon) ID() uuid.UUID             { return c.id }
func (c *Coupon) Code() Code                { return c.rule.Code }
func (c *Coupon) Rule() Rule                { return c.rule }
func (c *Coupon) Currency() *money.Currency { return c.currency }
func (c *Coupon) Active() bool              { return c.active }
func (c *Coupon) ValidFrom() *time.Time     { return c.validFrom }
func (c *Coupon) ValidTo() *time.Time       { return c.validTo }
func (c *Coupon) UsageLimit() *int          { return c.usageLimit }
func (c *Coupon) UsedCount() int            { return c.usedCount }
func (c *Coupon) CreatedAt() time.Time      { return c.createdAt }
func (c *Coupon) UpdatedAt() time.Time      { return c.updatedAt }
