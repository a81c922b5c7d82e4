package coupon

import (
	"errors"
	"regexp"
	"strings"

	"cart-engine/internal/domain/money"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCouponCode      = errors.New("invalid coupon code format")
	ErrInvalidDiscountAmount  = errors.New("discount amount cannot be negative")
	ErrInvalidDiscountPercent = errors.New("percentage discount must be between 0 and 100")
	ErrUnknownKind            = errors.New("unknown coupon kind")
)

var couponCodeRegex = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

type Code string

func NewCouponCode(code string) (Code, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if !couponCodeRegex.MatchString(code) {
		return Code(""), ErrInvalidCouponCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}

type Kind string

const (
	KindPercentage   Kind = "percentage"
	KindFixed        Kind = "fixed"
	KindFreeShipping Kind = "free_shipping"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindPercentage, KindFixed, KindFreeShipping:
		return k, nil
	default:
		return "", ErrUnknownKind
	}
}

// Rule is the discount definition returned by the coupon validator. It is
// snapshotted into the cart at apply time so later recomputations do not
// depend on the validator.
type Rule struct {
	Code        Code            `json:"code"`
	Kind        Kind            `json:"kind"`
	PercentOff  decimal.Decimal `json:"percentOff"`
	AmountOff   int64           `json:"amountOffCents"`
	MinSubtotal int64           `json:"minSubtotalCents"`
	Priority    int             `json:"priority"`
	Stackable   bool            `json:"stackable"`
}

func NewPercentageRule(code Code, percentOff decimal.Decimal, priority int, stackable bool) (Rule, error) {
	if percentOff.IsNegative() || percentOff.GreaterThan(decimal.NewFromInt(100)) {
		return Rule{}, ErrInvalidDiscountPercent
	}
	return Rule{Code: code, Kind: KindPercentage, PercentOff: percentOff, Priority: priority, Stackable: stackable}, nil
}

func NewFixedRule(code Code, amountOff money.Money, priority int, stackable bool) (Rule, error) {
	if amountOff.IsNegative() {
		return Rule{}, ErrInvalidDiscountAmount
	}
	return Rule{Code: code, Kind: KindFixed, AmountOff: amountOff.Cents(), Priority: priority, Stackable: stackable}, nil
}

func NewFreeShippingRule(code Code, priority int, stackable bool) Rule {
	return Rule{Code: code, Kind: KindFreeShipping, Priority: priority, Stackable: stackable}
}

func (r Rule) WithMinSubtotal(min money.Money) Rule {
	r.MinSubtotal = min.Cents()
	return r
}

func (r Rule) Validate() error {
	if _, err := NewCouponCode(r.Code.String()); err != nil {
		return err
	}
	switch r.Kind {
	case KindPercentage:
		if r.PercentOff.IsNegative() || r.PercentOff.GreaterThan(decimal.NewFromInt(100)) {
			return ErrInvalidDiscountPercent
		}
	case KindFixed:
		if r.AmountOff < 0 {
			return ErrInvalidDiscountAmount
		}
	case KindFreeShipping:
	default:
		return ErrUnknownKind
	}
	if r.MinSubtotal < 0 {
		return ErrInvalidDiscountAmount
	}
	return nil
}

// Evaluate returns the discount this rule contributes against the running
// amount (subtotal minus discounts already granted by earlier rules).
func (r Rule) Evaluate(running, subtotal money.Money) money.Money {
	if running.Cents() <= 0 || subtotal.Cents() < r.MinSubtotal {
		return money.Zero()
	}
	switch r.Kind {
	case KindPercentage:
		return running.Percent(r.PercentOff).Min(running)
	case KindFixed:
		return money.FromCents(r.AmountOff).Min(running)
	default:
		return money.Zero()
	}
}

func (r Rule) GrantsFreeShipping(subtotal money.Money) bool {
	return r.Kind == KindFreeShipping && subtotal.Cents() >= r.MinSubtotal
}
