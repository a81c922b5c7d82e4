//go:build unit || e2e

package builder

import (
	"time"

	"cart-engine/internal/domain/cart"
	"cart-engine/internal/domain/coupon"
	"cart-engine/internal/domain/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var DefaultNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type LineSpec struct {
	ItemID     uuid.UUID
	ProductID  string
	Name       string
	Quantity   int
	UnitCents  int64
	Attributes map[string]string
}

type CartBuilder struct {
	ID          uuid.UUID
	UserID      string
	SessionID   string
	Currency    string
	Now         time.Time
	TTL         time.Duration
	MaxQuantity int
	Lines       []LineSpec
	Coupons     []coupon.Rule
	Address     *cart.Address
}

func NewCartBuilder() *CartBuilder {
	return &CartBuilder{
		ID:          uuid.New(),
		UserID:      "user-1",
		Currency:    "USD",
		Now:         DefaultNow,
		MaxQuantity: 99,
	}
}

func (b *CartBuilder) With(mutate func(*CartBuilder)) *CartBuilder {
	mutate(b)
	return b
}

func (b *CartBuilder) WithLine(productID string, qty int, unitCents int64) *CartBuilder {
	b.Lines = append(b.Lines, LineSpec{ItemID: uuid.New(), ProductID: productID, Name: "Product " + productID, Quantity: qty, UnitCents: unitCents})
	return b
}

func (b *CartBuilder) WithCoupon(r coupon.Rule) *CartBuilder {
	b.Coupons = append(b.Coupons, r)
	return b
}

func (b *CartBuilder) Anonymous(sessionID string) *CartBuilder {
	b.UserID = ""
	b.SessionID = sessionID
	return b
}

// Build methods
func (b *CartBuilder) Owner() cart.OwnerRef {
	o, err := cart.NewOwnerRef(b.UserID, b.SessionID)
	if err != nil {
		panic(err)
	}
	return o
}

func (b *CartBuilder) BuildDomain() (*cart.Cart, error) {
	currency, err := money.NewCurrency(b.Currency)
	if err != nil {
		return nil, err
	}
	owner, err := cart.NewOwnerRef(b.UserID, b.SessionID)
	if err != nil {
		return nil, err
	}
	c, err := cart.NewCart(b.ID, owner, currency, b.Now, b.TTL)
	if err != nil {
		return nil, err
	}
	for _, l := range b.Lines {
		product, perr := cart.NewProductRef(l.ProductID, l.Name, "SKU-"+l.ProductID, "")
		if perr != nil {
			return nil, perr
		}
		attrs, aerr := cart.NewAttributes(l.Attributes)
		if aerr != nil {
			return nil, aerr
		}
		if _, err = c.AddItem(l.ItemID, product, l.Quantity, money.FromCents(l.UnitCents), attrs, b.MaxQuantity, b.Now); err != nil {
			return nil, err
		}
	}
	for _, r := range b.Coupons {
		if err = c.ApplyCoupon(r, b.Now); err != nil {
			return nil, err
		}
	}
	if b.Address != nil {
		if err = c.SetShippingAddress(*b.Address, b.Now); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (b *CartBuilder) MustBuild() *cart.Cart {
	c, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return c
}

func PercentRule(code string, pct int64, priority int, stackable bool) coupon.Rule {
	r, err := coupon.NewPercentageRule(coupon.Code(code), decimal.NewFromInt(pct), priority, stackable)
	if err != nil {
		panic(err)
	}
	return r
}

func FixedRule(code string, cents int64, priority int, stackable bool) coupon.Rule {
	r, err := coupon.NewFixedRule(coupon.Code(code), money.FromCents(cents), priority, stackable)
	if err != nil {
		panic(err)
	}
	return r
}
