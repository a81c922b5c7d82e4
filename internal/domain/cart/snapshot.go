package cart

import (
	"errors"
	"fmt"
	"time"

	"cart-engine/internal/domain/money"

	"github.com/google/uuid"
)

var ErrInvalidSnapshot = errors.New("invalid cart snapshot")

// Snapshot is the flat, serializable form of a cart. Stores, caches and
// event payloads all exchange carts in this shape.
type Snapshot struct {
	ID               uuid.UUID       `json:"id"`
	UserID           string          `json:"userId,omitempty"`
	SessionID        string          `json:"sessionId,omitempty"`
	Status           Status          `json:"status"`
	Currency         string          `json:"currency"`
	Items            []ItemSnapshot  `json:"items"`
	Coupons          []AppliedCoupon `json:"coupons"`
	ShippingAddress  *Address        `json:"shippingAddress,omitempty"`
	SubtotalCents    int64           `json:"subtotalCents"`
	DiscountCents    int64           `json:"discountCents"`
	TaxCents         int64           `json:"taxCents"`
	ShippingCents    int64           `json:"shippingCents"`
	TotalCents       int64           `json:"totalCents"`
	FreeShipping     bool            `json:"freeShipping"`
	ExpiresAt        *time.Time      `json:"expiresAt,omitempty"`
	PricesVerifiedAt *time.Time      `json:"pricesVerifiedAt,omitempty"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type ItemSnapshot struct {
	ID              uuid.UUID         `json:"id"`
	CartID          uuid.UUID         `json:"cartId"`
	Product         ProductRef        `json:"product"`
	Quantity        int               `json:"quantity"`
	UnitPriceCents  int64             `json:"unitPriceCents"`
	TotalPriceCents int64             `json:"totalPriceCents"`
	Attributes      map[string]string `json:"attributes,omitempty"`
	Unavailable     bool              `json:"unavailable"`
	AddedAt         time.Time         `json:"addedAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

func (c *Cart) ToSnapshot() Snapshot {
	s := Snapshot{
		ID:               c.id,
		UserID:           c.owner.userID,
		SessionID:        c.owner.sessionID,
		Status:           c.status,
		Currency:         c.currency.String(),
		Items:            make([]ItemSnapshot, 0, len(c.items)),
		Coupons:          c.Coupons(),
		SubtotalCents:    c.totals.Subtotal.Cents(),
		DiscountCents:    c.totals.Discount.Cents(),
		TaxCents:         c.totals.Tax.Cents(),
		ShippingCents:    c.totals.Shipping.Cents(),
		TotalCents:       c.totals.Total.Cents(),
		FreeShipping:     c.totals.FreeShipping,
		ExpiresAt:        copyTime(c.expiresAt),
		PricesVerifiedAt: copyTime(c.pricesVerifiedAt),
		Version:          c.version,
		CreatedAt:        c.createdAt,
		UpdatedAt:        c.updatedAt,
	}
	if c.shippingAddress != nil {
		a := *c.shippingAddress
		s.ShippingAddress = &a
	}
	for _, li := range c.items {
		s.Items = append(s.Items, li.toSnapshot())
	}
	return s
}

func (li *LineItem) toSnapshot() ItemSnapshot {
	return ItemSnapshot{
		ID:              li.id,
		CartID:          li.cartID,
		Product:         li.product,
		Quantity:        li.quantity,
		UnitPriceCents:  li.unitPrice.Cents(),
		TotalPriceCents: li.TotalPrice().Cents(),
		Attributes:      li.attributes.Clone(),
		Unavailable:     li.unavailable,
		AddedAt:         li.addedAt,
		UpdatedAt:       li.updatedAt,
	}
}

// FromSnapshot rebuilds a cart, rejecting snapshots that break the
// aggregate's invariants.
func FromSnapshot(s Snapshot) (*Cart, error) {
	owner, err := NewOwnerRef(s.UserID, s.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if !s.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidSnapshot, s.Status)
	}
	currency, err := money.NewCurrency(s.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	c := &Cart{
		id:       s.ID,
		owner:    owner,
		status:   s.Status,
		currency: currency,
		items:    make([]*LineItem, 0, len(s.Items)),
		coupons:  append([]AppliedCoupon(nil), s.Coupons...),
		totals: Totals{
			Subtotal:     money.FromCents(s.SubtotalCents),
			Discount:     money.FromCents(s.DiscountCents),
			Tax:          money.FromCents(s.TaxCents),
			Shipping:     money.FromCents(s.ShippingCents),
			Total:        money.FromCents(s.TotalCents),
			FreeShipping: s.FreeShipping,
		},
		expiresAt:        copyTime(s.ExpiresAt),
		pricesVerifiedAt: copyTime(s.PricesVerifiedAt),
		version:          s.Version,
		createdAt:        s.CreatedAt,
		updatedAt:        s.UpdatedAt,
	}
	if s.ShippingAddress != nil {
		a := *s.ShippingAddress
		c.shippingAddress = &a
	}
	for _, is := range s.Items {
		if is.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %s has quantity %d", ErrInvalidSnapshot, is.ID, is.Quantity)
		}
		li, err := newLineItem(is.ID, s.ID, is.Product, is.Quantity, money.FromCents(is.UnitPriceCents), Attributes(is.Attributes), is.AddedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: item %s: %w", ErrInvalidSnapshot, is.ID, err)
		}
		li.unavailable = is.Unavailable
		li.updatedAt = is.UpdatedAt
		c.items = append(c.items, li)
	}
	if _, err := c.Subtotal(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return c, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
