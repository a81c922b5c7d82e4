package response

import (
	"time"

	"cart-engine/internal/domain/cart"
	"cart-engine/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type CartResponse struct {
	ID               uuid.UUID        `json:"id"`
	UserID           string           `json:"user_id,omitempty"`
	SessionID        string           `json:"session_id,omitempty"`
	Status           string           `json:"status"`
	Currency         string           `json:"currency"`
	Items            []ItemResponse   `json:"items" copier:"-"`
	Coupons          []CouponResponse `json:"coupons" copier:"-"`
	ShippingAddress  *AddressResponse `json:"shipping_address,omitempty" copier:"-"`
	SubtotalCents    int64            `json:"subtotal_cents"`
	DiscountCents    int64            `json:"discount_cents"`
	TaxCents         int64            `json:"tax_cents"`
	ShippingCents    int64            `json:"shipping_cents"`
	TotalCents       int64            `json:"total_cents"`
	FreeShipping     bool             `json:"free_shipping"`
	ExpiresAt        *time.Time       `json:"expires_at,omitempty"`
	PricesVerifiedAt *time.Time       `json:"prices_verified_at,omitempty"`
	Version          int64            `json:"version"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type ItemResponse struct {
	ID              uuid.UUID         `json:"id"`
	ProductID       string            `json:"product_id"`
	ProductName     string            `json:"product_name"`
	SKU             string            `json:"sku,omitempty"`
	ImageURL        string            `json:"image_url,omitempty"`
	Quantity        int               `json:"quantity"`
	UnitPriceCents  int64             `json:"unit_price_cents"`
	TotalPriceCents int64             `json:"total_price_cents"`
	Attributes      map[string]string `json:"attributes,omitempty"`
	Unavailable     bool              `json:"unavailable"`
	AddedAt         time.Time         `json:"added_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type CouponResponse struct {
	Code           string    `json:"code"`
	Kind           string    `json:"kind"`
	PercentOff     string    `json:"percent_off,omitempty"`
	AmountOffCents int64     `json:"amount_off_cents,omitempty"`
	Stackable      bool      `json:"stackable"`
	AppliedAt      time.Time `json:"applied_at"`
}

type AddressResponse struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type RepriceResponse struct {
	Cart       *CartResponse  `json:"cart"`
	StaleItems []ItemResponse `json:"stale_items"`
}

type MergeWarningResponse struct {
	ItemID    uuid.UUID `json:"item_id"`
	ProductID string    `json:"product_id"`
	Requested int       `json:"requested_quantity"`
	Applied   int       `json:"applied_quantity"`
}

type MergeResponse struct {
	Target   *CartResponse          `json:"target"`
	Source   *CartResponse          `json:"source"`
	Warnings []MergeWarningResponse `json:"warnings"`
}

func FromSnapshot(s *cart.Snapshot) *CartResponse {
	res := &CartResponse{}
	// Scalar fields share names with the snapshot; nested ones are mapped below.
	_ = copier.Copy(res, s)
	res.Status = s.Status.String()
	res.Items = fromItems(s.Items)
	res.Coupons = make([]CouponResponse, len(s.Coupons))
	for i, applied := range s.Coupons {
		res.Coupons[i] = fromCoupon(applied)
	}
	if s.ShippingAddress != nil {
		addr := AddressResponse(*s.ShippingAddress)
		res.ShippingAddress = &addr
	}
	return res
}

func FromRepriceResult(r *commands.RepriceResult) *RepriceResponse {
	return &RepriceResponse{
		Cart:       FromSnapshot(&r.Cart),
		StaleItems: fromItems(r.StaleItems),
	}
}

func FromMergeResult(r *commands.MergeResult) *MergeResponse {
	warnings := make([]MergeWarningResponse, len(r.Warnings))
	for i, w := range r.Warnings {
		_ = copier.Copy(&warnings[i], &w)
	}
	return &MergeResponse{
		Target:   FromSnapshot(&r.Target),
		Source:   FromSnapshot(&r.Source),
		Warnings: warnings,
	}
}

func fromItems(items []cart.ItemSnapshot) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i := range items {
		_ = copier.Copy(&out[i], &items[i])
		out[i].ProductID = items[i].Product.ID
		out[i].ProductName = items[i].Product.Name
		out[i].SKU = items[i].Product.SKU
		out[i].ImageURL = items[i].Product.ImageURL
	}
	return out
}

func fromCoupon(a cart.AppliedCoupon) CouponResponse {
	res := CouponResponse{
		Code:           a.Rule.Code.String(),
		Kind:           string(a.Rule.Kind),
		AmountOffCents: a.Rule.AmountOff,
		Stackable:      a.Rule.Stackable,
		AppliedAt:      a.AppliedAt,
	}
	if !a.Rule.PercentOff.IsZero() {
		res.PercentOff = a.Rule.PercentOff.String()
	}
	return res
}
