package request

import (
	"cart-engine/internal/domain/cart"
	"cart-engine/internal/domain/money"
	"cart-engine/internal/pkg/errs"
	"cart-engine/internal/pkg/patch"
	"cart-engine/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateCartRequest struct {
	Currency string `json:"currency" binding:"omitempty,len=3"`
}

type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required,max=128"`
	Name      string `json:"name" binding:"max=255"`
	SKU       string `json:"sku" binding:"max=64"`
	ImageURL  string `json:"image_url" binding:"omitempty,url"`
	Quantity  int    `json:"quantity" binding:"required"`
	// Decimal amount in major units, e.g. "19.99".
	UnitPrice  string            `json:"unit_price" binding:"required,max=32" example:"19.99"`
	Attributes map[string]string `json:"attributes"`
}

// Quantity 0 removes the line, so it cannot be bound with "required".
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required,max=32"`
}

type ShippingAddressRequest struct {
	Line1      string `json:"line1" binding:"max=255"`
	Line2      string `json:"line2" binding:"max=255"`
	City       string `json:"city" binding:"max=128"`
	Region     string `json:"region" binding:"max=128"`
	PostalCode string `json:"postal_code" binding:"max=32"`
	Country    string `json:"country" binding:"required,len=2"`
}

type PatchShippingAddressRequest struct {
	Line1      *string `json:"line1" binding:"omitempty,max=255"`
	Line2      *string `json:"line2" binding:"omitempty,max=255"`
	City       *string `json:"city" binding:"omitempty,max=128"`
	Region     *string `json:"region" binding:"omitempty,max=128"`
	PostalCode *string `json:"postal_code" binding:"omitempty,max=32"`
	Country    *string `json:"country" binding:"omitempty,len=2"`
}

type MergeRequest struct {
	SourceCartID uuid.UUID `json:"source_cart_id" binding:"required"`
}

func (r *AddItemRequest) ToCommand(cartID uuid.UUID, idempotencyKey string, expected *int64) (commands.AddItemRequest, error) {
	price, err := money.Parse(r.UnitPrice)
	if err != nil {
		return commands.AddItemRequest{}, errs.WithReasonf(errs.Mark(err, errs.ErrInvalidPrice), "unit_price %q is not a valid amount", r.UnitPrice)
	}
	return commands.AddItemRequest{
		CartID:          cartID,
		ProductID:       r.ProductID,
		Name:            r.Name,
		SKU:             r.SKU,
		ImageURL:        r.ImageURL,
		Quantity:        r.Quantity,
		UnitPriceCents:  price.Cents(),
		Attributes:      r.Attributes,
		IdempotencyKey:  idempotencyKey,
		ExpectedVersion: expected,
	}, nil
}

func (r *ShippingAddressRequest) ToCommand(cartID uuid.UUID, expected *int64) commands.SetShippingAddressRequest {
	return commands.SetShippingAddressRequest{
		CartID:          cartID,
		Line1:           r.Line1,
		Line2:           r.Line2,
		City:            r.City,
		Region:          r.Region,
		PostalCode:      r.PostalCode,
		Country:         r.Country,
		ExpectedVersion: expected,
	}
}

// ToCommand overlays the patch on the cart's current address. A cart
// without an address starts from an empty one.
func (r *PatchShippingAddressRequest) ToCommand(cartID uuid.UUID, existing *cart.Address, expected *int64) commands.SetShippingAddressRequest {
	var base cart.Address
	if existing != nil {
		base = *existing
	}
	return commands.SetShippingAddressRequest{
		CartID:          cartID,
		Line1:           patch.Coalesce(r.Line1, base.Line1),
		Line2:           patch.Coalesce(r.Line2, base.Line2),
		City:            patch.Coalesce(r.City, base.City),
		Region:          patch.Coalesce(r.Region, base.Region),
		PostalCode:      patch.Coalesce(r.PostalCode, base.PostalCode),
		Country:         patch.Coalesce(r.Country, base.Country),
		ExpectedVersion: expected,
	}
}
