package commands

import (
	"cart-engine/internal/domain/cart"

	"github.com/google/uuid"
)

// ExpectedVersion, when set, makes a mutation fail with
// errs.ErrConcurrentModification instead of retrying if the cart moved on.

type GetOrCreateRequest struct {
	Owner    cart.OwnerRef
	Currency string
}

type AddItemRequest struct {
	CartID          uuid.UUID
	ProductID       string
	Name            string
	SKU             string
	ImageURL        string
	Quantity        int
	UnitPriceCents  int64
	Attributes      map[string]string
	IdempotencyKey  string
	ExpectedVersion *int64
}

type UpdateItemQuantityRequest struct {
	CartID          uuid.UUID
	ItemID          uuid.UUID
	Quantity        int
	ExpectedVersion *int64
}

type RemoveItemRequest struct {
	CartID          uuid.UUID
	ItemID          uuid.UUID
	ExpectedVersion *int64
}

type ApplyCouponRequest struct {
	CartID          uuid.UUID
	Code            string
	ExpectedVersion *int64
}

type RemoveCouponRequest struct {
	CartID          uuid.UUID
	Code            string
	ExpectedVersion *int64
}

type SetShippingAddressRequest struct {
	CartID          uuid.UUID
	Line1           string
	Line2           string
	City            string
	Region          string
	PostalCode      string
	Country         string
	ExpectedVersion *int64
}

type RepriceRequest struct {
	CartID          uuid.UUID
	ExpectedVersion *int64
}

type MergeRequest struct {
	SourceCartID          uuid.UUID
	TargetCartID          uuid.UUID
	ExpectedTargetVersion *int64
}

type CheckoutRequest struct {
	CartID          uuid.UUID
	ExpectedVersion *int64
}

type RepriceResult struct {
	Cart       cart.Snapshot
	StaleItems []cart.ItemSnapshot
}

type MergeResult struct {
	Target   cart.Snapshot
	Source   cart.Snapshot
	Warnings []cart.MergeWarning
}
