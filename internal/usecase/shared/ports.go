package shared

//go:generate mockgen -source=ports.go -destination=../../../tests/mock/shared/ports.go -package=sharedmock

import (
	"context"
	"time"

	"cart-engine/internal/domain/cart"
	"cart-engine/internal/domain/coupon"
	"cart-engine/internal/domain/money"
	"cart-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	// ErrVersionConflict is returned by CartRepository.Save when a cart was
	// modified since it was loaded.
	ErrVersionConflict = errs.New("cart version conflict")
	// ErrActiveCartExists is returned when saving a new active cart for an
	// owner that already has one.
	ErrActiveCartExists = errs.New("owner already has an active cart")
)

type CartRepository interface {
	// Load returns errs.ErrCartNotFound when the cart does not exist.
	Load(ctx context.Context, id uuid.UUID) (*cart.Cart, error)
	// LoadActiveForOwner returns errs.ErrCartNotFound when the owner has no active cart.
	LoadActiveForOwner(ctx context.Context, owner cart.OwnerRef) (*cart.Cart, error)
	// Save persists every cart atomically, each conditional on the version it
	// was loaded at, and advances their versions on success.
	Save(ctx context.Context, carts ...*cart.Cart) error
}

type CouponValidator interface {
	// Validate returns the coupon's rule, or an error marked
	// errs.ErrInvalidCoupon carrying the rejection reason.
	Validate(ctx context.Context, code coupon.Code, subtotal money.Money, currency money.Currency, owner cart.OwnerRef) (coupon.Rule, error)
}

type TaxEngine interface {
	// ComputeTax is called with the post-discount subtotal.
	ComputeTax(ctx context.Context, taxable money.Money, currency money.Currency, address *cart.Address) (money.Money, error)
}

type ShippingInput struct {
	Subtotal  money.Money
	ItemCount int
	Currency  money.Currency
	Address   *cart.Address
}

type ShippingEngine interface {
	ComputeShipping(ctx context.Context, in ShippingInput) (money.Money, error)
}

type ProductCatalog interface {
	// CurrentPrice reports an unknown product as unavailable rather than failing.
	CurrentPrice(ctx context.Context, productID string, currency money.Currency) (cart.PriceQuote, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type IdempotencyStore interface {
	// Reserve returns false when key was already reserved and has not expired.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// CartSnapshotCache holds the last committed snapshot of each cart.
type CartSnapshotCache interface {
	Get(ctx context.Context, id uuid.UUID) (*cart.Snapshot, bool, error)
	Put(ctx context.Context, snapshot cart.Snapshot) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}
