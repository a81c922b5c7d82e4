//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cart-engine/internal/domain/cart"
	"cart-engine/internal/domain/coupon"
	"cart-engine/internal/domain/money"
	"cart-engine/internal/infra/memstore"
	"cart-engine/internal/infra/messaging"
	"cart-engine/internal/infra/pricing"
	"cart-engine/internal/pkg/clock"
	"cart-engine/internal/pkg/config"
	"cart-engine/internal/pkg/errs"
	"cart-engine/internal/usecase/commands"
	"cart-engine/internal/usecase/shared"
	"cart-engine/tests/common/builder"
	"cart-engine/tests/common/helper"
	sharedmock "cart-engine/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"
)

type engineFixture struct {
	cmds     commands.CartCommands
	store    *memstore.CartStore
	cache    *memstore.SnapshotCache
	events   *messaging.RecordingPublisher
	clock    *clock.MockClock
	coupons  *sharedmock.MockCouponValidator
	catalog  *sharedmock.MockProductCatalog
	cfg      config.Config
	tax      shared.TaxEngine
	shipping shared.ShippingEngine
}

type fixtureOption func(f *engineFixture)

func withTax(t shared.TaxEngine) fixtureOption {
	return func(f *engineFixture) { f.tax = t }
}

func withMaxQuantity(n int) fixtureOption {
	return func(f *engineFixture) { f.cfg.Cart.MaxLineQuantity = n }
}

func newEngineFixture(t *testing.T, opts ...fixtureOption) *engineFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &engineFixture{
		store:    memstore.NewCartStore(),
		cache:    memstore.NewSnapshotCache(),
		events:   messaging.NewRecordingPublisher(),
		clock:    clock.NewMockClock(builder.DefaultNow),
		coupons:  sharedmock.NewMockCouponValidator(ctrl),
		catalog:  sharedmock.NewMockProductCatalog(ctrl),
		cfg:      config.NewTestConfig(),
		tax:      pricing.NewFlatTaxEngine(config.PricingConfig{}),
		shipping: pricing.NewFlatShippingEngine(config.PricingConfig{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.cmds = commands.NewCartCommands(
		f.store,
		f.coupons,
		f.tax,
		f.shipping,
		f.catalog,
		f.events,
		memstore.NewIdempotencyStore(f.clock),
		f.cache,
		f.clock,
		f.cfg,
		helper.DiscardLogger(),
	)
	return f
}

func (f *engineFixture) newCart(t *testing.T, owner cart.OwnerRef) *cart.Snapshot {
	t.Helper()
	snap, err := f.cmds.GetOrCreateCart(context.Background(), commands.GetOrCreateRequest{Owner: owner})
	require.NoError(t, err)
	return snap
}

func (f *engineFixture) addItem(t *testing.T, cartID uuid.UUID, productID string, qty int, unitCents int64) *cart.Snapshot {
	t.Helper()
	snap, err := f.cmds.AddItem(context.Background(), commands.AddItemRequest{
		CartID:         cartID,
		ProductID:      productID,
		Name:           "Product " + productID,
		Quantity:       qty,
		UnitPriceCents: unitCents,
	})
	require.NoError(t, err)
	return snap
}

func userOwner(t *testing.T, id string) cart.OwnerRef {
	t.Helper()
	o, err := cart.UserOwner(id)
	require.NoError(t, err)
	return o
}

func sessionOwner(t *testing.T, id string) cart.OwnerRef {
	t.Helper()
	o, err := cart.SessionOwner(id)
	require.NoError(t, err)
	return o
}

// blockUntilDone simulates a collaborator that never answers.
func blockUntilDone[T any](ctx context.Context) (T, error) {
	var zero T
	<-ctx.Done()
	return zero, ctx.Err()
}

func TestGetOrCreateCart(t *testing.T) {
	ctx := context.Background()

	t.Run("success: creates one active cart per owner", func(t *testing.T) {
		f := newEngineFixture(t)
		owner := userOwner(t, "user-1")

		first := f.newCart(t, owner)
		second := f.newCart(t, owner)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, cart.StatusActive, first.Status)
		assert.Equal(t, "USD", first.Currency)
		assert.Equal(t, int64(1), first.Version)
		assert.Nil(t, first.ExpiresAt, "user carts never expire by default")
		assert.Equal(t, []shared.EventType{shared.EventCartCreated}, f.events.Types())
	})

	t.Run("success: anonymous carts get the anonymous ttl", func(t *testing.T) {
		f := newEngineFixture(t)

		snap := f.newCart(t, sessionOwner(t, "sess-1"))

		require.NotNil(t, snap.ExpiresAt)
		assert.Equal(t, builder.DefaultNow.Add(f.cfg.Cart.AnonymousTTL), *snap.ExpiresAt)
	})

	t.Run("success: an expired cart is replaced by a new one", func(t *testing.T) {
		f := newEngineFixture(t)
		owner := sessionOwner(t, "sess-2")
		old := f.newCart(t, owner)

		f.clock.Add(f.cfg.Cart.AnonymousTTL + time.Minute)
		fresh := f.newCart(t, owner)

		assert.NotEqual(t, old.ID, fresh.ID)
		stored, err := f.store.Load(ctx, old.ID)
		require.NoError(t, err)
		assert.Equal(t, cart.StatusExpired, stored.Status())
		assert.Equal(t, []shared.EventType{shared.EventCartCreated, shared.EventCartExpired, shared.EventCartCreated}, f.events.Types())
	})

	t.Run("error: unknown currency", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.cmds.GetOrCreateCart(ctx, commands.GetOrCreateRequest{Owner: userOwner(t, "user-1"), Currency: "US"})
		assert.ErrorIs(t, err, errs.ErrInvalidCurrency)
	})

	t.Run("error: missing owner", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.cmds.GetOrCreateCart(ctx, commands.GetOrCreateRequest{})
		assert.ErrorIs(t, err, errs.ErrInvalidOwner)
	})
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("success: same variant merges into one line and totals follow", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))

		f.addItem(t, c.ID, "A", 2, 1000)
		snap := f.addItem(t, c.ID, "A", 1, 1000)

		require.Len(t, snap.Items, 1)
		assert.Equal(t, 3, snap.Items[0].Quantity)
		assert.Equal(t, int64(3000), snap.SubtotalCents)
		assert.Equal(t, int64(3000), snap.TotalCents)
		assert.Equal(t, int64(3), snap.Version)
		assert.Equal(t, []shared.EventType{shared.EventCartCreated, shared.EventItemAdded, shared.EventItemAdded}, f.events.Types())
	})

	t.Run("success: different attributes make separate lines", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))

		_, err := f.cmds.AddItem(ctx, commands.AddItemRequest{CartID: c.ID, ProductID: "A", Quantity: 1, UnitPriceCents: 500, Attributes: map[string]string{"size": "M"}})
		require.NoError(t, err)
		snap, err := f.cmds.AddItem(ctx, commands.AddItemRequest{CartID: c.ID, ProductID: "A", Quantity: 1, UnitPriceCents: 500, Attributes: map[string]string{"size": "L"}})
		require.NoError(t, err)

		assert.Len(t, snap.Items, 2)
		assert.Equal(t, int64(1000), snap.SubtotalCents)
	})

	t.Run("success: write-through keeps the snapshot cache current", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))
		snap := f.addItem(t, c.ID, "A", 1, 1000)

		cached, ok, err := f.cache.Get(ctx, c.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, snap.Version, cached.Version)
	})

	t.Run("success: replay with the same idempotency key adds once", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))
		req := commands.AddItemRequest{CartID: c.ID, ProductID: "A", Quantity: 2, UnitPriceCents: 1000, IdempotencyKey: "req-1"}

		first, err := f.cmds.AddItem(ctx, req)
		require.NoError(t, err)
		replay, err := f.cmds.AddItem(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, first.Version, replay.Version)
		require.Len(t, replay.Items, 1)
		assert.Equal(t, 2, replay.Items[0].Quantity)
	})

	t.Run("success: a failed attempt releases its idempotency key", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))

		_, err := f.cmds.AddItem(ctx, commands.AddItemRequest{CartID: c.ID, ProductID: "A", Quantity: 500, UnitPriceCents: 1000, IdempotencyKey: "req-2"})
		require.ErrorIs(t, err, errs.ErrInvalidQuantity)

		snap, err := f.cmds.AddItem(ctx, commands.AddItemRequest{CartID: c.ID, ProductID: "A", Quantity: 1, UnitPriceCents: 1000, IdempotencyKey: "req-2"})
		require.NoError(t, err)
		assert.Len(t, snap.Items, 1)
	})

	cases := []struct {
		name    string
		req     func(id uuid.UUID) commands.AddItemRequest
		wantErr error
	}{
		{
			name:    "zero quantity",
			req:     func(id uuid.UUID) commands.AddItemRequest { return commands.AddItemRequest{CartID: id, ProductID: "A", UnitPriceCents: 100} },
			wantErr: errs.ErrInvalidQuantity,
		},
		{
			name: "quantity above the line maximum",
			req: func(id uuid.UUID) commands.AddItemRequest {
				return commands.AddItemRequest{CartID: id, ProductID: "A", Quantity: 100, UnitPriceCents: 100}
			},
			wantErr: errs.ErrInvalidQuantity,
		},
		{
			name: "negative price",
			req: func(id uuid.UUID) commands.AddItemRequest {
				return commands.AddItemRequest{CartID: id, ProductID: "A", Quantity: 1, UnitPriceCents: -1}
			},
			wantErr: errs.ErrInvalidPrice,
		},
		{
			name: "unit price above the configured ceiling",
			req: func(id uuid.UUID) commands.AddItemRequest {
				return commands.AddItemRequest{CartID: id, ProductID: "A", Quantity: 1, UnitPriceCents: config.NewTestConfig().Cart.MaxUnitPriceCents + 1}
			},
			wantErr: errs.ErrInvalidPrice,
		},
		{
			name: "line total that would overflow",
			req: func(id uuid.UUID) commands.AddItemRequest {
				return commands.AddItemRequest{CartID: id, ProductID: "A", Quantity: 2, UnitPriceCents: 5_000_000_000_000_000_000}
			},
			wantErr: errs.ErrInvalidPrice,
		},
		{
			name:    "missing product",
			req:     func(id uuid.UUID) commands.AddItemRequest { return commands.AddItemRequest{CartID: id, Quantity: 1} },
			wantErr: errs.ErrInvalidAttributes,
		},
		{
			name: "unknown cart",
			req: func(uuid.UUID) commands.AddItemRequest {
				return commands.AddItemRequest{CartID: uuid.New(), ProductID: "A", Quantity: 1}
			},
			wantErr: errs.ErrCartNotFound,
		},
	}
	for _, tc := range cases {
		t.Run("error: "+tc.name, func(t *testing.T) {
			f := newEngineFixture(t)
			c := f.newCart(t, userOwner(t, "user-1"))

			_, err := f.cmds.AddItem(ctx, tc.req(c.ID))
			require.ErrorIs(t, err, tc.wantErr)

			stored, lerr := f.store.Load(ctx, c.ID)
			require.NoError(t, lerr)
			assert.Equal(t, c.Version, stored.Version(), "failed mutation must not persist")
		})
	}

	t.Run("success: a price at the ceiling is accepted at full quantity", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))
		ceiling := f.cfg.Cart.MaxUnitPriceCents

		snap := f.addItem(t, c.ID, "A", f.cfg.Cart.MaxLineQuantity, ceiling)
		assert.Equal(t, ceiling*int64(f.cfg.Cart.MaxLineQuantity), snap.SubtotalCents)
		assert.Positive(t, snap.TotalCents)
	})

	t.Run("error: stale expected version fails without retry", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))
		f.addItem(t, c.ID, "A", 1, 1000)

		stale := c.Version
		_, err := f.cmds.AddItem(ctx, commands.AddItemRequest{CartID: c.ID, ProductID: "B", Quantity: 1, UnitPriceCents: 100, ExpectedVersion: &stale})
		assert.ErrorIs(t, err, errs.ErrConcurrentModification)
	})
}

func TestUpdateAndRemoveItem(t *testing.T) {
	ctx := context.Background()

	t.Run("success: quantity zero removes the line", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))
		snap := f.addItem(t, c.ID, "A", 2, 1000)

		snap, err := f.cmds.UpdateItemQuantity(ctx, commands.UpdateItemQuantityRequest{CartID: c.ID, ItemID: snap.Items[0].ID, Quantity: 0})
		require.NoError(t, err)

		assert.Empty(t, snap.Items)
		assert.Equal(t, int64(0), snap.TotalCents)
		assert.Equal(t, shared.EventItemRemoved, f.events.Types()[len(f.events.Types())-1])
	})

	t.Run("success: quantity update recomputes totals", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))
		snap := f.addItem(t, c.ID, "A", 2, 1000)

		snap, err := f.cmds.UpdateItemQuantity(ctx, commands.UpdateItemQuantityRequest{CartID: c.ID, ItemID: snap.Items[0].ID, Quantity: 5})
		require.NoError(t, err)

		assert.Equal(t, int64(5000), snap.SubtotalCents)
	})

	t.Run("success: removing a missing line leaves the cart unchanged", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))
		before := f.addItem(t, c.ID, "A", 1, 1000)

		snap, err := f.cmds.RemoveItem(ctx, commands.RemoveItemRequest{CartID: c.ID, ItemID: uuid.New()})
		require.NoError(t, err)

		assert.Equal(t, before.Version, snap.Version)
	})

	t.Run("error: unknown item", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))

		_, err := f.cmds.UpdateItemQuantity(ctx, commands.UpdateItemQuantityRequest{CartID: c.ID, ItemID: uuid.New(), Quantity: 1})
		assert.ErrorIs(t, err, errs.ErrItemNotFound)
	})
}

func TestApplyCoupon(t *testing.T) {
	ctx := context.Background()

	t.Run("success: SAVE10 takes ten percent off", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))
		f.addItem(t, c.ID, "A", 3, 1000)

		f.coupons.EXPECT().
			Validate(gomock.Any(), coupon.Code("SAVE10"), money.FromCents(3000), money.Currency("USD"), gomock.Any()).
			Return(builder.PercentRule("SAVE10", 10, 0, false), nil)

		snap, err := f.cmds.ApplyCoupon(ctx, commands.ApplyCouponRequest{CartID: c.ID, Code: "save10"})
		require.NoError(t, err)

		assert.Equal(t, int64(3000), snap.SubtotalCents)
		assert.Equal(t, int64(300), snap.DiscountCents)
		assert.Equal(t, int64(2700), snap.TotalCents)
		require.Len(t, snap.Coupons, 1)
		assert.Equal(t, coupon.Code("SAVE10"), snap.Coupons[0].Rule.Code)
	})

	t.Run("success: removing the coupon restores the total", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))
		f.addItem(t, c.ID, "A", 3, 1000)
		f.coupons.EXPECT().Validate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(builder.PercentRule("SAVE10", 10, 0, false), nil)
		_, err := f.cmds.ApplyCoupon(ctx, commands.ApplyCouponRequest{CartID: c.ID, Code: "SAVE10"})
		require.NoError(t, err)

		snap, err := f.cmds.RemoveCoupon(ctx, commands.RemoveCouponRequest{CartID: c.ID, Code: "SAVE10"})
		require.NoError(t, err)

		assert.Empty(t, snap.Coupons)
		assert.Equal(t, int64(3000), snap.TotalCents)
	})

	t.Run("error: validator rejection carries its reason", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))
		f.coupons.EXPECT().Validate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(coupon.Rule{}, errs.WithReason(errs.ErrInvalidCoupon, "coupon has expired"))

		_, err := f.cmds.ApplyCoupon(ctx, commands.ApplyCouponRequest{CartID: c.ID, Code: "OLD10"})

		require.ErrorIs(t, err, errs.ErrInvalidCoupon)
		assert.Contains(t, errs.Reasons(err), "coupon has expired")
	})

	t.Run("error: malformed code never reaches the validator", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))

		_, err := f.cmds.ApplyCoupon(ctx, commands.ApplyCouponRequest{CartID: c.ID, Code: "!"})
		assert.ErrorIs(t, err, errs.ErrInvalidCoupon)
	})

	t.Run("error: validator timeout leaves the cart unchanged", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))
		before := f.addItem(t, c.ID, "A", 1, 1000)
		f.coupons.EXPECT().Validate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ coupon.Code, _ money.Money, _ money.Currency, _ cart.OwnerRef) (coupon.Rule, error) {
				return blockUntilDone[coupon.Rule](ctx)
			})

		_, err := f.cmds.ApplyCoupon(ctx, commands.ApplyCouponRequest{CartID: c.ID, Code: "SAVE10"})
		require.ErrorIs(t, err, errs.ErrCollaboratorTimeout)

		stored, lerr := f.store.Load(ctx, c.ID)
		require.NoError(t, lerr)
		assert.Equal(t, before.Version, stored.Version())
		assert.Empty(t, stored.Coupons())
	})
}

func TestRecalculationTimeout(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	tax := sharedmock.NewMockTaxEngine(ctrl)
	f := newEngineFixture(t, withTax(tax))
	c := f.newCart(t, userOwner(t, "user-1"))

	tax.EXPECT().ComputeTax(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ money.Money, _ money.Currency, _ *cart.Address) (money.Money, error) {
			return blockUntilDone[money.Money](ctx)
		})

	_, err := f.cmds.AddItem(ctx, commands.AddItemRequest{CartID: c.ID, ProductID: "A", Quantity: 1, UnitPriceCents: 1000})
	require.ErrorIs(t, err, errs.ErrCollaboratorTimeout)

	stored, lerr := f.store.Load(ctx, c.ID)
	require.NoError(t, lerr)
	assert.Equal(t, c.Version, stored.Version())
	assert.True(t, stored.IsEmpty())
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()

	t.Run("error: mutation on an overdue cart persists the flip and fails", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, sessionOwner(t, "sess-1"))
		f.addItem(t, c.ID, "A", 1, 1000)

		f.clock.Add(f.cfg.Cart.AnonymousTTL + time.Second)
		_, err := f.cmds.AddItem(ctx, commands.AddItemRequest{CartID: c.ID, ProductID: "B", Quantity: 1, UnitPriceCents: 100})
		require.ErrorIs(t, err, errs.ErrCartExpired)

		stored, lerr := f.store.Load(ctx, c.ID)
		require.NoError(t, lerr)
		assert.Equal(t, cart.StatusExpired, stored.Status())
		assert.Len(t, stored.Items(), 1)
		assert.Contains(t, f.events.Types(), shared.EventCartExpired)
	})

	t.Run("error: a cart already stored as expired is not mutable", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, sessionOwner(t, "sess-1"))
		f.clock.Add(f.cfg.Cart.AnonymousTTL + time.Hour)

		// The request that observes the deadline pass reports the expiry.
		_, err := f.cmds.Checkout(ctx, commands.CheckoutRequest{CartID: c.ID})
		require.ErrorIs(t, err, errs.ErrCartExpired)

		_, err = f.cmds.SetShippingAddress(ctx, commands.SetShippingAddressRequest{CartID: c.ID, Country: "US"})
		require.ErrorIs(t, err, errs.ErrCartNotMutable)
		assert.NotErrorIs(t, err, errs.ErrCartExpired)
		_, err = f.cmds.AddItem(ctx, commands.AddItemRequest{CartID: c.ID, ProductID: "A", Quantity: 1, UnitPriceCents: 100})
		require.ErrorIs(t, err, errs.ErrCartNotMutable)
	})

	t.Run("success: the deadline instant itself is still live", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, sessionOwner(t, "sess-1"))
		f.clock.Add(f.cfg.Cart.AnonymousTTL)

		snap, err := f.cmds.AddItem(ctx, commands.AddItemRequest{CartID: c.ID, ProductID: "A", Quantity: 1, UnitPriceCents: 100})
		require.NoError(t, err)
		assert.Equal(t, cart.StatusActive, snap.Status)
		assert.NotContains(t, f.events.Types(), shared.EventCartExpired)
	})
}

func TestMergeInto(t *testing.T) {
	ctx := context.Background()

	t.Run("success: duplicate lines are clamped with a warning", func(t *testing.T) {
		f := newEngineFixture(t, withMaxQuantity(4))
		source := f.newCart(t, sessionOwner(t, "sess-1"))
		target := f.newCart(t, userOwner(t, "user-1"))
		f.addItem(t, source.ID, "A", 2, 1000)
		f.addItem(t, source.ID, "B", 1, 500)
		f.addItem(t, target.ID, "A", 3, 1000)

		res, err := f.cmds.MergeInto(ctx, commands.MergeRequest{SourceCartID: source.ID, TargetCartID: target.ID})
		require.NoError(t, err)

		assert.Equal(t, cart.StatusMerged, res.Source.Status)
		assert.Empty(t, res.Source.Items)
		require.Len(t, res.Target.Items, 2)
		assert.Equal(t, 4, res.Target.Items[0].Quantity)
		assert.Equal(t, 1, res.Target.Items[1].Quantity)
		assert.Equal(t, int64(4500), res.Target.SubtotalCents)
		require.Len(t, res.Warnings, 1)
		assert.Equal(t, "A", res.Warnings[0].ProductID)
		assert.Equal(t, 5, res.Warnings[0].Requested)
		assert.Equal(t, 4, res.Warnings[0].Applied)
		assert.Contains(t, f.events.Types(), shared.EventCartMerged)
	})

	t.Run("error: merged source accepts no further mutation", func(t *testing.T) {
		f := newEngineFixture(t)
		source := f.newCart(t, sessionOwner(t, "sess-1"))
		target := f.newCart(t, userOwner(t, "user-1"))
		_, err := f.cmds.MergeInto(ctx, commands.MergeRequest{SourceCartID: source.ID, TargetCartID: target.ID})
		require.NoError(t, err)

		_, err = f.cmds.AddItem(ctx, commands.AddItemRequest{CartID: source.ID, ProductID: "A", Quantity: 1})
		assert.ErrorIs(t, err, errs.ErrCartNotMutable)
	})

	t.Run("error: same cart", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))

		_, err := f.cmds.MergeInto(ctx, commands.MergeRequest{SourceCartID: c.ID, TargetCartID: c.ID})
		assert.ErrorIs(t, err, errs.ErrSameCart)
	})

	t.Run("error: currency mismatch persists nothing", func(t *testing.T) {
		f := newEngineFixture(t)
		source, err := f.cmds.GetOrCreateCart(ctx, commands.GetOrCreateRequest{Owner: sessionOwner(t, "sess-1"), Currency: "EUR"})
		require.NoError(t, err)
		target := f.newCart(t, userOwner(t, "user-1"))

		_, err = f.cmds.MergeInto(ctx, commands.MergeRequest{SourceCartID: source.ID, TargetCartID: target.ID})
		require.ErrorIs(t, err, errs.ErrCurrencyMismatch)

		stored, lerr := f.store.Load(ctx, source.ID)
		require.NoError(t, lerr)
		assert.Equal(t, cart.StatusActive, stored.Status())
	})

	t.Run("error: expired source", func(t *testing.T) {
		f := newEngineFixture(t)
		source := f.newCart(t, sessionOwner(t, "sess-1"))
		target := f.newCart(t, userOwner(t, "user-1"))
		f.clock.Add(f.cfg.Cart.AnonymousTTL + time.Second)

		_, err := f.cmds.MergeInto(ctx, commands.MergeRequest{SourceCartID: source.ID, TargetCartID: target.ID})
		assert.ErrorIs(t, err, errs.ErrCartExpired)
	})
}

func TestRepriceAndCheckout(t *testing.T) {
	ctx := context.Background()
	address := commands.SetShippingAddressRequest{Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "us"}

	t.Run("success: clean reprice enables checkout", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))
		f.addItem(t, c.ID, "A", 2, 1000)
		address.CartID = c.ID
		_, err := f.cmds.SetShippingAddress(ctx, address)
		require.NoError(t, err)

		f.catalog.EXPECT().CurrentPrice(gomock.Any(), "A", money.Currency("USD")).
			Return(cart.PriceQuote{UnitPrice: money.FromCents(1200), Available: true}, nil)
		res, err := f.cmds.Reprice(ctx, commands.RepriceRequest{CartID: c.ID})
		require.NoError(t, err)
		assert.Empty(t, res.StaleItems)
		assert.Equal(t, int64(2400), res.Cart.SubtotalCents)
		require.NotNil(t, res.Cart.PricesVerifiedAt)

		snap, err := f.cmds.Checkout(ctx, commands.CheckoutRequest{CartID: c.ID})
		require.NoError(t, err)
		assert.Equal(t, cart.StatusConverted, snap.Status)
		assert.Equal(t, shared.EventCartConverted, f.events.Types()[len(f.events.Types())-1])

		_, err = f.cmds.Checkout(ctx, commands.CheckoutRequest{CartID: c.ID})
		assert.ErrorIs(t, err, errs.ErrCartNotMutable)
	})

	t.Run("error: unavailable items block checkout", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))
		f.addItem(t, c.ID, "A", 1, 1000)
		f.catalog.EXPECT().CurrentPrice(gomock.Any(), "A", gomock.Any()).Return(cart.PriceQuote{}, nil)

		res, err := f.cmds.Reprice(ctx, commands.RepriceRequest{CartID: c.ID})
		require.NoError(t, err)
		require.Len(t, res.StaleItems, 1)
		assert.True(t, res.StaleItems[0].Unavailable)

		_, err = f.cmds.Checkout(ctx, commands.CheckoutRequest{CartID: c.ID})
		require.ErrorIs(t, err, errs.ErrCheckoutPrecondition)
		assert.Contains(t, errs.Reasons(err), "cart has unavailable items")
	})

	t.Run("error: checkout requires a fresh reprice", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))
		f.addItem(t, c.ID, "A", 1, 1000)

		_, err := f.cmds.Checkout(ctx, commands.CheckoutRequest{CartID: c.ID})
		require.ErrorIs(t, err, errs.ErrCheckoutPrecondition)

		f.catalog.EXPECT().CurrentPrice(gomock.Any(), "A", gomock.Any()).
			Return(cart.PriceQuote{UnitPrice: money.FromCents(1000), Available: true}, nil)
		_, err = f.cmds.Reprice(ctx, commands.RepriceRequest{CartID: c.ID})
		require.NoError(t, err)

		f.clock.Add(f.cfg.Cart.CheckoutRepriceWindow + time.Second)
		_, err = f.cmds.Checkout(ctx, commands.CheckoutRequest{CartID: c.ID})
		require.ErrorIs(t, err, errs.ErrCheckoutPrecondition)
		assert.Contains(t, errs.Reasons(err), "price verification is stale")
	})

	t.Run("error: empty cart", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))

		_, err := f.cmds.Checkout(ctx, commands.CheckoutRequest{CartID: c.ID})
		assert.ErrorIs(t, err, errs.ErrCheckoutPrecondition)
	})

	t.Run("error: catalog failure aborts the reprice", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))
		before := f.addItem(t, c.ID, "A", 1, 1000)
		f.catalog.EXPECT().CurrentPrice(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(cart.PriceQuote{}, errs.Mark(errors.New("connection refused"), errs.ErrCollaboratorFailure))

		_, err := f.cmds.Reprice(ctx, commands.RepriceRequest{CartID: c.ID})
		require.ErrorIs(t, err, errs.ErrCollaboratorFailure)

		stored, lerr := f.store.Load(ctx, c.ID)
		require.NoError(t, lerr)
		assert.Equal(t, before.Version, stored.Version())
	})

	t.Run("error: a quote above the price ceiling aborts the reprice", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))
		before := f.addItem(t, c.ID, "A", 2, 1000)
		f.catalog.EXPECT().CurrentPrice(gomock.Any(), "A", gomock.Any()).
			Return(cart.PriceQuote{UnitPrice: money.FromCents(5_000_000_000_000_000_000), Available: true}, nil)

		_, err := f.cmds.Reprice(ctx, commands.RepriceRequest{CartID: c.ID})
		require.ErrorIs(t, err, errs.ErrInvalidPrice)

		stored, lerr := f.store.Load(ctx, c.ID)
		require.NoError(t, lerr)
		assert.Equal(t, before.Version, stored.Version())
		assert.Equal(t, int64(1000), stored.Items()[0].UnitPrice().Cents())
	})
}

func TestConcurrentMutations(t *testing.T) {
	ctx := context.Background()

	t.Run("error: two writers pinned to one version, exactly one wins", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))
		version := c.Version

		results := make([]error, 2)
		var g errgroup.Group
		for i, product := range []string{"A", "B"} {
			g.Go(func() error {
				_, results[i] = f.cmds.AddItem(ctx, commands.AddItemRequest{
					CartID: c.ID, ProductID: product, Quantity: 1, UnitPriceCents: 100, ExpectedVersion: &version,
				})
				return nil
			})
		}
		require.NoError(t, g.Wait())

		var succeeded, conflicted int
		for _, err := range results {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, errs.ErrConcurrentModification):
				conflicted++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, conflicted)

		stored, err := f.store.Load(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, version+1, stored.Version())
		assert.Len(t, stored.Items(), 1)
	})

	t.Run("success: unpinned writers retry and both land", func(t *testing.T) {
		f := newEngineFixture(t)
		c := f.newCart(t, userOwner(t, "user-1"))

		var g errgroup.Group
		for range 2 {
			g.Go(func() error {
				_, err := f.cmds.AddItem(ctx, commands.AddItemRequest{CartID: c.ID, ProductID: "A", Quantity: 1, UnitPriceCents: 100})
				return err
			})
		}
		require.NoError(t, g.Wait())

		stored, err := f.store.Load(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, stored.Items(), 1)
		assert.Equal(t, 2, stored.Items()[0].Quantity())
	})
}

func TestEventPublishFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	events := sharedmock.NewMockEventPublisher(ctrl)
	events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down")).AnyTimes()

	cfg := config.NewTestConfig()
	clk := clock.NewMockClock(builder.DefaultNow)
	cmds := commands.NewCartCommands(
		memstore.NewCartStore(),
		sharedmock.NewMockCouponValidator(ctrl),
		pricing.NewFlatTaxEngine(cfg.Pricing),
		pricing.NewFlatShippingEngine(cfg.Pricing),
		sharedmock.NewMockProductCatalog(ctrl),
		events,
		memstore.NewIdempotencyStore(clk),
		memstore.NewSnapshotCache(),
		clk,
		cfg,
		helper.DiscardLogger(),
	)

	snap, err := cmds.GetOrCreateCart(context.Background(), commands.GetOrCreateRequest{Owner: userOwner(t, "user-1")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Version)
}
