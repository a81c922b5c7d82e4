package commands

//go:generate mockgen -source=cart.go -destination=../../../tests/mock/commands/cart.go -package=commandsmock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cart-engine/internal/domain/cart"
	"cart-engine/internal/domain/coupon"
	"cart-engine/internal/domain/money"
	"cart-engine/internal/pkg/clock"
	"cart-engine/internal/pkg/config"
	"cart-engine/internal/pkg/errs"
	"cart-engine/internal/pkg/metrics"
	"cart-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type CartCommands interface {
	GetOrCreateCart(ctx context.Context, req GetOrCreateRequest) (*cart.Snapshot, error)
	AddItem(ctx context.Context, req AddItemRequest) (*cart.Snapshot, error)
	UpdateItemQuantity(ctx context.Context, req UpdateItemQuantityRequest) (*cart.Snapshot, error)
	RemoveItem(ctx context.Context, req RemoveItemRequest) (*cart.Snapshot, error)
	ApplyCoupon(ctx context.Context, req ApplyCouponRequest) (*cart.Snapshot, error)
	RemoveCoupon(ctx context.Context, req RemoveCouponRequest) (*cart.Snapshot, error)
	SetShippingAddress(ctx context.Context, req SetShippingAddressRequest) (*cart.Snapshot, error)
	Reprice(ctx context.Context, req RepriceRequest) (*RepriceResult, error)
	MergeInto(ctx context.Context, req MergeRequest) (*MergeResult, error)
	Checkout(ctx context.Context, req CheckoutRequest) (*cart.Snapshot, error)
}

type cartCommandsImpl struct {
	repo      shared.CartRepository
	coupons   shared.CouponValidator
	tax       shared.TaxEngine
	shipping  shared.ShippingEngine
	catalog   shared.ProductCatalog
	events    shared.EventPublisher
	idem      shared.IdempotencyStore
	cache     shared.CartSnapshotCache
	expirer   *shared.Expirer
	clock     clock.Clock
	cfg       config.CartConfig
	idemTTL   time.Duration
	logger    *slog.Logger
	newItemID func() uuid.UUID
}

func NewCartCommands(
	repo shared.CartRepository,
	coupons shared.CouponValidator,
	tax shared.TaxEngine,
	shipping shared.ShippingEngine,
	catalog shared.ProductCatalog,
	events shared.EventPublisher,
	idem shared.IdempotencyStore,
	cache shared.CartSnapshotCache,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) CartCommands {
	return &cartCommandsImpl{
		repo:      repo,
		coupons:   coupons,
		tax:       tax,
		shipping:  shipping,
		catalog:   catalog,
		events:    events,
		idem:      idem,
		cache:     cache,
		expirer:   shared.NewExpirer(repo, cache, events, logger),
		clock:     clk,
		cfg:       cfg.Cart,
		idemTTL:   cfg.Redis.IdempotencyTTL,
		logger:    logger,
		newItemID: uuid.New,
	}
}

// mutation is applied to a freshly loaded cart on every attempt. It returns
// the events to emit, or no events when the cart was left unchanged.
type mutation func(ctx context.Context, c *cart.Cart, now time.Time) ([]pendingEvent, error)

type pendingEvent struct {
	typ   shared.EventType
	attrs map[string]string
}

func (uc *cartCommandsImpl) GetOrCreateCart(ctx context.Context, req GetOrCreateRequest) (snap *cart.Snapshot, err error) {
	defer func() { metrics.ObserveCartOperation("get_or_create", err) }()

	if req.Owner.IsZero() {
		return nil, errs.ErrInvalidOwner
	}
	currency, err := uc.currencyOrDefault(req.Currency)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < 2; attempt++ {
		now := uc.clock.Now()
		existing, lerr := uc.repo.LoadActiveForOwner(ctx, req.Owner)
		switch {
		case lerr == nil:
			expired, xerr := uc.expirer.ExpireIfDue(ctx, existing, now)
			if xerr != nil && !errors.Is(xerr, shared.ErrVersionConflict) {
				return nil, xerr
			}
			if xerr != nil {
				continue
			}
			if !expired {
				s := existing.ToSnapshot()
				return &s, nil
			}
		case !errors.Is(lerr, errs.ErrCartNotFound):
			return nil, lerr
		}

		created, cerr := cart.NewCart(uuid.New(), req.Owner, currency, now, uc.ttlFor(req.Owner))
		if cerr != nil {
			return nil, cerr
		}
		if serr := uc.repo.Save(ctx, created); serr != nil {
			if errors.Is(serr, shared.ErrActiveCartExists) {
				// A concurrent call created it first; load theirs.
				continue
			}
			return nil, serr
		}
		uc.logger.InfoContext(ctx, "cart created",
			slog.String("cart_id", created.ID().String()),
			slog.String("owner", req.Owner.Key()),
			slog.String("currency", currency.String()))
		shared.StoreSnapshot(ctx, uc.cache, uc.logger, created)
		shared.PublishAll(ctx, uc.events, uc.logger, shared.NewEvent(shared.EventCartCreated, created, now, nil))
		s := created.ToSnapshot()
		return &s, nil
	}
	return nil, errs.Mark(errs.New("could not resolve active cart for owner"), errs.ErrConcurrentModification)
}

func (uc *cartCommandsImpl) AddItem(ctx context.Context, req AddItemRequest) (snap *cart.Snapshot, err error) {
	defer func() { metrics.ObserveCartOperation("add_item", err) }()

	product, err := cart.NewProductRef(req.ProductID, req.Name, req.SKU, req.ImageURL)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidAttributes)
	}
	attrs, err := cart.NewAttributes(req.Attributes)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidAttributes)
	}
	unitPrice, err := money.NewMoney(req.UnitPriceCents)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidPrice)
	}
	if err = uc.checkUnitPrice(product.ID, unitPrice); err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		key := fmt.Sprintf("cart:%s:add-item:%s", req.CartID, req.IdempotencyKey)
		reserved, rerr := uc.idem.Reserve(ctx, key, uc.idemTTL)
		if rerr != nil {
			return nil, errs.Wrap(rerr, "reserve idempotency key")
		}
		if !reserved {
			uc.logger.InfoContext(ctx, "replayed add item",
				slog.String("cart_id", req.CartID.String()),
				slog.String("idempotency_key", req.IdempotencyKey))
			return uc.current(ctx, req.CartID)
		}
		defer func() {
			if err == nil {
				return
			}
			if relErr := uc.idem.Release(context.WithoutCancel(ctx), key); relErr != nil {
				uc.logger.WarnContext(ctx, "idempotency key release failed",
					slog.String("key", key),
					slog.String("error", relErr.Error()))
			}
		}()
	}

	itemID := uc.newItemID()
	c, err := uc.mutate(ctx, "add_item", req.CartID, req.ExpectedVersion, func(_ context.Context, c *cart.Cart, now time.Time) ([]pendingEvent, error) {
		li, aerr := c.AddItem(itemID, product, req.Quantity, unitPrice, attrs, uc.cfg.MaxLineQuantity, now)
		if aerr != nil {
			return nil, aerr
		}
		return []pendingEvent{{typ: shared.EventItemAdded, attrs: map[string]string{
			"itemId":    li.ID().String(),
			"productId": li.Product().ID,
			"quantity":  fmt.Sprint(req.Quantity),
		}}}, nil
	})
	if err != nil {
		return nil, err
	}
	s := c.ToSnapshot()
	return &s, nil
}

func (uc *cartCommandsImpl) UpdateItemQuantity(ctx context.Context, req UpdateItemQuantityRequest) (snap *cart.Snapshot, err error) {
	defer func() { metrics.ObserveCartOperation("update_item_quantity", err) }()

	c, err := uc.mutate(ctx, "update_item_quantity", req.CartID, req.ExpectedVersion, func(_ context.Context, c *cart.Cart, now time.Time) ([]pendingEvent, error) {
		removed, uerr := c.UpdateItemQuantity(req.ItemID, req.Quantity, uc.cfg.MaxLineQuantity, now)
		if uerr != nil {
			return nil, uerr
		}
		if removed {
			return []pendingEvent{{typ: shared.EventItemRemoved, attrs: map[string]string{"itemId": req.ItemID.String()}}}, nil
		}
		return []pendingEvent{{typ: shared.EventItemUpdated, attrs: map[string]string{
			"itemId":   req.ItemID.String(),
			"quantity": fmt.Sprint(req.Quantity),
		}}}, nil
	})
	if err != nil {
		return nil, err
	}
	s := c.ToSnapshot()
	return &s, nil
}

func (uc *cartCommandsImpl) RemoveItem(ctx context.Context, req RemoveItemRequest) (snap *cart.Snapshot, err error) {
	defer func() { metrics.ObserveCartOperation("remove_item", err) }()

	c, err := uc.mutate(ctx, "remove_item", req.CartID, req.ExpectedVersion, func(_ context.Context, c *cart.Cart, now time.Time) ([]pendingEvent, error) {
		removed, rerr := c.RemoveItem(req.ItemID, now)
		if rerr != nil || !removed {
			return nil, rerr
		}
		return []pendingEvent{{typ: shared.EventItemRemoved, attrs: map[string]string{"itemId": req.ItemID.String()}}}, nil
	})
	if err != nil {
		return nil, err
	}
	s := c.ToSnapshot()
	return &s, nil
}

func (uc *cartCommandsImpl) ApplyCoupon(ctx context.Context, req ApplyCouponRequest) (snap *cart.Snapshot, err error) {
	defer func() { metrics.ObserveCartOperation("apply_coupon", err) }()

	code, err := coupon.NewCouponCode(req.Code)
	if err != nil {
		return nil, errs.WithReason(errs.Mark(err, errs.ErrInvalidCoupon), "coupon code is malformed")
	}

	c, err := uc.mutate(ctx, "apply_coupon", req.CartID, req.ExpectedVersion, func(ctx context.Context, c *cart.Cart, now time.Time) ([]pendingEvent, error) {
		// Terminal carts fail before the validator is consulted.
		if merr := c.EnsureMutable(); merr != nil {
			return nil, merr
		}
		subtotal, serr := c.Subtotal()
		if serr != nil {
			return nil, serr
		}
		rule, verr := shared.CallWithTimeout(ctx, uc.cfg.CollaboratorTimeout, "coupon validator", func(ctx context.Context) (coupon.Rule, error) {
			return uc.coupons.Validate(ctx, code, subtotal, c.Currency(), c.Owner())
		})
		if verr != nil {
			return nil, verr
		}
		if aerr := c.ApplyCoupon(rule, now); aerr != nil {
			return nil, aerr
		}
		return []pendingEvent{{typ: shared.EventCouponApplied, attrs: map[string]string{"code": code.String()}}}, nil
	})
	if err != nil {
		return nil, err
	}
	s := c.ToSnapshot()
	return &s, nil
}

func (uc *cartCommandsImpl) RemoveCoupon(ctx context.Context, req RemoveCouponRequest) (snap *cart.Snapshot, err error) {
	defer func() { metrics.ObserveCartOperation("remove_coupon", err) }()

	code, cerr := coupon.NewCouponCode(req.Code)
	if cerr != nil {
		// A malformed code cannot be applied, so removing it is a no-op.
		return uc.current(ctx, req.CartID)
	}
	c, err := uc.mutate(ctx, "remove_coupon", req.CartID, req.ExpectedVersion, func(_ context.Context, c *cart.Cart, now time.Time) ([]pendingEvent, error) {
		removed, rerr := c.RemoveCoupon(code, now)
		if rerr != nil || !removed {
			return nil, rerr
		}
		return []pendingEvent{{typ: shared.EventCouponRemoved, attrs: map[string]string{"code": code.String()}}}, nil
	})
	if err != nil {
		return nil, err
	}
	s := c.ToSnapshot()
	return &s, nil
}

func (uc *cartCommandsImpl) SetShippingAddress(ctx context.Context, req SetShippingAddressRequest) (snap *cart.Snapshot, err error) {
	defer func() { metrics.ObserveCartOperation("set_shipping_address", err) }()

	addr, err := cart.NewAddress(req.Line1, req.Line2, req.City, req.Region, req.PostalCode, req.Country)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidAddress)
	}
	c, err := uc.mutate(ctx, "set_shipping_address", req.CartID, req.ExpectedVersion, func(_ context.Context, c *cart.Cart, now time.Time) ([]pendingEvent, error) {
		if serr := c.SetShippingAddress(addr, now); serr != nil {
			return nil, serr
		}
		return []pendingEvent{{typ: shared.EventCartUpdated, attrs: map[string]string{"field": "shippingAddress"}}}, nil
	})
	if err != nil {
		return nil, err
	}
	s := c.ToSnapshot()
	return &s, nil
}

func (uc *cartCommandsImpl) Reprice(ctx context.Context, req RepriceRequest) (res *RepriceResult, err error) {
	defer func() { metrics.ObserveCartOperation("reprice", err) }()

	var stale []*cart.LineItem
	c, err := uc.mutate(ctx, "reprice", req.CartID, req.ExpectedVersion, func(ctx context.Context, c *cart.Cart, now time.Time) ([]pendingEvent, error) {
		quotes := make(map[string]cart.PriceQuote)
		for _, li := range c.Items() {
			pid := li.Product().ID
			if _, seen := quotes[pid]; seen {
				continue
			}
			q, qerr := shared.CallWithTimeout(ctx, uc.cfg.CollaboratorTimeout, "product catalog", func(ctx context.Context) (cart.PriceQuote, error) {
				return uc.catalog.CurrentPrice(ctx, pid, c.Currency())
			})
			if qerr != nil {
				return nil, qerr
			}
			if q.Available {
				if perr := uc.checkUnitPrice(pid, q.UnitPrice); perr != nil {
					return nil, perr
				}
			}
			quotes[pid] = q
		}
		var rerr error
		stale, rerr = c.Reprice(quotes, now)
		if rerr != nil {
			return nil, rerr
		}
		return []pendingEvent{{typ: shared.EventCartRepriced, attrs: map[string]string{"staleItems": fmt.Sprint(len(stale))}}}, nil
	})
	if err != nil {
		return nil, err
	}
	res = &RepriceResult{Cart: c.ToSnapshot()}
	for _, li := range stale {
		res.StaleItems = append(res.StaleItems, itemSnapshot(res.Cart, li.ID()))
	}
	if len(stale) > 0 {
		uc.logger.InfoContext(ctx, "reprice found unavailable items",
			slog.String("cart_id", c.ID().String()),
			slog.Int("stale_items", len(stale)))
	}
	return res, nil
}

func (uc *cartCommandsImpl) MergeInto(ctx context.Context, req MergeRequest) (res *MergeResult, err error) {
	defer func() { metrics.ObserveCartOperation("merge", err) }()

	if req.SourceCartID == req.TargetCartID {
		return nil, errs.ErrSameCart
	}

	attempts := uc.attempts(req.ExpectedTargetVersion)
	for attempt := 0; attempt < attempts; attempt++ {
		now := uc.clock.Now()
		source, lerr := uc.loadMutable(ctx, req.SourceCartID, nil, now)
		if lerr != nil {
			if errors.Is(lerr, shared.ErrVersionConflict) {
				continue
			}
			return nil, errs.Wrap(lerr, "source cart")
		}
		target, lerr := uc.loadMutable(ctx, req.TargetCartID, req.ExpectedTargetVersion, now)
		if lerr != nil {
			if errors.Is(lerr, shared.ErrVersionConflict) {
				continue
			}
			return nil, errs.Wrap(lerr, "target cart")
		}

		warnings, merr := target.AbsorbFrom(source, uc.cfg.MaxLineQuantity, now)
		if merr != nil {
			return nil, merr
		}
		for _, w := range warnings {
			uc.logger.WarnContext(ctx, "merge clamped line quantity",
				slog.String("target_cart_id", target.ID().String()),
				slog.String("product_id", w.ProductID),
				slog.Int("requested", w.Requested),
				slog.Int("applied", w.Applied))
		}

		if rerr := uc.recalculate(ctx, target); rerr != nil {
			return nil, rerr
		}
		if rerr := uc.recalculate(ctx, source); rerr != nil {
			return nil, rerr
		}

		if serr := uc.repo.Save(ctx, source, target); serr != nil {
			if retry, cerr := uc.onConflict("merge", serr, attempt, attempts); retry {
				continue
			} else if cerr != nil {
				return nil, cerr
			}
			return nil, serr
		}

		shared.StoreSnapshot(ctx, uc.cache, uc.logger, source, target)
		shared.PublishAll(ctx, uc.events, uc.logger,
			shared.NewEvent(shared.EventCartMerged, source, now, map[string]string{"targetCartId": target.ID().String()}),
			shared.NewEvent(shared.EventItemAdded, target, now, map[string]string{"sourceCartId": source.ID().String()}),
		)
		return &MergeResult{Target: target.ToSnapshot(), Source: source.ToSnapshot(), Warnings: warnings}, nil
	}
	return nil, errs.ErrConcurrentModification
}

func (uc *cartCommandsImpl) Checkout(ctx context.Context, req CheckoutRequest) (snap *cart.Snapshot, err error) {
	defer func() { metrics.ObserveCartOperation("checkout", err) }()

	c, err := uc.mutate(ctx, "checkout", req.CartID, req.ExpectedVersion, func(_ context.Context, c *cart.Cart, now time.Time) ([]pendingEvent, error) {
		if cerr := c.Checkout(now, uc.cfg.CheckoutRepriceWindow); cerr != nil {
			return nil, cerr
		}
		return []pendingEvent{{typ: shared.EventCartConverted}}, nil
	})
	if err != nil {
		return nil, err
	}
	uc.logger.InfoContext(ctx, "cart converted",
		slog.String("cart_id", c.ID().String()),
		slog.Int64("total_cents", c.Totals().Total.Cents()))
	s := c.ToSnapshot()
	return &s, nil
}

// mutate runs the read-modify-write cycle shared by single-cart operations.
// With an expected version a conflict surfaces immediately; without one the
// whole cycle is retried once against a fresh load.
func (uc *cartCommandsImpl) mutate(ctx context.Context, op string, cartID uuid.UUID, expected *int64, fn mutation) (*cart.Cart, error) {
	attempts := uc.attempts(expected)
	for attempt := 0; attempt < attempts; attempt++ {
		now := uc.clock.Now()
		c, err := uc.loadMutable(ctx, cartID, expected, now)
		if err != nil {
			if errors.Is(err, shared.ErrVersionConflict) {
				continue
			}
			return nil, err
		}

		pending, err := fn(ctx, c, now)
		if err != nil {
			return nil, err
		}
		if len(pending) == 0 {
			return c, nil
		}

		if err = uc.recalculate(ctx, c); err != nil {
			return nil, err
		}

		if err = uc.repo.Save(ctx, c); err != nil {
			if retry, cerr := uc.onConflict(op, err, attempt, attempts); retry {
				continue
			} else if cerr != nil {
				return nil, cerr
			}
			return nil, err
		}

		shared.StoreSnapshot(ctx, uc.cache, uc.logger, c)
		events := make([]shared.Event, 0, len(pending))
		for _, p := range pending {
			events = append(events, shared.NewEvent(p.typ, c, now, p.attrs))
		}
		shared.PublishAll(ctx, uc.events, uc.logger, events...)
		return c, nil
	}
	return nil, errs.ErrConcurrentModification
}

// loadMutable loads a cart for mutation, applying lazy expiry first. An
// expired cart fails with ErrCartExpired once the flip is persisted.
func (uc *cartCommandsImpl) loadMutable(ctx context.Context, cartID uuid.UUID, expected *int64, now time.Time) (*cart.Cart, error) {
	c, err := uc.repo.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if expected != nil && c.Version() != *expected {
		return nil, errs.WithReasonf(errs.ErrConcurrentModification, "cart is at version %d, expected %d", c.Version(), *expected)
	}
	if c.Status() != cart.StatusActive {
		// Let the domain report the precise lifecycle error.
		return c, nil
	}
	expired, err := uc.expirer.ExpireIfDue(ctx, c, now)
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, errs.ErrCartExpired
	}
	return c, nil
}

// onConflict decides whether a failed save should be retried. It returns
// the error to surface when the conflict is final.
func (uc *cartCommandsImpl) onConflict(op string, err error, attempt, attempts int) (bool, error) {
	if !errors.Is(err, shared.ErrVersionConflict) {
		return false, nil
	}
	retry := attempt+1 < attempts
	metrics.ObserveVersionConflict(op, retry)
	uc.logger.Warn("cart version conflict",
		slog.String("operation", op),
		slog.Int("attempt", attempt+1),
		slog.Bool("retrying", retry))
	if retry {
		return true, nil
	}
	return false, errs.Mark(err, errs.ErrConcurrentModification)
}

// checkUnitPrice enforces the configured per-unit price ceiling.
func (uc *cartCommandsImpl) checkUnitPrice(productID string, p money.Money) error {
	if uc.cfg.MaxUnitPriceCents > 0 && p.Cents() > uc.cfg.MaxUnitPriceCents {
		return errs.WithReasonf(errs.ErrInvalidPrice, "unit price %s for %s exceeds maximum %s",
			p, productID, money.FromCents(uc.cfg.MaxUnitPriceCents))
	}
	return nil
}

func (uc *cartCommandsImpl) attempts(expected *int64) int {
	if expected != nil {
		return 1
	}
	return 2
}

// recalculate refreshes the derived totals, consulting tax and shipping
// under the collaborator timeout.
func (uc *cartCommandsImpl) recalculate(ctx context.Context, c *cart.Cart) error {
	if c.IsEmpty() {
		c.ApplyTotals(cart.Totals{})
		return nil
	}
	subtotal, err := c.Subtotal()
	if err != nil {
		return err
	}
	discounts, err := c.MerchandiseDiscount()
	if err != nil {
		return err
	}
	taxable := subtotal.Sub(discounts.Discount).ClampZero()

	tax, err := shared.CallWithTimeout(ctx, uc.cfg.CollaboratorTimeout, "tax engine", func(ctx context.Context) (money.Money, error) {
		return uc.tax.ComputeTax(ctx, taxable, c.Currency(), c.ShippingAddress())
	})
	if err != nil {
		return err
	}
	shipping, err := shared.CallWithTimeout(ctx, uc.cfg.CollaboratorTimeout, "shipping engine", func(ctx context.Context) (money.Money, error) {
		return uc.shipping.ComputeShipping(ctx, shared.ShippingInput{
			Subtotal:  taxable,
			ItemCount: c.ItemCount(),
			Currency:  c.Currency(),
			Address:   c.ShippingAddress(),
		})
	})
	if err != nil {
		return err
	}
	totals, err := cart.CalculateTotals(subtotal, discounts, tax.ClampZero(), shipping.ClampZero())
	if err != nil {
		return err
	}
	c.ApplyTotals(totals)
	return nil
}

// current returns the committed state without mutating, applying lazy expiry.
func (uc *cartCommandsImpl) current(ctx context.Context, cartID uuid.UUID) (*cart.Snapshot, error) {
	for attempt := 0; attempt < 2; attempt++ {
		c, err := uc.repo.Load(ctx, cartID)
		if err != nil {
			return nil, err
		}
		if _, err = uc.expirer.ExpireIfDue(ctx, c, uc.clock.Now()); err != nil {
			if errors.Is(err, shared.ErrVersionConflict) {
				continue
			}
			return nil, err
		}
		s := c.ToSnapshot()
		return &s, nil
	}
	return nil, errs.ErrConcurrentModification
}

func (uc *cartCommandsImpl) currencyOrDefault(code string) (money.Currency, error) {
	if code == "" {
		code = uc.cfg.DefaultCurrency
	}
	currency, err := money.NewCurrency(code)
	if err != nil {
		return "", errs.Mark(err, errs.ErrInvalidCurrency)
	}
	return currency, nil
}

func (uc *cartCommandsImpl) ttlFor(owner cart.OwnerRef) time.Duration {
	if owner.IsAnonymous() {
		return uc.cfg.AnonymousTTL
	}
	return uc.cfg.UserTTL
}

func itemSnapshot(s cart.Snapshot, itemID uuid.UUID) cart.ItemSnapshot {
	for _, is := range s.Items {
		if is.ID == itemID {
			return is
		}
	}
	return cart.ItemSnapshot{}
}
