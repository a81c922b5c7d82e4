package cart

import (
	"time"

	"cart-engine/internal/domain/coupon"
	"cart-engine/internal/domain/money"
	"cart-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

type AppliedCoupon struct {
	Rule      coupon.Rule `json:"rule"`
	AppliedAt time.Time   `json:"appliedAt"`
}

// MergeWarning records a line whose combined quantity was clamped.
type MergeWarning struct {
	ItemID    uuid.UUID
	ProductID string
	Requested int
	Applied   int
}

type Cart struct {
	id               uuid.UUID
	owner            OwnerRef
	status           Status
	currency         money.Currency
	items            []*LineItem
	coupons          []AppliedCoupon
	shippingAddress  *Address
	totals           Totals
	expiresAt        *time.Time
	pricesVerifiedAt *time.Time
	version          int64
	createdAt        time.Time
	updatedAt        time.Time
}

// NewCart creates an empty active cart. A ttl of zero means the cart never
// expires by time.
func NewCart(id uuid.UUID, owner OwnerRef, currency money.Currency, now time.Time, ttl time.Duration) (*Cart, error) {
	if owner.IsZero() {
		return nil, errs.Mark(ErrOwnerRequired, errs.ErrInvalidOwner)
	}
	if currency == "" {
		return nil, errs.Mark(money.ErrInvalidCurrency, errs.ErrInvalidCurrency)
	}
	c := &Cart{
		id:        id,
		owner:     owner,
		status:    StatusActive,
		currency:  currency,
		createdAt: now,
		updatedAt: now,
	}
	if ttl > 0 {
		exp := now.Add(ttl)
		c.expiresAt = &exp
	}
	return c, nil
}

func (c *Cart) ID() uuid.UUID                { return c.id }
func (c *Cart) Owner() OwnerRef              { return c.owner }
func (c *Cart) Status() Status               { return c.status }
func (c *Cart) Currency() money.Currency     { return c.currency }
func (c *Cart) Totals() Totals               { return c.totals }
func (c *Cart) ShippingAddress() *Address    { return c.shippingAddress }
func (c *Cart) ExpiresAt() *time.Time        { return c.expiresAt }
func (c *Cart) PricesVerifiedAt() *time.Time { return c.pricesVerifiedAt }
func (c *Cart) Version() int64               { return c.version }
func (c *Cart) CreatedAt() time.Time         { return c.createdAt }
func (c *Cart) UpdatedAt() time.Time         { return c.updatedAt }

func (c *Cart) Items() []*LineItem {
	out := make([]*LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Coupons() []AppliedCoupon {
	out := make([]AppliedCoupon, len(c.coupons))
	copy(out, c.coupons)
	return out
}

func (c *Cart) CouponRules() []coupon.Rule {
	rules := make([]coupon.Rule, len(c.coupons))
	for i, ac := range c.coupons {
		rules[i] = ac.Rule
	}
	return rules
}

func (c *Cart) Item(itemID uuid.UUID) (*LineItem, bool) {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return nil, false
	}
	return c.items[idx], true
}

// Subtotal is always recomputed from the lines.
func (c *Cart) Subtotal() (money.Money, error) {
	return c.subtotalWith(nil)
}

// subtotalWith sums the line totals as they would be after replacing the
// totals in overrides and appending extra lines.
func (c *Cart) subtotalWith(overrides map[*LineItem]money.Money, extra ...money.Money) (money.Money, error) {
	totals := make([]money.Money, 0, len(c.items)+len(extra))
	for _, li := range c.items {
		if t, ok := overrides[li]; ok {
			totals = append(totals, t)
			continue
		}
		totals = append(totals, li.total)
	}
	return money.Sum(append(totals, extra...)...)
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, li := range c.items {
		n += li.quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) HasUnavailableItems() bool {
	for _, li := range c.items {
		if li.unavailable {
			return true
		}
	}
	return false
}

// IsExpired reports whether the cart is expired or past its deadline. The
// deadline itself is still live.
func (c *Cart) IsExpired(now time.Time) bool {
	if c.status == StatusExpired {
		return true
	}
	return c.status == StatusActive && c.expiresAt != nil && now.After(*c.expiresAt)
}

// ExpireIfDue flips an active cart past its deadline to expired.
func (c *Cart) ExpireIfDue(now time.Time) bool {
	if c.status != StatusActive || !c.IsExpired(now) {
		return false
	}
	return c.transitionTo(StatusExpired, now) == nil
}

// MerchandiseDiscount evaluates the applied coupons against the subtotal.
func (c *Cart) MerchandiseDiscount() (coupon.Result, error) {
	subtotal, err := c.Subtotal()
	if err != nil {
		return coupon.Result{}, err
	}
	return coupon.ApplyAll(subtotal, c.CouponRules()), nil
}

func (c *Cart) ApplyTotals(t Totals) {
	c.totals = t
}

// MarkPersisted records the version assigned by the store.
func (c *Cart) MarkPersisted(version int64) {
	c.version = version
}

func (c *Cart) AddItem(itemID uuid.UUID, product ProductRef, quantity int, unitPrice money.Money, attrs Attributes, maxQuantity int, now time.Time) (*LineItem, error) {
	if err := c.ensureMutable(); err != nil {
		return nil, err
	}
	if err := validateQuantity(quantity, 1, maxQuantity); err != nil {
		return nil, err
	}
	if unitPrice.IsNegative() {
		return nil, errs.WithReason(errs.ErrInvalidPrice, "unit price cannot be negative")
	}
	if product.ID == "" {
		return nil, errs.Mark(ErrProductIDRequired, errs.ErrInvalidAttributes)
	}

	for _, li := range c.items {
		if !li.sameVariant(product.ID, attrs) {
			continue
		}
		combined := li.quantity + quantity
		if combined > maxQuantity {
			return nil, errs.WithReasonf(errs.ErrInvalidQuantity, "line quantity %d would exceed maximum %d", combined, maxQuantity)
		}
		if err := c.resizeLine(li, combined, now); err != nil {
			return nil, err
		}
		c.touchLines(now)
		return li, nil
	}

	li, err := newLineItem(itemID, c.id, product, quantity, unitPrice, attrs, now)
	if err != nil {
		return nil, err
	}
	if _, err := c.subtotalWith(nil, li.total); err != nil {
		return nil, err
	}
	c.items = append(c.items, li)
	c.touchLines(now)
	return li, nil
}

// UpdateItemQuantity sets a line's quantity. Zero removes the line.
func (c *Cart) UpdateItemQuantity(itemID uuid.UUID, quantity, maxQuantity int, now time.Time) (removed bool, err error) {
	if err = c.ensureMutable(); err != nil {
		return false, err
	}
	if err = validateQuantity(quantity, 0, maxQuantity); err != nil {
		return false, err
	}
	idx := c.indexOf(itemID)
	if idx < 0 {
		return false, errs.ErrItemNotFound
	}
	if quantity == 0 {
		c.removeAt(idx, now)
		return true, nil
	}
	if err = c.resizeLine(c.items[idx], quantity, now); err != nil {
		return false, err
	}
	c.touchLines(now)
	return false, nil
}

// resizeLine changes li's quantity only if the cart subtotal stays in range.
func (c *Cart) resizeLine(li *LineItem, quantity int, now time.Time) error {
	total, err := li.unitPrice.Mul(quantity)
	if err != nil {
		return err
	}
	if _, err := c.subtotalWith(map[*LineItem]money.Money{li: total}); err != nil {
		return err
	}
	return li.setQuantity(quantity, now)
}

// RemoveItem reports false without error when the line is already gone.
func (c *Cart) RemoveItem(itemID uuid.UUID, now time.Time) (bool, error) {
	if err := c.ensureMutable(); err != nil {
		return false, err
	}
	idx := c.indexOf(itemID)
	if idx < 0 {
		return false, nil
	}
	c.removeAt(idx, now)
	return true, nil
}

// ApplyCoupon adds rule to the applied set when every coupon involved is
// stackable, and replaces the set otherwise. Re-applying a code refreshes it.
func (c *Cart) ApplyCoupon(rule coupon.Rule, now time.Time) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	if err := rule.Validate(); err != nil {
		return errs.WithReason(errs.ErrInvalidCoupon, err.Error())
	}
	applied := AppliedCoupon{Rule: rule, AppliedAt: now}
	if !coupon.CanStack(c.CouponRules(), rule) {
		c.coupons = []AppliedCoupon{applied}
		c.updatedAt = now
		return nil
	}
	for i, ac := range c.coupons {
		if ac.Rule.Code == rule.Code {
			c.coupons[i] = applied
			c.updatedAt = now
			return nil
		}
	}
	c.coupons = append(c.coupons, applied)
	c.updatedAt = now
	return nil
}

func (c *Cart) RemoveCoupon(code coupon.Code, now time.Time) (bool, error) {
	if err := c.ensureMutable(); err != nil {
		return false, err
	}
	for i, ac := range c.coupons {
		if ac.Rule.Code == code {
			c.coupons = append(c.coupons[:i], c.coupons[i+1:]...)
			c.updatedAt = now
			return true, nil
		}
	}
	return false, nil
}

func (c *Cart) SetShippingAddress(addr Address, now time.Time) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	if addr.Country == "" {
		return errs.Mark(ErrCountryRequired, errs.ErrInvalidAddress)
	}
	a := addr
	c.shippingAddress = &a
	c.updatedAt = now
	return nil
}

// Reprice refreshes unit prices from quotes keyed by product id. Lines with
// no quote or an unavailable product are flagged and returned; they are not
// dropped. A clean reprice marks the prices as verified.
func (c *Cart) Reprice(quotes map[string]PriceQuote, now time.Time) ([]*LineItem, error) {
	if err := c.ensureMutable(); err != nil {
		return nil, err
	}
	repriced := make(map[*LineItem]money.Money)
	for _, li := range c.items {
		q, ok := quotes[li.product.ID]
		if !ok || !q.Available || li.unitPrice.Equal(q.UnitPrice) {
			continue
		}
		if q.UnitPrice.IsNegative() {
			return nil, errs.WithReasonf(errs.ErrInvalidPrice, "quoted price for %s is negative", li.product.ID)
		}
		total, err := q.UnitPrice.Mul(li.quantity)
		if err != nil {
			return nil, errs.Wrapf(err, "quoted price for %s", li.product.ID)
		}
		repriced[li] = total
	}
	if _, err := c.subtotalWith(repriced); err != nil {
		return nil, err
	}

	var stale []*LineItem
	for _, li := range c.items {
		q, ok := quotes[li.product.ID]
		if !ok || !q.Available {
			li.unavailable = true
			li.updatedAt = now
			stale = append(stale, li)
			continue
		}
		if _, changed := repriced[li]; changed {
			if err := li.setUnitPrice(q.UnitPrice, now); err != nil {
				return nil, err
			}
		}
		if li.unavailable {
			li.unavailable = false
			li.updatedAt = now
		}
	}
	c.updatedAt = now
	if len(stale) == 0 {
		verified := now
		c.pricesVerifiedAt = &verified
	} else {
		c.pricesVerifiedAt = nil
	}
	return stale, nil
}

// AbsorbFrom moves every line of source into c and marks source merged.
// Duplicate lines are summed and clamped to maxQuantity.
func (c *Cart) AbsorbFrom(source *Cart, maxQuantity int, now time.Time) ([]MergeWarning, error) {
	if source.id == c.id {
		return nil, errs.ErrSameCart
	}
	if err := source.ensureMutable(); err != nil {
		return nil, errs.Wrap(err, "source cart")
	}
	if err := c.ensureMutable(); err != nil {
		return nil, errs.Wrap(err, "target cart")
	}
	if source.currency != c.currency {
		return nil, errs.WithReasonf(errs.ErrCurrencyMismatch, "source cart is %s, target cart is %s", source.currency, c.currency)
	}

	if !source.status.CanTransitionTo(StatusMerged) {
		return nil, errs.WithReasonf(errs.ErrCartNotMutable, "source cart is %s", source.status)
	}

	// Plan every line first so an out-of-range subtotal leaves both carts
	// untouched.
	var (
		warnings []MergeWarning
		moved    []*LineItem
		extra    []money.Money
	)
	resized := make(map[*LineItem]int)
	totals := make(map[*LineItem]money.Money)
	for _, src := range source.items {
		if dst := c.findVariant(src.product.ID, src.attributes); dst != nil {
			requested := dst.quantity + src.quantity
			applied := requested
			if applied > maxQuantity {
				applied = maxQuantity
				warnings = append(warnings, MergeWarning{
					ItemID:    dst.id,
					ProductID: dst.product.ID,
					Requested: requested,
					Applied:   applied,
				})
			}
			total, err := dst.unitPrice.Mul(applied)
			if err != nil {
				return nil, err
			}
			resized[dst] = applied
			totals[dst] = total
			continue
		}
		quantity := src.quantity
		if quantity > maxQuantity {
			warnings = append(warnings, MergeWarning{
				ItemID:    src.id,
				ProductID: src.product.ID,
				Requested: quantity,
				Applied:   maxQuantity,
			})
			quantity = maxQuantity
		}
		li, err := newLineItem(src.id, c.id, src.product, quantity, src.unitPrice, src.attributes, src.addedAt)
		if err != nil {
			return nil, err
		}
		li.unavailable = src.unavailable
		li.updatedAt = now
		moved = append(moved, li)
		extra = append(extra, li.total)
	}
	if _, err := c.subtotalWith(totals, extra...); err != nil {
		return nil, err
	}

	for dst, q := range resized {
		if err := dst.setQuantity(q, now); err != nil {
			return nil, err
		}
	}
	c.items = append(c.items, moved...)
	if len(source.items) > 0 {
		c.touchLines(now)
	}

	if err := source.transitionTo(StatusMerged, now); err != nil {
		return nil, err
	}
	source.items = nil
	source.pricesVerifiedAt = nil
	return warnings, nil
}

// Checkout converts the cart. window bounds the age of the last clean
// reprice; zero disables the age check.
func (c *Cart) Checkout(now time.Time, window time.Duration) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	switch {
	case c.IsEmpty():
		return errs.WithReason(errs.ErrCheckoutPrecondition, "cart is empty")
	case c.HasUnavailableItems():
		return errs.WithReason(errs.ErrCheckoutPrecondition, "cart has unavailable items")
	case c.pricesVerifiedAt == nil:
		return errs.WithReason(errs.ErrCheckoutPrecondition, "prices must be verified before checkout")
	case window > 0 && now.Sub(*c.pricesVerifiedAt) > window:
		return errs.WithReason(errs.ErrCheckoutPrecondition, "price verification is stale")
	}
	return c.transitionTo(StatusConverted, now)
}

// EnsureMutable reports the lifecycle error a mutation would fail with.
func (c *Cart) EnsureMutable() error {
	return c.ensureMutable()
}

// A cart already stored as expired is just another terminal cart here;
// ErrCartExpired belongs to the request that observes the deadline pass.
func (c *Cart) ensureMutable() error {
	if c.status.IsTerminal() {
		return errs.WithReasonf(errs.ErrCartNotMutable, "cart is %s", c.status)
	}
	return nil
}

func (c *Cart) transitionTo(next Status, now time.Time) error {
	if !c.status.CanTransitionTo(next) {
		return errs.WithReasonf(errs.ErrCartNotMutable, "cart cannot move from %s to %s", c.status, next)
	}
	c.status = next
	c.updatedAt = now
	return nil
}

// Line mutations invalidate any earlier price verification.
func (c *Cart) touchLines(now time.Time) {
	c.pricesVerifiedAt = nil
	c.updatedAt = now
}

func (c *Cart) removeAt(idx int, now time.Time) {
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	c.touchLines(now)
}

func (c *Cart) indexOf(itemID uuid.UUID) int {
	for i, li := range c.items {
		if li.id == itemID {
			return i
		}
	}
	return -1
}

func (c *Cart) findVariant(productID string, attrs Attributes) *LineItem {
	for _, li := range c.items {
		if li.sameVariant(productID, attrs) {
			return li
		}
	}
	return nil
}

func validateQuantity(q, lo, hi int) error {
	if q < lo || q > hi {
		return errs.WithReasonf(errs.ErrInvalidQuantity, "quantity must be between %d and %d", lo, hi)
	}
	return nil
}
