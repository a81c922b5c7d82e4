//go:build unit

package coupon_test

import (
	"testing"
	"time"

	"cart-engine/internal/domain/coupon"
	"cart-engine/internal/domain/money"
	"cart-engine/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponValidateUsage(t *testing.T) {
	now := builder.DefaultNow
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	eur := money.Currency("EUR")
	limit := 1

	cases := []struct {
		name     string
		active   bool
		from, to *time.Time
		currency *money.Currency
		limit    *int
		used     int
		subtotal int64
		errIs    error
	}{
		{name: "valid", active: true, from: &past, to: &future, subtotal: 1000},
		{name: "inactive", active: false, subtotal: 1000, errIs: coupon.ErrCouponInactive},
		{name: "not yet valid", active: true, from: &future, subtotal: 1000, errIs: coupon.ErrCouponNotYetValid},
		{name: "expired", active: true, to: &past, subtotal: 1000, errIs: coupon.ErrCouponExpired},
		{name: "wrong currency", active: true, currency: &eur, subtotal: 1000, errIs: coupon.ErrCouponCurrency},
		{name: "below minimum", active: true, subtotal: 100, errIs: coupon.ErrSubtotalTooLow},
		{name: "usage exhausted", active: true, limit: &limit, used: 1, subtotal: 1000, errIs: coupon.ErrCouponExhausted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := builder.PercentRule("SAVE10", 10, 0, false).WithMinSubtotal(money.FromCents(500))
			c, err := coupon.NewCoupon(uuid.New(), rule, tc.currency, tc.active, tc.from, tc.to, tc.limit, tc.used, now, now)
			require.NoError(t, err)

			err = c.ValidateUsage(now, money.FromCents(tc.subtotal), money.Currency("USD"))
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				return
			}
			assert.NoError(t, err)
		})
	}
}
