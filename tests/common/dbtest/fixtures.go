//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func SeedProduct(t *testing.T, db DBLike, productID, currency string, priceCents int64, available bool) {
	t.Helper()

	_, err := db.Exec(context.Background(), `
		INSERT INTO products (id, currency, price_cents, available) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id, currency) DO UPDATE SET price_cents = EXCLUDED.price_cents, available = EXCLUDED.available, updated_at = NOW()`,
		productID, currency, priceCents, available)
	require.NoError(t, err)
}

func SeedPercentCoupon(t *testing.T, db DBLike, code string, percentOff string, minSubtotalCents int64) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(context.Background(), `
		INSERT INTO coupons (id, code, kind, percent_off, min_subtotal_cents) VALUES ($1, $2, 'percentage', $3::numeric, $4)`,
		id, code, percentOff, minSubtotalCents)
	require.NoError(t, err)
	return id
}

func SeedFixedCoupon(t *testing.T, db DBLike, code string, amountOffCents int64, currency string, stackable bool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(context.Background(), `
		INSERT INTO coupons (id, code, kind, amount_off_cents, currency, stackable) VALUES ($1, $2, 'fixed', $3, $4, $5)`,
		id, code, amountOffCents, currency, stackable)
	require.NoError(t, err)
	return id
}

// ExpireCoupon closes the coupon's validity window in the past.
func ExpireCoupon(t *testing.T, db DBLike, code string) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		"UPDATE coupons SET valid_to = NOW() - INTERVAL '1 hour' WHERE code = $1", code)
	require.NoError(t, err)
}

func SetCouponUsage(t *testing.T, db DBLike, code string, limit, used int) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		"UPDATE coupons SET usage_limit = $2, used_count = $3 WHERE code = $1", code, limit, used)
	require.NoError(t, err)
}

func CouponUsedCount(t *testing.T, db DBLike, code string) int {
	t.Helper()

	var used int
	err := db.QueryRow(context.Background(), "SELECT used_count FROM coupons WHERE code = $1", code).Scan(&used)
	require.NoError(t, err)
	return used
}

func CartVersion(t *testing.T, db DBLike, cartID uuid.UUID) int64 {
	t.Helper()

	var version int64
	err := db.QueryRow(context.Background(), "SELECT version FROM carts WHERE id = $1", cartID).Scan(&version)
	require.NoError(t, err)
	return version
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables except the migration bookkeeping
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
