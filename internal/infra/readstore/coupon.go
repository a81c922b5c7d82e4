package readstore

import (
	"context"
	"log/slog"
	"time"

	"cart-engine/internal/domain/cart"
	"cart-engine/internal/domain/coupon"
	"cart-engine/internal/domain/money"
	"cart-engine/internal/infra"
	"cart-engine/internal/pkg/clock"
	"cart-engine/internal/pkg/errs"
	"cart-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type CouponRow struct {
	ID          uuid.UUID
	Code        string
	Kind        string
	PercentOff  decimal.Decimal
	AmountOff   int64
	MinSubtotal int64
	Priority    int
	Stackable   bool
	Currency    pgtype.Text
	Active      bool
	ValidFrom   pgtype.Timestamptz
	ValidTo     pgtype.Timestamptz
	UsageLimit  pgtype.Int4
	UsedCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CouponReadQueries interface {
	FindCouponByCode(ctx context.Context, code string) (CouponRow, error)
}

type pgCouponQueries struct {
	pool *pgxpool.Pool
}

func NewCouponQueries(pool *pgxpool.Pool) CouponReadQueries {
	return &pgCouponQueries{pool: pool}
}

func (q *pgCouponQueries) FindCouponByCode(ctx context.Context, code string) (CouponRow, error) {
	var row CouponRow
	var percentOff string
	err := q.pool.QueryRow(ctx, `
SELECT id, code, kind, percent_off::text, amount_off_cents, min_subtotal_cents, priority, stackable,
       currency, active, valid_from, valid_to, usage_limit, used_count, created_at, updated_at
FROM coupons
WHERE code = $1`, code).Scan(
		&row.ID, &row.Code, &row.Kind, &percentOff, &row.AmountOff, &row.MinSubtotal, &row.Priority, &row.Stackable,
		&row.Currency, &row.Active, &row.ValidFrom, &row.ValidTo, &row.UsageLimit, &row.UsedCount, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		return CouponRow{}, err
	}
	row.PercentOff, err = decimal.NewFromString(percentOff)
	if err != nil {
		return CouponRow{}, err
	}
	return row, nil
}

// CouponReadStore validates coupon codes against the coupons table.
type CouponReadStore struct {
	queries CouponReadQueries
	clock   clock.Clock
	logger  *slog.Logger
}

func NewCouponReadStore(queries CouponReadQueries, clk clock.Clock, logger *slog.Logger) *CouponReadStore {
	return &CouponReadStore{
		queries: queries,
		clock:   clk,
		logger:  logger,
	}
}

func (r *CouponReadStore) FindByCode(ctx context.Context, code coupon.Code) (*coupon.Coupon, error) {
	row, err := r.queries.FindCouponByCode(ctx, code.String())
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "coupon not found", nil)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find coupon by code", err)
	}
	return toCouponFromRow(row)
}

// Validate returns the coupon's rule when it may be applied to a cart with
// the given subtotal and currency. Rejections are marked ErrInvalidCoupon
// and carry the reason.
func (r *CouponReadStore) Validate(ctx context.Context, code coupon.Code, subtotal money.Money, currency money.Currency, _ cart.OwnerRef) (coupon.Rule, error) {
	c, err := r.FindByCode(ctx, code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return coupon.Rule{}, errs.WithReasonf(errs.ErrInvalidCoupon, "coupon %s does not exist", code)
		}
		return coupon.Rule{}, errs.Mark(err, errs.ErrCollaboratorFailure)
	}

	if err := c.ValidateUsage(r.clock.Now(), subtotal, currency); err != nil {
		return coupon.Rule{}, errs.WithReason(errs.ErrInvalidCoupon, err.Error())
	}
	return c.Rule(), nil
}

func toCouponFromRow(row CouponRow) (*coupon.Coupon, error) {
	code, err := coupon.NewCouponCode(row.Code)
	if err != nil {
		return nil, err
	}
	kind, err := coupon.ParseKind(row.Kind)
	if err != nil {
		return nil, err
	}

	rule := coupon.Rule{
		Code:        code,
		Kind:        kind,
		PercentOff:  row.PercentOff,
		AmountOff:   row.AmountOff,
		MinSubtotal: row.MinSubtotal,
		Priority:    row.Priority,
		Stackable:   row.Stackable,
	}

	var currency *money.Currency
	if row.Currency.Valid {
		cur, err := money.NewCurrency(row.Currency.String)
		if err != nil {
			return nil, err
		}
		currency = &cur
	}

	return coupon.NewCoupon(
		row.ID,
		rule,
		currency,
		row.Active,
		pgconv.TimePtrFromPgtype(row.ValidFrom),
		pgconv.TimePtrFromPgtype(row.ValidTo),
		pgconv.IntPtrFromPgtype(row.UsageLimit),
		row.UsedCount,
		row.CreatedAt,
		row.UpdatedAt,
	)
}
