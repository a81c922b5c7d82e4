package readstore

import (
	"context"
	"log/slog"

	"cart-engine/internal/domain/cart"
	"cart-engine/internal/domain/money"
	"cart-engine/internal/infra"
	"cart-engine/internal/pkg/errs"
	"cart-engine/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductPriceRow struct {
	PriceCents int64
	Available  bool
}

type ProductReadQueries interface {
	FindProductPrice(ctx context.Context, productID, currency string) (ProductPriceRow, error)
}

type pgProductQueries struct {
	pool *pgxpool.Pool
}

func NewProductQueries(pool *pgxpool.Pool) ProductReadQueries {
	return &pgProductQueries{pool: pool}
}

func (q *pgProductQueries) FindProductPrice(ctx context.Context, productID, currency string) (ProductPriceRow, error) {
	var row ProductPriceRow
	err := q.pool.QueryRow(ctx, `
SELECT price_cents, available
FROM products
WHERE id = $1 AND currency = $2`, productID, currency).Scan(&row.PriceCents, &row.Available)
	return row, err
}

// ProductReadStore answers current-price lookups from the products table.
type ProductReadStore struct {
	queries ProductReadQueries
	logger  *slog.Logger
}

func NewProductReadStore(queries ProductReadQueries, logger *slog.Logger) *ProductReadStore {
	return &ProductReadStore{
		queries: queries,
		logger:  logger,
	}
}

// CurrentPrice reports products with no price in the requested currency as
// unavailable.
func (r *ProductReadStore) CurrentPrice(ctx context.Context, productID string, currency money.Currency) (cart.PriceQuote, error) {
	row, err := r.queries.FindProductPrice(ctx, productID, currency.String())
	if err != nil {
		if pgconv.IsNoRows(err) {
			return cart.PriceQuote{Available: false}, nil
		}
		wrapped := infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to look up product price", err)
		return cart.PriceQuote{}, errs.Mark(wrapped, errs.ErrCollaboratorFailure)
	}
	if row.PriceCents < 0 {
		return cart.PriceQuote{Available: false}, nil
	}
	return cart.PriceQuote{
		UnitPrice: money.FromCents(row.PriceCents),
		Available: row.Available,
	}, nil
}
