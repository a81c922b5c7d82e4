package repository

import (
	"context"
	"encoding/json"
	"log/slog"

	"cart-engine/internal/domain/cart"
	"cart-engine/internal/infra"
	"cart-engine/internal/infra/db"
	"cart-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const activeOwnerConstraint = "carts_active_owner_key"

const cartColumns = `
id, user_id, session_id, status, currency, coupons, shipping_address,
subtotal_cents, discount_cents, tax_cents, shipping_cents, total_cents, free_shipping,
expires_at, prices_verified_at, version, created_at, updated_at`

const itemColumns = `
id, cart_id, product_id, product_name, sku, image_url, quantity, unit_price_cents,
attributes, unavailable, added_at, updated_at`

type CartRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewCartRepository(pool *pgxpool.Pool, logger *slog.Logger) *CartRepository {
	return &CartRepository{
		pool:   pool,
		logger: logger,
	}
}

func (r *CartRepository) Load(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	return r.fetch(ctx, `SELECT`+cartColumns+` FROM carts WHERE id = $1`, id)
}

func (r *CartRepository) LoadActiveForOwner(ctx context.Context, owner cart.OwnerRef) (*cart.Cart, error) {
	return r.fetch(ctx, `SELECT`+cartColumns+` FROM carts WHERE owner_key = $1 AND status = 'active'`, owner.Key())
}

// Save writes every cart in one transaction. A cart at version 0 is
// inserted; any other cart is updated only if its stored version still
// matches, otherwise the whole batch rolls back with a version conflict.
func (r *CartRepository) Save(ctx context.Context, carts ...*cart.Cart) error {
	if len(carts) == 0 {
		return nil
	}

	err := db.RunInTx(ctx, r.pool, r.logger, func(ctx context.Context, tx db.DBTX) error {
		for _, c := range carts {
			if err := r.saveOne(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, c := range carts {
		c.MarkPersisted(c.Version() + 1)
	}
	return nil
}

func (r *CartRepository) saveOne(ctx context.Context, tx db.DBTX, c *cart.Cart) error {
	s := c.ToSnapshot()
	row, err := snapshotToRow(s)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to encode cart", err)
	}

	if s.Version == 0 {
		_, err = tx.Exec(ctx, `
INSERT INTO carts (`+cartColumns+`, owner_key)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 1, $16, $17, $18)`,
			row.id, row.userID, row.sessionID, row.status, row.currency, row.coupons, row.address,
			row.subtotal, row.discount, row.tax, row.shipping, row.total, row.freeShipping,
			row.expiresAt, row.pricesVerifiedAt, row.createdAt, row.updatedAt, c.Owner().Key(),
		)
		if err != nil {
			if pgconv.IsUniqueViolation(err, activeOwnerConstraint) {
				return infra.WrapRepoErr(r.logger, infra.KindActiveCartExists, "owner already has an active cart", err)
			}
			return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to insert cart", err)
		}
	} else {
		tag, err := tx.Exec(ctx, `
UPDATE carts SET
    status = $3, currency = $4, coupons = $5, shipping_address = $6,
    subtotal_cents = $7, discount_cents = $8, tax_cents = $9, shipping_cents = $10,
    total_cents = $11, free_shipping = $12, expires_at = $13, prices_verified_at = $14,
    updated_at = $15, version = version + 1
WHERE id = $1 AND version = $2`,
			row.id, s.Version, row.status, row.currency, row.coupons, row.address,
			row.subtotal, row.discount, row.tax, row.shipping, row.total, row.freeShipping,
			row.expiresAt, row.pricesVerifiedAt, row.updatedAt,
		)
		if err != nil {
			if pgconv.IsUniqueViolation(err, activeOwnerConstraint) {
				return infra.WrapRepoErr(r.logger, infra.KindActiveCartExists, "owner already has an active cart", err)
			}
			return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to update cart", err)
		}
		if tag.RowsAffected() == 0 {
			return infra.WrapRepoErr(r.logger, infra.KindVersionConflict, "cart was modified concurrently", nil)
		}
		// Converted is terminal, so the only update that stores it is the
		// conversion itself.
		if s.Status == cart.StatusConverted {
			if err := r.redeemCoupons(ctx, tx, s); err != nil {
				return err
			}
		}
	}

	return r.replaceItems(ctx, tx, s)
}

// redeemCoupons counts one use of every coupon on the converted cart. A
// coupon that is exhausted or gone rolls the conversion back.
func (r *CartRepository) redeemCoupons(ctx context.Context, tx db.DBTX, s cart.Snapshot) error {
	if len(s.Coupons) == 0 {
		return nil
	}
	codes := make([]string, 0, len(s.Coupons))
	for _, ac := range s.Coupons {
		codes = append(codes, ac.Rule.Code.String())
	}
	tag, err := tx.Exec(ctx, `
UPDATE coupons SET used_count = used_count + 1, updated_at = NOW()
WHERE code = ANY($1) AND (usage_limit IS NULL OR used_count < usage_limit)`, codes)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to redeem coupons", err)
	}
	if tag.RowsAffected() != int64(len(codes)) {
		return infra.WrapRepoErr(r.logger, infra.KindCouponExhausted, "coupon usage limit reached", nil)
	}
	return nil
}

func (r *CartRepository) replaceItems(ctx context.Context, tx db.DBTX, s cart.Snapshot) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, s.ID); err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to clear cart items", err)
	}

	for pos, item := range s.Items {
		ir, err := itemToRow(item)
		if err != nil {
			return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to encode cart item", err)
		}
		_, err = tx.Exec(ctx, `
INSERT INTO cart_items (`+itemColumns+`, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			ir.id, s.ID, ir.productID, ir.productName, ir.sku, ir.imageURL, ir.quantity, ir.unitPrice,
			ir.attributes, ir.unavailable, ir.addedAt, ir.updatedAt, pos,
		)
		if err != nil {
			return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to insert cart item", err)
		}
	}
	return nil
}

func (r *CartRepository) fetch(ctx context.Context, query string, args ...any) (*cart.Cart, error) {
	var row cartRow
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&row.id, &row.userID, &row.sessionID, &row.status, &row.currency, &row.coupons, &row.address,
		&row.subtotal, &row.discount, &row.tax, &row.shipping, &row.total, &row.freeShipping,
		&row.expiresAt, &row.pricesVerifiedAt, &row.version, &row.createdAt, &row.updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "cart not found", nil)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to load cart", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT`+itemColumns+` FROM cart_items WHERE cart_id = $1 ORDER BY position`, row.id)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to load cart items", err)
	}
	defer rows.Close()

	var items []itemRow
	for rows.Next() {
		var ir itemRow
		var cartID uuid.UUID
		if err := rows.Scan(
			&ir.id, &cartID, &ir.productID, &ir.productName, &ir.sku, &ir.imageURL, &ir.quantity, &ir.unitPrice,
			&ir.attributes, &ir.unavailable, &ir.addedAt, &ir.updatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan cart item", err)
		}
		items = append(items, ir)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to iterate cart items", err)
	}

	s, err := rowToSnapshot(row, items)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to decode cart", err)
	}
	c, err := cart.FromSnapshot(s)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "stored cart is invalid", err)
	}
	return c, nil
}

// jsonOrNull keeps absent optional documents as SQL NULL.
func jsonOrNull(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
