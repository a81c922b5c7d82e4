package shared

import (
	"context"
	"log/slog"
	"time"

	"cart-engine/internal/domain/cart"
)

// Expirer persists the lazy Active -> Expired flip that reads and
// mutations discover when they load a cart past its deadline.
type Expirer struct {
	repo   CartRepository
	cache  CartSnapshotCache
	events EventPublisher
	logger *slog.Logger
}

func NewExpirer(repo CartRepository, cache CartSnapshotCache, events EventPublisher, logger *slog.Logger) *Expirer {
	return &Expirer{repo: repo, cache: cache, events: events, logger: logger}
}

// ExpireIfDue flips c when due and persists it. It reports whether c is now
// expired. A version conflict means another writer got there first; the
// caller should reload.
func (e *Expirer) ExpireIfDue(ctx context.Context, c *cart.Cart, now time.Time) (bool, error) {
	if !c.ExpireIfDue(now) {
		return c.Status() == cart.StatusExpired, nil
	}
	if err := e.repo.Save(ctx, c); err != nil {
		return true, err
	}
	e.logger.InfoContext(ctx, "cart expired",
		slog.String("cart_id", c.ID().String()),
		slog.String("owner", c.Owner().Key()),
		slog.Int64("version", c.Version()))
	StoreSnapshot(ctx, e.cache, e.logger, c)
	PublishAll(ctx, e.events, e.logger, NewEvent(EventCartExpired, c, now, nil))
	return true, nil
}

// StoreSnapshot writes through to the read cache. Failures only cost a
// cache miss, so they are logged.
func StoreSnapshot(ctx context.Context, cache CartSnapshotCache, logger *slog.Logger, carts ...*cart.Cart) {
	for _, c := range carts {
		if err := cache.Put(ctx, c.ToSnapshot()); err != nil {
			logger.WarnContext(ctx, "cart snapshot cache write failed",
				slog.String("cart_id", c.ID().String()),
				slog.String("error", err.Error()))
			if ierr := cache.Invalidate(ctx, c.ID()); ierr != nil {
				logger.WarnContext(ctx, "cart snapshot cache invalidate failed",
					slog.String("cart_id", c.ID().String()),
					slog.String("error", ierr.Error()))
			}
		}
	}
}
