package queries

//go:generate mockgen -source=cart.go -destination=../../../tests/mock/queries/cart.go -package=queriesmock

import (
	"context"
	"errors"
	"log/slog"

	"cart-engine/internal/domain/cart"
	"cart-engine/internal/pkg/clock"
	"cart-engine/internal/pkg/errs"
	"cart-engine/internal/pkg/metrics"
	"cart-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type CartQueries interface {
	// Get returns the cart in any status. An active cart past its deadline is
	// flipped to expired and returned without error.
	Get(ctx context.Context, id uuid.UUID) (*cart.Snapshot, error)
	// GetActiveForOwner returns errs.ErrCartNotFound when the owner has no live cart.
	GetActiveForOwner(ctx context.Context, owner cart.OwnerRef) (*cart.Snapshot, error)
}

type cartQueriesImpl struct {
	repo    shared.CartRepository
	cache   shared.CartSnapshotCache
	expirer *shared.Expirer
	clock   clock.Clock
	logger  *slog.Logger
}

func NewCartQueries(repo shared.CartRepository, cache shared.CartSnapshotCache, events shared.EventPublisher, clk clock.Clock, logger *slog.Logger) CartQueries {
	return &cartQueriesImpl{
		repo:    repo,
		cache:   cache,
		expirer: shared.NewExpirer(repo, cache, events, logger),
		clock:   clk,
		logger:  logger,
	}
}

func (q *cartQueriesImpl) Get(ctx context.Context, id uuid.UUID) (snap *cart.Snapshot, err error) {
	defer func() { metrics.ObserveCartOperation("get", err) }()

	now := q.clock.Now()
	if cached, ok := q.fromCache(ctx, id); ok {
		// A cached active cart past its deadline still needs the persisted flip.
		if cached.Status != cart.StatusActive || cached.ExpiresAt == nil || now.Before(*cached.ExpiresAt) {
			return cached, nil
		}
	}

	for attempt := 0; attempt < 2; attempt++ {
		c, lerr := q.repo.Load(ctx, id)
		if lerr != nil {
			return nil, lerr
		}
		if _, xerr := q.expirer.ExpireIfDue(ctx, c, q.clock.Now()); xerr != nil {
			if errors.Is(xerr, shared.ErrVersionConflict) {
				continue
			}
			return nil, xerr
		}
		shared.StoreSnapshot(ctx, q.cache, q.logger, c)
		s := c.ToSnapshot()
		return &s, nil
	}
	return nil, errs.ErrConcurrentModification
}

func (q *cartQueriesImpl) GetActiveForOwner(ctx context.Context, owner cart.OwnerRef) (snap *cart.Snapshot, err error) {
	defer func() { metrics.ObserveCartOperation("get_active_for_owner", err) }()

	if owner.IsZero() {
		return nil, errs.ErrInvalidOwner
	}
	c, err := q.repo.LoadActiveForOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	expired, err := q.expirer.ExpireIfDue(ctx, c, q.clock.Now())
	if err != nil && !errors.Is(err, shared.ErrVersionConflict) {
		return nil, err
	}
	if expired {
		return nil, errs.WithReason(errs.ErrCartNotFound, "owner's cart has expired")
	}
	s := c.ToSnapshot()
	return &s, nil
}

func (q *cartQueriesImpl) fromCache(ctx context.Context, id uuid.UUID) (*cart.Snapshot, bool) {
	s, ok, err := q.cache.Get(ctx, id)
	if err != nil {
		q.logger.WarnContext(ctx, "cart snapshot cache read failed",
			slog.String("cart_id", id.String()),
			slog.String("error", err.Error()))
		return nil, false
	}
	return s, ok
}
