package components

import (
	"cart-engine/internal/infra/cache"
	"cart-engine/internal/infra/memstore"
	"cart-engine/internal/infra/readstore"
	repo_impl "cart-engine/internal/infra/repository"
	"cart-engine/internal/pkg/clock"
	"cart-engine/internal/pkg/config"
	"cart-engine/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repo_impl.NewCartRepository,
			fx.As(new(shared.CartRepository)),
		),
		// Read-side collaborators backed by the catalog tables
		readstore.NewCouponQueries,
		readstore.NewProductQueries,
		fx.Annotate(
			readstore.NewCouponReadStore,
			fx.As(new(shared.CouponValidator)),
		),
		fx.Annotate(
			readstore.NewProductReadStore,
			fx.As(new(shared.ProductCatalog)),
		),
		NewIdempotencyStore,
		NewSnapshotCache,
	),
)

func NewIdempotencyStore(client *redis.Client, clk clock.Clock) shared.IdempotencyStore {
	if client == nil {
		return memstore.NewIdempotencyStore(clk)
	}
	return cache.NewRedisIdempotencyStore(client)
}

func NewSnapshotCache(client *redis.Client, cfg config.Config) shared.CartSnapshotCache {
	if client == nil {
		return memstore.NewSnapshotCache()
	}
	return cache.NewRedisSnapshotCache(client, cfg.Redis.SnapshotTTL)
}
