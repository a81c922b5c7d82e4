package bootstrap

import (
	"context"
	"log/slog"

	"cart-engine/internal/infra/db"
	"cart-engine/internal/infra/migrate"
	"cart-engine/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

func NewDB(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	ctx := context.Background()
	if cfg.DB.MigrateOnBoot {
		if err := migrate.Apply(ctx, cfg.DB); err != nil {
			return nil, err
		}
		logger.Info("database migrations applied")
	}

	pool, cleanup, err := db.Connect(ctx, cfg.DB, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return pool, nil
}
