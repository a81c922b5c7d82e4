package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cart-engine/internal/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		NewRedisClient,
	),
)

// NewRedisClient returns nil when REDIS_ADDR is unset; consumers then fall
// back to in-process stores.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		logger.Warn("redis not configured, using in-process idempotency store and snapshot cache")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Redis.Addr, err)
	}
	logger.Info("redis connected", slog.String("addr", cfg.Redis.Addr))

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}
