package bootstrap

import (
	"context"
	"log/slog"

	"cart-engine/internal/infra/messaging"
	"cart-engine/internal/pkg/config"
	"cart-engine/internal/usecase/shared"

	"go.uber.org/fx"
)

var MessagingModule = fx.Module("messaging",
	fx.Provide(
		NewEventPublisher,
	),
)

// NewEventPublisher publishes to RabbitMQ when RABBITMQ_URL is set and to
// the log otherwise.
func NewEventPublisher(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (shared.EventPublisher, error) {
	if cfg.Rabbit.URL == "" {
		logger.Warn("rabbitmq not configured, cart events are written to the log")
		return messaging.NewLogPublisher(logger), nil
	}

	pub, err := messaging.NewRabbitPublisher(cfg.Rabbit.URL, cfg.Rabbit.Exchange, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			pub.Close()
			return nil
		},
	})
	return pub, nil
}
