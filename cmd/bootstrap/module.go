package bootstrap

import (
	"cart-engine/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	RedisModule,
	MessagingModule,
	components.RepositoryModule,
	components.UseCaseModule,
	components.HandlerModule,
)
