package components

import (
	"cart-engine/internal/infra/pricing"
	"cart-engine/internal/pkg/clock"
	"cart-engine/internal/pkg/config"
	"cart-engine/internal/usecase/commands"
	"cart-engine/internal/usecase/queries"
	"cart-engine/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecasePricingModule,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecasePricingModule = fx.Module("usecase/pricing",
	fx.Provide(
		func(cfg config.Config) config.PricingConfig {
			return cfg.Pricing
		},
		fx.Annotate(
			pricing.NewFlatTaxEngine,
			fx.As(new(shared.TaxEngine)),
		),
		fx.Annotate(
			pricing.NewFlatShippingEngine,
			fx.As(new(shared.ShippingEngine)),
		),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewCartCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewCartQueries,
	),
)
