package components

import (
	"cart-engine/internal/handler"
	"cart-engine/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCartHandler,
	),
	fx.Invoke(handler.NewRouter),
)
