package bootstrap

import (
	"log/slog"

	"cart-engine/internal/handler/middleware"
	"cart-engine/internal/pkg/config"

	"go.uber.org/fx"
)

var LoggerModule = fx.Module("logger",
	fx.Provide(
		NewRequestLogger,
		NewLogger,
	),
)

func NewRequestLogger(cfg config.Config) *middleware.Logger {
	return middleware.NewLogger(cfg.Log)
}

// NewLogger shares the request logger's handler so every component logs
// with the same level, format and timezone.
func NewLogger(l *middleware.Logger) *slog.Logger {
	return l.GetSlogLogger()
}
