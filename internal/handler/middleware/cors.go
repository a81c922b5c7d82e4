package middleware

import (
	"log/slog"
	"net/http"
	"slices"

	"cart-engine/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Headers the cart API cannot work without, kept even when the configured
// lists omit them.
var (
	requiredAllowHeaders  = []string{"If-Match", "Idempotency-Key", HeaderUserID, HeaderSessionID}
	requiredExposeHeaders = []string{"ETag", HeaderRequestID}
)

func NewCORSMiddleware(cfg config.CORSConfig, logger *slog.Logger) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     withRequired(cfg.AllowMethods, []string{http.MethodPut, http.MethodPatch, http.MethodDelete}),
		AllowHeaders:     withRequired(cfg.AllowHeaders, requiredAllowHeaders),
		ExposeHeaders:    withRequired(cfg.ExposeHeaders, requiredExposeHeaders),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	logger.Info("CORS middleware initialized", "allow_origins", cfg.AllowOrigins)
	return cors.New(corsCfg)
}

func withRequired(configured, required []string) []string {
	out := append([]string(nil), configured...)
	for _, h := range required {
		if !slices.ContainsFunc(out, func(v string) bool { return http.CanonicalHeaderKey(v) == http.CanonicalHeaderKey(h) }) {
			out = append(out, h)
		}
	}
	return out
}
