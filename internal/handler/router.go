package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"cart-engine/internal/handler/api"
	"cart-engine/internal/handler/middleware"
	"cart-engine/internal/pkg/config"
	"cart-engine/internal/pkg/metrics"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, requestLogger *middleware.Logger, logger *slog.Logger, cartHandler *api.CartHandler) {
	setupMiddleware(engine, cfg, requestLogger, logger)
	setupRoutes(engine, cartHandler)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, requestLogger *middleware.Logger, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery(logger))
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS, logger))
	engine.Use(metrics.Middleware())
	// Owner resolution precedes logging so request logs carry the owner key
	engine.Use(middleware.ResolveOwner())
	engine.Use(requestLogger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler(logger))
}

func setupRoutes(engine *gin.Engine, cartHandler *api.CartHandler) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		carts := apiGroup.Group("/carts")
		{
			addRoutes(carts, []route{
				{Method: http.MethodPost, Path: "", Handler: cartHandler.GetOrCreate, Mw: []gin.HandlerFunc{middleware.RequireOwner()}},
				{Method: http.MethodGet, Path: "/current", Handler: cartHandler.GetCurrent, Mw: []gin.HandlerFunc{middleware.RequireOwner()}},
				{Method: http.MethodGet, Path: "/:id", Handler: cartHandler.Get},
				{Method: http.MethodPost, Path: "/:id/items", Handler: cartHandler.AddItem},
				{Method: http.MethodPatch, Path: "/:id/items/:itemId", Handler: cartHandler.UpdateItemQuantity},
				{Method: http.MethodDelete, Path: "/:id/items/:itemId", Handler: cartHandler.RemoveItem},
				{Method: http.MethodPost, Path: "/:id/coupons", Handler: cartHandler.ApplyCoupon},
				{Method: http.MethodDelete, Path: "/:id/coupons/:code", Handler: cartHandler.RemoveCoupon},
				{Method: http.MethodPut, Path: "/:id/shipping-address", Handler: cartHandler.SetShippingAddress},
				{Method: http.MethodPatch, Path: "/:id/shipping-address", Handler: cartHandler.PatchShippingAddress},
				{Method: http.MethodPost, Path: "/:id/reprice", Handler: cartHandler.Reprice},
				{Method: http.MethodPost, Path: "/:id/merge", Handler: cartHandler.Merge},
				{Method: http.MethodPost, Path: "/:id/checkout", Handler: cartHandler.Checkout},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
