package router

import (
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"

	"github.com/atelier-erp/backend/internal/infrastructure/auth"
	"github.com/atelier-erp/backend/internal/infrastructure/config"
	"github.com/atelier-erp/backend/internal/infrastructure/logger"
	"github.com/atelier-erp/backend/internal/interfaces/http/handler"
	"github.com/atelier-erp/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the API handlers wired into the router
type Handlers struct {
	Fulfillment *handler.FulfillmentHandler
	Inventory   *handler.InventoryHandler
	Production  *handler.ProductionHandler
	Finance     *handler.FinanceHandler
	System      *handler.SystemHandler
}

// New builds the gin engine with the middleware chain and all API routes
func New(cfg *config.Config, log *zap.Logger, jwtService *auth.JWTService, h Handlers) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	middleware.SetupValidator()

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))

	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	// liveness endpoints stay outside the authenticated group
	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(jwtService))

	orders := api.Group("/orders")
	{
		orders.POST("", h.Fulfillment.Create)
		orders.GET("", h.Fulfillment.List)
		orders.GET("/:id", h.Fulfillment.GetByID)
		orders.POST("/:id/confirm", h.Fulfillment.Confirm)
		orders.POST("/:id/cancel", h.Fulfillment.Cancel)
		orders.GET("/:id/production-need", h.Fulfillment.EvaluateProductionNeed)
		orders.POST("/:id/start-production", h.Fulfillment.StartProduction)
		orders.POST("/:id/ready-to-export", h.Fulfillment.MarkReadyToExport)
		orders.POST("/:id/export", h.Fulfillment.Export)
		orders.POST("/:id/complete", h.Fulfillment.Complete)
		orders.GET("/:id/exports", h.Inventory.GetExportsByOrder)
		orders.GET("/:id/production-orders", h.Production.GetBySourceOrder)
	}

	inventory := api.Group("/inventory")
	{
		inventory.POST("/evaluate", h.Inventory.EvaluateStock)
		inventory.POST("/receive", h.Inventory.ReceiveStock)
		inventory.GET("/warehouses/:id/balances", h.Inventory.GetWarehouseBalances)
	}

	production := api.Group("/production-orders")
	{
		production.GET("/:id", h.Production.GetByID)
		production.POST("/:id/start", h.Production.Start)
		production.POST("/:id/finish", h.Production.Finish)
	}

	finance := api.Group("/finance")
	{
		finance.POST("/payments", h.Finance.RecordPayment)
		finance.GET("/payments", h.Finance.GetPaymentsByTarget)
		finance.GET("/partners/:id/debts", h.Finance.GetDebtSummary)
	}

	return engine
}
