package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appfinance "github.com/atelier-erp/backend/internal/application/finance"
	appinventory "github.com/atelier-erp/backend/internal/application/inventory"
	appproduction "github.com/atelier-erp/backend/internal/application/production"
	appsales "github.com/atelier-erp/backend/internal/application/sales"
	"github.com/atelier-erp/backend/internal/domain/shared"
	"github.com/atelier-erp/backend/internal/infrastructure/auth"
	"github.com/atelier-erp/backend/internal/infrastructure/cache"
	"github.com/atelier-erp/backend/internal/infrastructure/config"
	"github.com/atelier-erp/backend/internal/infrastructure/event"
	"github.com/atelier-erp/backend/internal/infrastructure/logger"
	"github.com/atelier-erp/backend/internal/infrastructure/persistence"
	"github.com/atelier-erp/backend/internal/interfaces/http/handler"
	"github.com/atelier-erp/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewForEnvironment(cfg.App.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	// repositories
	orderRepo := persistence.NewGormSalesOrderRepository(db.DB)
	balanceRepo := persistence.NewGormInventoryBalanceRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	productionRepo := persistence.NewGormProductionOrderRepository(db.DB)
	bomRepo := persistence.NewGormBOMRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)
	productionScope := persistence.NewGormProductionTransactionScope(db.DB)
	confirmScope := persistence.NewGormConfirmationScope(db.DB)
	financeScope := persistence.NewGormFinanceTransactionScope(db.DB)

	// event bus
	bus := event.NewInMemoryEventBus(log)

	// idempotency store for payment submission
	idemStore, err := newIdempotencyStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idemStore.Close()
	}()

	// application services
	stockService := appinventory.NewStockService(balanceRepo, warehouseRepo, inventoryScope, log)
	productionService := appproduction.NewProductionService(productionRepo, bomRepo, itemRepo, productionScope, log)
	fulfillmentService := appsales.NewFulfillmentService(orderRepo, confirmScope, stockService, productionService, stockService, log)
	paymentService := appfinance.NewPaymentService(financeScope, log)

	stockService.SetEventPublisher(bus)
	productionService.SetEventPublisher(bus)
	fulfillmentService.SetEventPublisher(bus)
	paymentService.SetEventPublisher(bus)
	paymentService.SetIdempotencyStore(idemStore, shared.IdempotencyConfig{
		TTL:     cfg.Idempotency.TTL,
		Enabled: cfg.Idempotency.Enabled,
	})

	jwtService := auth.NewJWTService(cfg.JWT)

	handlers := router.Handlers{
		Fulfillment: handler.NewFulfillmentHandler(fulfillmentService),
		Inventory:   handler.NewInventoryHandler(stockService),
		Production:  handler.NewProductionHandler(productionService),
		Finance:     handler.NewFinanceHandler(paymentService),
		System:      handler.NewSystemHandler(db, version),
	}

	engine := router.New(cfg, log, jwtService, handlers)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

// newIdempotencyStore picks the backend configured for duplicate payment
// detection
func newIdempotencyStore(cfg *config.Config, log *zap.Logger) (shared.IdempotencyStore, error) {
	switch cfg.Idempotency.Backend {
	case "redis":
		log.Info("Using Redis idempotency store",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
		return cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	default:
		log.Info("Using in-memory idempotency store")
		return cache.NewInMemoryIdempotencyStore(), nil
	}
}
