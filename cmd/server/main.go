package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bloodbank-api/internal/adapters/cache"
	"bloodbank-api/internal/adapters/http/handlers"
	"bloodbank-api/internal/adapters/http/middleware"
	"bloodbank-api/internal/adapters/http/routes"
	"bloodbank-api/internal/adapters/persistence/memory"
	"bloodbank-api/internal/adapters/persistence/models"
	"bloodbank-api/internal/adapters/persistence/repositories"
	"bloodbank-api/internal/config"
	"bloodbank-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	_ "bloodbank-api/docs" // Swagger docs
)

// @title Blood Bank API
// @version 1.0
// @description Blood bank administration API: inventory, donors and hospital requests
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@bloodbank.local

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("❌ Failed to open store", zap.Error(err))
	}
	if !cfg.UsesMemory() {
		defer config.CloseDatabase()
	}

	// Seed bootstrap admin (and demo data in dev memory mode)
	if err := config.NewSeeder(store, cfg, logger).Run(context.Background()); err != nil {
		logger.Warn("⚠️ Seeding failed", zap.Error(err))
	}

	// Optional Redis stats cache
	var kv cache.KV
	var cachePinger handlers.Pinger
	if cfg.Redis.Addr != "" {
		redisKV := cache.NewRedisKV(cache.NewRedisClient(cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
		defer redisKV.Close()
		kv, cachePinger = redisKV, redisKV
		logger.Info("✅ Redis stats cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	notifier := services.NewNotificationService(cfg.Line.BaseURL, cfg.Line.Token, logger)
	if !notifier.IsEnabled() {
		logger.Info("ℹ️ LINE notifications disabled")
	}

	inventoryService := services.NewInventoryService(
		store.Lots,
		store.Transactions,
		kv,
		time.Duration(cfg.Redis.StatsTTLSeconds)*time.Second,
		logger,
	)
	svc := &routes.Services{
		Auth:      services.NewAuthService(store.Users, store.RefreshTokens, cfg, logger),
		User:      services.NewUserService(store.Users, logger),
		Inventory: inventoryService,
		Donor:     services.NewDonorService(store.Donors, logger),
		Request:   services.NewHospitalRequestService(store.Requests, notifier, logger),
		Dashboard: services.NewDashboardService(inventoryService, store.Donors, store.Requests, store.Transactions),
		Store:     store.Lots,
		Cache:     cachePinger,
	}

	// Daily stock check
	if cfg.StockWatch.Cron != "" {
		stockWatch := services.NewStockWatchService(store.Lots, notifier, cfg.StockWatch.Cron, logger)
		if err := stockWatch.Start(); err != nil {
			logger.Fatal("❌ Failed to start stock watch", zap.Error(err))
		}
		defer stockWatch.Stop()
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Blood Bank API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg, logger)

	// Setup routes
	routes.Setup(app, cfg, svc)

	// Graceful shutdown
	go gracefulShutdown(app, logger)

	// Start server
	logger.Info("🚀 Server starting",
		zap.String("port", cfg.Port),
		zap.String("mode", cfg.AppMode),
		zap.String("storage", cfg.Storage),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("❌ Failed to start server", zap.Error(err))
	}
}

// openStore selects the in-memory store or connects and migrates the database
func openStore(cfg *config.Config, logger *zap.Logger) (*repositories.Store, error) {
	if cfg.UsesMemory() {
		logger.Info("✅ Using in-memory store")
		return memory.NewStore(), nil
	}

	db, err := config.ConnectDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}
	logger.Info("✅ Database migration completed")

	return repositories.NewStore(db), nil
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		logger.Error("❌ Error during shutdown", zap.Error(err))
	}
	logger.Info("✅ Server stopped gracefully")
}
