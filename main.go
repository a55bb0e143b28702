// Package main provides the main entry point for the Marlon leasing marketplace API
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/marlonhq/marlon-api/app/handlers"
	"github.com/marlonhq/marlon-api/app/router"
	"github.com/marlonhq/marlon-api/app/scheduler"
	"github.com/marlonhq/marlon-api/app/services"
	businessflow "github.com/marlonhq/marlon-api/business_flow"
	"github.com/marlonhq/marlon-api/config"
	"github.com/marlonhq/marlon-api/repository"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Marlon API...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure log output with rotation
	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Setup graceful shutdown
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging routes the standard logger through a size-rotated file when configured
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output != "file" && cfg.Output != "both" {
		return
	}

	rotated := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	if cfg.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, rotated))
	} else {
		log.SetOutput(rotated)
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeNotificationService initializes the notification service
func initializeNotificationService(cfg *config.ProductionConfig) services.NotificationService {
	var emailProvider services.EmailProvider
	if cfg.Email.Host == "" {
		emailProvider = services.NewMockEmailProvider()
	} else {
		emailProvider = services.NewSMTPEmailProvider(cfg.Email.Host, cfg.Email.Port, cfg.Email.Username, cfg.Email.Password, cfg.Email.FromEmail)
	}

	return services.NewNotificationService(emailProvider)
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	leaserRepo := repository.NewLeaserRepository(db)
	durationRepo := repository.NewLeasingDurationRepository(db)
	coefficientRepo := repository.NewLeaserCoefficientRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	orderItemRepo := repository.NewOrderItemRepository(db)
	orderLogRepo := repository.NewOrderLogRepository(db)

	// Initialize services
	rateTables := services.NewRateTableService(rc, coefficientRepo, cfg.Pricing.CacheKeyPrefix, cfg.Pricing.CoefficientCacheTTL)
	notifier := initializeNotificationService(cfg)

	// Initialize flows
	catalogFlow := businessflow.NewCatalogFlow(
		productRepo,
		durationRepo,
		leaserRepo,
		rateTables,
	)

	orderFlow := businessflow.NewOrderFlow(
		db,
		orderRepo,
		orderItemRepo,
		orderLogRepo,
		productRepo,
		leaserRepo,
		durationRepo,
		rateTables,
		notifier,
	)

	leaserAdminFlow := businessflow.NewLeaserAdminFlow(
		db,
		leaserRepo,
		durationRepo,
		coefficientRepo,
		productRepo,
		rateTables,
	)

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(catalogFlow)
	orderHandler := handlers.NewOrderHandler(orderFlow)
	orderAdminHandler := handlers.NewOrderAdminHandler(orderFlow)
	leaserAdminHandler := handlers.NewLeaserAdminHandler(leaserAdminFlow)

	// Initialize router
	appRouter := router.NewFiberRouter(
		catalogHandler,
		orderHandler,
		orderAdminHandler,
		leaserAdminHandler,
	)

	if rc != nil && cfg.Pricing.CacheRefreshEnabled {
		// Keep the coefficient cache warm in the background
		refresher := scheduler.NewRateRefresher(leaserRepo, rateTables, log.Default(), cfg.Pricing.CacheRefreshInterval)
		stopRefresher := refresher.Start(context.Background())
		stopFuncs = append(stopFuncs, stopRefresher)
	}

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
