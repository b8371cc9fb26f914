package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/printshop/backend/internal/application/catalog"
	inventoryapp "github.com/printshop/backend/internal/application/inventory"
	partnerapp "github.com/printshop/backend/internal/application/partner"
	projectapp "github.com/printshop/backend/internal/application/project"
	quoteapp "github.com/printshop/backend/internal/application/quote"
	tradeapp "github.com/printshop/backend/internal/application/trade"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/domain/trade"
	"github.com/printshop/backend/internal/infrastructure/auth"
	"github.com/printshop/backend/internal/infrastructure/cache"
	"github.com/printshop/backend/internal/infrastructure/config"
	"github.com/printshop/backend/internal/infrastructure/event"
	"github.com/printshop/backend/internal/infrastructure/logger"
	"github.com/printshop/backend/internal/infrastructure/payment"
	"github.com/printshop/backend/internal/infrastructure/persistence"
	"github.com/printshop/backend/internal/infrastructure/storage"
	httpiface "github.com/printshop/backend/internal/interfaces/http"
	"github.com/printshop/backend/internal/interfaces/http/handler"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting printshop backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version))

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database,
		logger.NewGormLogger(log, gormlogger.Warn))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Repositories
	clientRepo := persistence.NewGormClientRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	usageRepo := persistence.NewGormUsageRecordRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	quoteRepo := persistence.NewGormQuoteRepository(db.DB)
	tokenRepo := persistence.NewGormTokenRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	txManager := persistence.NewGormTxManager(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Failed to stop event bus", zap.Error(err))
		}
	}()

	// Idempotency store: Redis when configured, in-process otherwise
	var idemStore shared.IdempotencyStore
	if cfg.Redis.Host != "" {
		redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisOptions{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, using in-process idempotency store", zap.Error(err))
			idemStore = cache.NewInMemoryIdempotencyStore()
		} else {
			idemStore = redisStore
		}
	} else {
		idemStore = cache.NewInMemoryIdempotencyStore()
	}
	defer func() {
		_ = idemStore.Close()
	}()

	// Payment gateway
	var gateway trade.PaymentGateway
	if cfg.Payment.BaseURL != "" {
		gateway, err = payment.NewHTTPGateway(payment.Config{
			BaseURL:       cfg.Payment.BaseURL,
			APIKey:        cfg.Payment.APIKey,
			WebhookSecret: cfg.Payment.WebhookSecret,
			Timeout:       cfg.Payment.Timeout,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize payment gateway", zap.Error(err))
		}
	} else {
		log.Warn("No payment gateway configured, using stub")
		gateway = payment.NewStubGateway(log)
	}

	// Asset storage
	var assetStorage quoteapp.AssetStorage
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3AssetStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignTTL))
		if err != nil {
			log.Fatal("Failed to initialize asset storage", zap.Error(err))
		}
		assetStorage = s3Storage
	} else {
		log.Warn("No object storage configured, using stub")
		assetStorage = storage.NewStubAssetStorage()
	}

	// Application services
	clientService := partnerapp.NewClientService(clientRepo, eventBus, log)
	ledgerService := inventoryapp.NewLedgerService(inventoryRepo, eventBus, log)
	usageService := inventoryapp.NewUsageRecorderService(usageRepo, ledgerService, txManager, log)
	productService := catalogapp.NewProductService(productRepo, log)
	projectService := projectapp.NewProjectService(projectRepo, log)

	quoteService := quoteapp.NewLifecycleService(quoteapp.LifecycleServiceConfig{
		QuoteRepo:      quoteRepo,
		TokenRepo:      tokenRepo,
		ProjectRepo:    projectRepo,
		Clients:        clientService,
		Storage:        assetStorage,
		Tx:             txManager,
		EventPublisher: eventBus,
		Logger:         log,
		TokenTTL:       cfg.Quote.TokenTTL,
	})

	orderService := tradeapp.NewOrderService(tradeapp.OrderServiceConfig{
		OrderRepo:      orderRepo,
		ProductRepo:    productRepo,
		Clients:        clientService,
		Gateway:        gateway,
		EventPublisher: eventBus,
		Logger:         log,
	})

	fulfillmentService := tradeapp.NewFulfillmentService(tradeapp.FulfillmentServiceConfig{
		OrderRepo:        orderRepo,
		ProductRepo:      productRepo,
		UsageRecorder:    usageService,
		IdempotencyStore: idemStore,
		IdempotencyCfg: &shared.IdempotencyConfig{
			TTL:     cfg.Idempotency.TTL,
			Enabled: cfg.Idempotency.Enabled,
		},
		EventPublisher: eventBus,
		Logger:         log,
	})

	jwtService := auth.NewJWTService(cfg.JWT)

	engine := httpiface.NewRouter(httpiface.RouterConfig{
		Config:     cfg,
		Logger:     log,
		JWTService: jwtService,
		System:     handler.NewSystemHandler(db.DB, version, log),
		Clients:    handler.NewClientHandler(clientService, log),
		Inventory:  handler.NewInventoryHandler(ledgerService, usageService, log),
		Products:   handler.NewProductHandler(productService, log),
		Quotes:     handler.NewQuoteHandler(quoteService, log),
		Orders:     handler.NewOrderHandler(orderService, fulfillmentService, log),
		Projects:   handler.NewProjectHandler(projectService, log),
		Webhooks:   handler.NewWebhookHandler(gateway, fulfillmentService, log),
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
