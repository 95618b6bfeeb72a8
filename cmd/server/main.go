package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/erp/contracts/internal/application/catalog"
	contractapp "github.com/erp/contracts/internal/application/contract"
	invoicingapp "github.com/erp/contracts/internal/application/invoicing"
	partnerapp "github.com/erp/contracts/internal/application/partner"
	contractdomain "github.com/erp/contracts/internal/domain/contract"
	"github.com/erp/contracts/internal/infrastructure/cache"
	"github.com/erp/contracts/internal/infrastructure/config"
	"github.com/erp/contracts/internal/infrastructure/event"
	"github.com/erp/contracts/internal/infrastructure/logger"
	"github.com/erp/contracts/internal/infrastructure/persistence"
	"github.com/erp/contracts/internal/infrastructure/scheduler"
	"github.com/erp/contracts/internal/interfaces/http/handler"
	"github.com/erp/contracts/internal/interfaces/http/middleware"
	"github.com/erp/contracts/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting contract billing service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Consumption runs are serialized per tenant through Redis. Without Redis
	// an in-process guard still protects a single instance.
	var runGuard contractapp.RunGuard
	redisGuard, err := cache.NewRedisRunGuard(&cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory run guard", zap.Error(err))
		runGuard = cache.NewInMemoryRunGuard()
	} else {
		runGuard = redisGuard
		defer func() {
			if err := redisGuard.Close(); err != nil {
				log.Error("Error closing redis connection", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	contractRepo := persistence.NewGormContractRepository(db.DB)
	consumptionRepo := persistence.NewGormConsumptionRepository(db.DB)
	partyRepo := persistence.NewGormPartyRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	defaultsRepo := persistence.NewGormAccountDefaultsRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)

	// Event bus with an audit trail of every published domain event
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewLoggingEventHandler(log))

	clock := contractdomain.SystemClock{}

	// Application services
	contractService := contractapp.NewContractService(contractRepo, partyRepo, eventBus)
	consumptionService := contractapp.NewConsumptionService(
		contractRepo, consumptionRepo, runGuard, clock, eventBus, log,
	)
	invoicingService := invoicingapp.NewInvoicingService(
		contractRepo, consumptionRepo, invoiceRepo, partyRepo, productRepo, defaultsRepo, eventBus, clock, log,
	)
	partyService := partnerapp.NewPartyService(partyRepo, eventBus)
	productService := catalogapp.NewProductService(productRepo, defaultsRepo, eventBus)

	// Daily consumption scheduler
	var consumptionScheduler *scheduler.ConsumptionCronScheduler
	if cfg.Scheduler.Enabled {
		consumptionScheduler, err = scheduler.NewConsumptionCronScheduler(
			cfg.Scheduler, consumptionService, persistence.NewGormTenantSource(db.DB), log,
		)
		if err != nil {
			log.Fatal("Failed to create consumption scheduler", zap.Error(err))
		}
		if err := consumptionScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start consumption scheduler", zap.Error(err))
		}
		defer func() {
			if err := consumptionScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping consumption scheduler", zap.Error(err))
			}
		}()
		log.Info("Consumption scheduler started",
			zap.String("cron", cfg.Scheduler.DailyCronSchedule),
			zap.Duration("job_timeout", cfg.Scheduler.JobTimeout),
		)
	}

	// HTTP handlers
	contractHandler := handler.NewContractHandler(contractService)
	consumptionHandler := handler.NewConsumptionHandler(consumptionService)
	invoiceHandler := handler.NewInvoiceHandler(invoicingService)
	partyHandler := handler.NewPartyHandler(partyService)
	productHandler := handler.NewProductHandler(productService)
	systemHandler := handler.NewSystemHandler(db, consumptionScheduler)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(cfg.App.Name))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Liveness and readiness live outside API versioning and tenant scoping
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.Tenant())

	contractRoutes := router.NewDomainGroup("/contracts")
	contractRoutes.POST("", contractHandler.Create)
	contractRoutes.GET("", contractHandler.List)
	contractRoutes.GET("/:id", contractHandler.GetByID)
	contractRoutes.PUT("/:id", contractHandler.Update)
	contractRoutes.DELETE("/:id", contractHandler.Delete)
	contractRoutes.POST("/:id/lines", contractHandler.AddLine)
	contractRoutes.PUT("/:id/lines/:line_id", contractHandler.UpdateLine)
	contractRoutes.DELETE("/:id/lines/:line_id", contractHandler.RemoveLine)
	contractRoutes.POST("/:id/validate", contractHandler.Validate)
	contractRoutes.POST("/:id/cancel", contractHandler.Cancel)
	contractRoutes.POST("/:id/draft", contractHandler.Draft)
	contractRoutes.POST("/:id/copy", contractHandler.Copy)
	contractRoutes.GET("/:id/consumptions", consumptionHandler.ListByContract)
	contractRoutes.POST("/:id/consumptions/run", consumptionHandler.RunForContract)
	r.Register(contractRoutes)

	consumptionRoutes := router.NewDomainGroup("/consumptions")
	consumptionRoutes.POST("/run", consumptionHandler.Run)
	r.Register(consumptionRoutes)

	invoiceRoutes := router.NewDomainGroup("/invoices")
	invoiceRoutes.POST("/consume", invoiceHandler.InvoiceConsumptions)
	invoiceRoutes.GET("", invoiceHandler.List)
	invoiceRoutes.GET("/:id", invoiceHandler.GetByID)
	invoiceRoutes.POST("/:id/post", invoiceHandler.Post)
	r.Register(invoiceRoutes)

	partyRoutes := router.NewDomainGroup("/parties")
	partyRoutes.POST("", partyHandler.Create)
	partyRoutes.GET("", partyHandler.List)
	partyRoutes.GET("/:id", partyHandler.GetByID)
	partyRoutes.PUT("/:id", partyHandler.Update)
	partyRoutes.DELETE("/:id", partyHandler.Delete)
	partyRoutes.POST("/:id/tax-substitutions", partyHandler.AddTaxSubstitution)
	partyRoutes.DELETE("/:id/tax-substitutions/:tax_code", partyHandler.RemoveTaxSubstitution)
	r.Register(partyRoutes)

	productRoutes := router.NewDomainGroup("/products")
	productRoutes.POST("", productHandler.Create)
	productRoutes.GET("", productHandler.List)
	productRoutes.GET("/:id", productHandler.GetByID)
	productRoutes.PUT("/:id", productHandler.Update)
	productRoutes.DELETE("/:id", productHandler.Delete)
	productRoutes.POST("/:id/taxes", productHandler.AddTax)
	productRoutes.DELETE("/:id/taxes/:tax_code", productHandler.RemoveTax)
	r.Register(productRoutes)

	settingsRoutes := router.NewDomainGroup("/settings")
	settingsRoutes.GET("/account-defaults", productHandler.GetAccountDefaults)
	settingsRoutes.PUT("/account-defaults", productHandler.SetAccountDefaults)
	r.Register(settingsRoutes)

	schedulerRoutes := router.NewDomainGroup("/scheduler")
	schedulerRoutes.GET("/status", systemHandler.SchedulerStatus)
	schedulerRoutes.POST("/run", systemHandler.SchedulerTrigger)
	r.Register(schedulerRoutes)

	r.Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	log.Info("Server stopped")
}
