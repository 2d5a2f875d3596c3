package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	ledgerapp "github.com/ledgerbooks/backend/internal/application/ledger"
	"github.com/ledgerbooks/backend/internal/infrastructure/config"
	"github.com/ledgerbooks/backend/internal/infrastructure/logger"
	"github.com/ledgerbooks/backend/internal/infrastructure/persistence"
	"github.com/ledgerbooks/backend/internal/interfaces/http/handler"
	"github.com/ledgerbooks/backend/internal/interfaces/http/middleware"
	"github.com/ledgerbooks/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
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
		_ = logger.Sync(log)
	}()

	log.Info("Starting LedgerBooks Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	chartAccountRepo := persistence.NewGormChartAccountRepository(db.DB)
	journalEntryRepo := persistence.NewGormJournalEntryRepository(db.DB)
	bankAccountRepo := persistence.NewGormBankAccountRepository(db.DB)
	bankTransactionRepo := persistence.NewGormBankTransactionRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db)

	// One lock registry for everything that mutates bank registers.
	// Journal postings and manual register entries must serialize on the
	// same per-account locks.
	registerLocks := ledgerapp.NewRegisterLocks()

	// Domain events are published to the structured log after commit
	eventPublisher := ledgerapp.NewLoggingEventPublisher(log)

	// Initialize application services
	chartAccountService := ledgerapp.NewChartAccountService(chartAccountRepo, eventPublisher)
	journalEntryService := ledgerapp.NewJournalEntryService(uow, journalEntryRepo, chartAccountRepo, bankTransactionRepo, registerLocks, eventPublisher, log)
	bankRegisterService := ledgerapp.NewBankRegisterService(uow, bankAccountRepo, bankTransactionRepo, registerLocks, eventPublisher, log)
	reconciliationService := ledgerapp.NewReconciliationService(uow, bankAccountRepo, bankTransactionRepo, log)

	// Initialize HTTP handlers
	chartAccountHandler := handler.NewChartAccountHandler(chartAccountService)
	ledgerEntryHandler := handler.NewLedgerEntryHandler(journalEntryService)
	bankRegisterHandler := handler.NewBankRegisterHandler(bankRegisterService)
	reconciliationHandler := handler.NewReconciliationHandler(reconciliationService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack in order: request ID, panic recovery, access log,
	// security headers, CORS, body limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Liveness and readiness endpoints (outside API versioning)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Ledger domain, scoped per accounting entity
	ledgerRoutes := router.NewDomainGroup("ledger", "/entities/:entityId")

	// Chart of accounts
	ledgerRoutes.POST("/chart-accounts", chartAccountHandler.Create)
	ledgerRoutes.GET("/chart-accounts", chartAccountHandler.List)
	ledgerRoutes.GET("/chart-accounts/:id", chartAccountHandler.GetByID)
	ledgerRoutes.GET("/chart-accounts/:id/balance", chartAccountHandler.GetBalance)
	ledgerRoutes.POST("/chart-accounts/:id/deactivate", chartAccountHandler.Deactivate)
	ledgerRoutes.POST("/chart-accounts/:id/recompute-balance", chartAccountHandler.RecomputeBalance)

	// Journal entries
	ledgerRoutes.POST("/ledger-entries/multiple", ledgerEntryHandler.PostMultiple)
	ledgerRoutes.GET("/ledger-entries", ledgerEntryHandler.List)
	ledgerRoutes.GET("/ledger-entries/:entryId", ledgerEntryHandler.GetByID)
	ledgerRoutes.PATCH("/ledger-entries/:entryId", ledgerEntryHandler.UpdateMetadata)
	ledgerRoutes.DELETE("/ledger-entries/:entryId", ledgerEntryHandler.Delete)

	// Bank accounts and registers
	ledgerRoutes.POST("/bank-accounts", bankRegisterHandler.CreateBankAccount)
	ledgerRoutes.GET("/bank-accounts", bankRegisterHandler.ListBankAccounts)
	ledgerRoutes.GET("/bank-accounts/:accountId", bankRegisterHandler.GetBankAccount)
	ledgerRoutes.GET("/bank-accounts/:accountId/transactions", bankRegisterHandler.ListTransactions)
	ledgerRoutes.POST("/bank-accounts/:accountId/transactions", bankRegisterHandler.RecordTransaction)
	ledgerRoutes.DELETE("/bank-accounts/:accountId/transactions/:txnId", bankRegisterHandler.DeleteTransaction)
	ledgerRoutes.POST("/bank-accounts/:accountId/rebuild-balance", bankRegisterHandler.RebuildBalance)

	// Reconciliation
	ledgerRoutes.POST("/bank-transactions/:txnId/reconcile", reconciliationHandler.Reconcile)
	ledgerRoutes.POST("/bank-transactions/:txnId/unreconcile", reconciliationHandler.Unreconcile)
	ledgerRoutes.GET("/bank-accounts/:accountId/unreconciled", reconciliationHandler.ListUnreconciled)
	ledgerRoutes.GET("/bank-accounts/:accountId/reconciliation-summary", reconciliationHandler.Summary)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)

	r.Register(ledgerRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
