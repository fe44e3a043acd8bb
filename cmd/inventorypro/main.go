package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/inventorypro/inventorypro/internal/alerts"
	"github.com/inventorypro/inventorypro/internal/app"
	"github.com/inventorypro/inventorypro/internal/categories"
	"github.com/inventorypro/inventorypro/internal/ledger"
	"github.com/inventorypro/inventorypro/internal/observability"
	"github.com/inventorypro/inventorypro/internal/platform/cache"
	"github.com/inventorypro/inventorypro/internal/platform/db"
	"github.com/inventorypro/inventorypro/internal/prefs"
	"github.com/inventorypro/inventorypro/internal/products"
	"github.com/inventorypro/inventorypro/internal/reports"
	"github.com/inventorypro/inventorypro/internal/shared"
	"github.com/inventorypro/inventorypro/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	reportsRepo := reports.NewRepository(dbpool)
	reportsCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportsService := reports.NewService(reportsRepo, reportsCache)
	if err := reportsCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
	reportsHandler := reports.NewHandler(logger, reportsService)

	productsRepo := products.NewRepository(dbpool)
	productsService := products.NewService(productsRepo, auditLogger, logger)
	productsHandler := products.NewHandler(logger, productsService, reportsService)

	categoriesRepo := categories.NewRepository(dbpool)
	categoriesService := categories.NewService(categoriesRepo)
	categoriesHandler := categories.NewHandler(logger, categoriesService)

	ledgerRepo := ledger.NewRepository(dbpool)
	ledgerService := ledger.NewService(ledgerRepo, idempotencyStore)
	ledgerHandler := ledger.NewHandler(logger, ledgerService, reportsService)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("create job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	alertsRepo := alerts.NewRepository(dbpool)
	alertsService := alerts.NewService(alertsRepo, jobClient, alerts.Config{
		DefaultRecipient: cfg.AlertRecipient,
		Subject:          cfg.AlertSubject,
	})
	alertsHandler := alerts.NewHandler(logger, alertsService)

	prefsStore := prefs.NewStore(redisClient)
	prefsHandler := prefs.NewHandler(logger, prefsStore)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		ProductsHandler:   productsHandler,
		CategoriesHandler: categoriesHandler,
		LedgerHandler:     ledgerHandler,
		ReportsHandler:    reportsHandler,
		AlertsHandler:     alertsHandler,
		PrefsHandler:      prefsHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
