package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/agrocampo/internal/config"
	"github.com/mamadbah2/agrocampo/internal/repository/mongodb"
	"github.com/mamadbah2/agrocampo/internal/repository/sheets"
	"github.com/mamadbah2/agrocampo/internal/scheduler"
	"github.com/mamadbah2/agrocampo/internal/server/handlers"
	"github.com/mamadbah2/agrocampo/internal/server/router"
	costingsvc "github.com/mamadbah2/agrocampo/internal/service/costing"
	exportsvc "github.com/mamadbah2/agrocampo/internal/service/export"
	financesvc "github.com/mamadbah2/agrocampo/internal/service/finance"
	inventorysvc "github.com/mamadbah2/agrocampo/internal/service/inventory"
	"github.com/mamadbah2/agrocampo/pkg/clients/notify"
	"github.com/mamadbah2/agrocampo/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := mongodb.NewMongoDBStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	// Alerting is optional; without a webhook the engine only logs warnings.
	var notifier inventorysvc.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookClient(cfg.Notify)
		baseLogger.Info("alert webhook enabled")
	} else {
		baseLogger.Warn("alert webhook not configured, consistency alerts disabled")
	}

	inventorySvc := inventorysvc.NewService(store, notifier, baseLogger.Named("svc.inventory"))
	allocator := costingsvc.NewAllocator(baseLogger.Named("svc.costing"))
	financeSvc := financesvc.NewService(store, allocator, baseLogger.Named("svc.finance"))

	// Sheets export is optional as well.
	var exportSvc *exportsvc.Service
	if cfg.Sheets.CredentialsPath != "" {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exportSvc = exportsvc.NewService(sheetsRepo, store, financeSvc, baseLogger.Named("svc.export"))
		baseLogger.Info("finance sheet export enabled")
	} else {
		baseLogger.Warn("sheets credentials missing, finance export disabled")
	}

	inventoryHandler := handlers.NewInventoryHandler(inventorySvc, baseLogger.Named("handlers.inventory"))
	financeHandler := handlers.NewFinanceHandler(financeSvc, baseLogger.Named("handlers.finance"))
	engine := router.New(inventoryHandler, financeHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Audit, inventorySvc, exportSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
