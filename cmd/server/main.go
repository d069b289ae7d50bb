package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/armory/internal/config"
	"github.com/mamadbah2/armory/internal/repository"
	"github.com/mamadbah2/armory/internal/repository/memory"
	"github.com/mamadbah2/armory/internal/repository/mongodb"
	"github.com/mamadbah2/armory/internal/repository/sheets"
	"github.com/mamadbah2/armory/internal/scheduler"
	"github.com/mamadbah2/armory/internal/server/handlers"
	"github.com/mamadbah2/armory/internal/server/router"
	auditsvc "github.com/mamadbah2/armory/internal/service/audit"
	"github.com/mamadbah2/armory/internal/service/balance"
	inventorysvc "github.com/mamadbah2/armory/internal/service/inventory"
	reportingsvc "github.com/mamadbah2/armory/internal/service/reporting"
	"github.com/mamadbah2/armory/pkg/clients/auditrelay"
	"github.com/mamadbah2/armory/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var store repository.Store
	switch cfg.Store.Driver {
	case config.DriverMemory:
		store = memory.NewStore()
		baseLogger.Warn("using in-memory store, data will not survive restarts")
	default:
		mongoStore, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
		}
		defer func() {
			if err := mongoStore.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		store = mongoStore
	}

	var relay auditsvc.Forwarder
	if cfg.AuditRelay.Enabled() {
		relay = auditrelay.NewClient(cfg.AuditRelay)
		baseLogger.Info("audit forwarding enabled", zap.String("url", cfg.AuditRelay.URL))
	}

	var exporter reportingsvc.SnapshotExporter
	if cfg.Sheets.Enabled() {
		sheetExporter, err := sheets.NewSnapshotExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		exporter = sheetExporter
		baseLogger.Info("snapshot export to sheets enabled")
	}

	auditSvc := auditsvc.NewService(store, relay, baseLogger.Named("svc.audit"))
	engine := balance.NewEngine(store, baseLogger.Named("svc.balance"))
	reportingSvc := reportingsvc.NewService(engine, store, store, exporter, baseLogger.Named("svc.reporting"))
	inventorySvc := inventorysvc.NewService(store, store, auditSvc, baseLogger.Named("svc.inventory"))

	dashboardHandler := handlers.NewDashboardHandler(reportingSvc, baseLogger.Named("handlers.dashboard"))
	ledgerHandler := handlers.NewLedgerHandler(inventorySvc, baseLogger.Named("handlers.ledger"))
	auditHandler := handlers.NewAuditHandler(auditSvc, baseLogger.Named("handlers.audit"))
	engineRouter := router.New(cfg.Auth, dashboardHandler, ledgerHandler, auditHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Snapshot, reportingSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engineRouter,
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
