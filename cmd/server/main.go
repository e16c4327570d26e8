package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/ymgn/stockkeeper/internal/config"
	"github.com/ymgn/stockkeeper/internal/repository/mongodb"
	"github.com/ymgn/stockkeeper/internal/repository/sheets"
	"github.com/ymgn/stockkeeper/internal/scheduler"
	"github.com/ymgn/stockkeeper/internal/server/handlers"
	"github.com/ymgn/stockkeeper/internal/server/router"
	commandsvc "github.com/ymgn/stockkeeper/internal/service/commands"
	ledgersvc "github.com/ymgn/stockkeeper/internal/service/ledger"
	reportingsvc "github.com/ymgn/stockkeeper/internal/service/reporting"
	whatsappsvc "github.com/ymgn/stockkeeper/internal/service/whatsapp"
	"github.com/ymgn/stockkeeper/pkg/clients/anthropic"
	whatsappclient "github.com/ymgn/stockkeeper/pkg/clients/whatsapp"
	"github.com/ymgn/stockkeeper/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := mongodb.NewStockStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init stock store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var exporter sheets.Exporter
	if cfg.SheetsEnabled() {
		exporter, err = sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		baseLogger.Info("spreadsheet snapshot export enabled")
	} else {
		baseLogger.Warn("sheets credentials missing, snapshot export disabled")
	}

	ledgerCore := ledgersvc.NewService(store, baseLogger.Named("svc.ledger"))
	reportingSvc := reportingsvc.NewService(ledgerCore, exporter, baseLogger.Named("svc.reporting"))
	commandDispatcher := commandsvc.NewService(ledgerCore, reportingSvc, baseLogger.Named("svc.commands"))

	var aiClient anthropic.Client
	if cfg.AI.AnthropicKey != "" {
		aiClient = anthropic.NewClient(cfg.AI.AnthropicKey)
		baseLogger.Info("anthropic ai client enabled")
	} else {
		baseLogger.Warn("anthropic api key missing, natural language commands disabled")
	}

	whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
	messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, aiClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))
	webhookHandler := handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
	engine := router.New(webhookHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, reportingSvc, messagingSvc, baseLogger.Named("scheduler"))
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
