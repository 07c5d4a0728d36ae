package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmstock/internal/config"
	"github.com/mamadbah2/farmstock/internal/repository/mongodb"
	"github.com/mamadbah2/farmstock/internal/repository/sheets"
	"github.com/mamadbah2/farmstock/internal/scheduler"
	"github.com/mamadbah2/farmstock/internal/server/handlers"
	"github.com/mamadbah2/farmstock/internal/server/router"
	commandsvc "github.com/mamadbah2/farmstock/internal/service/commands"
	forecastingsvc "github.com/mamadbah2/farmstock/internal/service/forecasting"
	whatsappsvc "github.com/mamadbah2/farmstock/internal/service/whatsapp"
	"github.com/mamadbah2/farmstock/pkg/clients/anthropic"
	whatsappclient "github.com/mamadbah2/farmstock/pkg/clients/whatsapp"
	"github.com/mamadbah2/farmstock/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	sheetsRepo, err := sheets.NewGoogleSheetRepository(startupCtx, cfg.Sheets, baseLogger.Named("repo.sheets"))
	if err != nil {
		baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
	}

	mongoRepo, err := mongodb.NewMongoDBRepository(startupCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	forecastSvc := forecastingsvc.NewService(
		sheetsRepo,
		sheetsRepo,
		mongoRepo,
		cfg.Forecast,
		baseLogger.Named("svc.forecasting"),
	)
	commandDispatcher := commandsvc.NewService(forecastSvc, baseLogger.Named("svc.commands"))

	var aiClient anthropic.Client
	if cfg.AI.AnthropicKey != "" {
		aiClient = anthropic.NewClient(cfg.AI.AnthropicKey)
		baseLogger.Info("anthropic command translation enabled")
	} else {
		baseLogger.Warn("anthropic api key missing, only /commands are understood")
	}

	whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
	messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, aiClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))

	engine := router.New(
		handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp")),
		handlers.NewForecastHandler(forecastSvc, baseLogger.Named("handlers.forecast")),
		baseLogger.Named("router"),
	)

	sched, err := scheduler.NewScheduler(cfg.Forecast, cfg.WhatsApp.ManagerID, forecastSvc, messagingSvc, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
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
