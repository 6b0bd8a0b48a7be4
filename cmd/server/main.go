package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/duelrank/internal/api"
	"github.com/vytor/duelrank/internal/config"
	"github.com/vytor/duelrank/internal/db"
	"github.com/vytor/duelrank/internal/jobs"
	"github.com/vytor/duelrank/internal/logger"
	"github.com/vytor/duelrank/internal/rating"
	"github.com/vytor/duelrank/internal/repository/sqlite"
	"github.com/vytor/duelrank/internal/services"
	"github.com/vytor/duelrank/internal/session"
	"github.com/vytor/duelrank/internal/sheets"
	"github.com/vytor/duelrank/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("DuelRank Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("k_factor=%g", cfg.KFactor)
	log.Debug("initial_rating=%d", cfg.InitialRating)
	log.Debug("import_worker_count=%d", cfg.ImportWorkerCount)
	log.Debug("import_queue_size=%d", cfg.ImportQueueSize)
	log.Debug("cors_origins=%v", cfg.CORSOrigins)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Load the session. Stored settings win over the environment defaults.
	stateRepo := sqlite.NewStateRepository(database.DB)
	matchRepo := sqlite.NewMatchRepository(database.DB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state, err := stateRepo.Load(logger.NewContext(ctx, log), rating.Config{
		KFactor: cfg.KFactor,
		Initial: cfg.InitialRating,
	})
	if err != nil {
		log.Error("failed to load session: %v", err)
		os.Exit(1)
	}

	// Initialize services
	recorder := session.NewRecorder(session.DefaultIDs{}, session.SystemClock{})
	sessionService := services.NewSessionService(state, stateRepo, recorder)
	importService := services.NewImportService(sessionService, recorder)

	importPool := worker.NewPool(cfg.ImportWorkerCount, cfg.ImportQueueSize)

	srv := &api.Server{
		DB:                 database,
		SessionService:     sessionService,
		LeaderboardService: services.NewLeaderboardService(sessionService),
		RotationService:    services.NewRotationService(sessionService),
		HistoryService:     services.NewHistoryService(matchRepo),
		ImportService:      importService,
		JobQueue:           jobs.NewWorkerQueue(importPool, importService, sheets.New()),
		CORSOrigins:        cfg.CORSOrigins,
	}

	importPool.Start(ctx)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Let queued imports finish before the database closes.
	log.Debug("stopping import pool")
	importPool.Stop()
	cancel()

	log.Info("===========================================")
	log.Info("DuelRank Server Stopped")
	log.Info("===========================================")
}
