// Command api is the SoccerScore server. It syncs provider data into the
// document store on startup, optionally re-syncs on a cron schedule, and
// serves the read API.
//
// Usage:
//
//	soccerscore-api
//	API_PORT=8080 SYNC_CRON="0 */6 * * *" soccerscore-api

// @title SoccerScore API
// @version 1.0.0
// @description Read API over synchronized soccer league data.
// @host localhost:5000
// @BasePath /
// @schemes http https
// @contact.name SoccerScore
// @license.name MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/albapepper/soccerscore/internal/api"
	"github.com/albapepper/soccerscore/internal/cache"
	"github.com/albapepper/soccerscore/internal/config"
	"github.com/albapepper/soccerscore/internal/provider/sportdata"
	"github.com/albapepper/soccerscore/internal/scheduler"
	"github.com/albapepper/soccerscore/internal/seed"
	"github.com/albapepper/soccerscore/internal/store"

	_ "github.com/albapepper/soccerscore/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Connect to store
	logger.Info("Connecting to store...", "driver", cfg.StoreDriver)
	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to store", "error", err)
		os.Exit(1)
	}
	defer st.Close(context.Background())
	if err := st.EnsureSchema(ctx); err != nil {
		logger.Error("Failed to ensure store schema", "error", err)
		os.Exit(1)
	}
	logger.Info("Store connected", "driver", cfg.StoreDriver)

	// Initialize cache
	appCache, err := cache.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer appCache.Close()
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled, "backend", cfg.CacheBackend)

	// Sync pipeline and optional re-sync schedule
	var sched *scheduler.Scheduler
	if cfg.SyncOnStartup || cfg.SyncCron != "" {
		if err := cfg.RequireAPIKey(); err != nil {
			logger.Error("Sync is enabled but not configured", "error", err)
			os.Exit(1)
		}
		client := sportdata.NewClient(cfg.SportDataBaseURL, cfg.SportDataAPIKey,
			cfg.SportDataTimeout, cfg.SportDataRequestsPerMinute, logger)
		pipeline := seed.NewPipeline(client, st, logger)

		if cfg.SyncOnStartup {
			logger.Info("Running startup sync...")
			if _, err := pipeline.Run(ctx); err != nil {
				logger.Error("Startup sync failed", "error", err)
				os.Exit(1)
			}
		}

		if cfg.SyncCron != "" {
			sched, err = scheduler.New(cfg.SyncCron, pipeline, appCache, logger)
			if err != nil {
				logger.Error("Invalid sync schedule", "error", err)
				os.Exit(1)
			}
			if err := sched.Start(ctx); err != nil {
				logger.Error("Failed to start sync scheduler", "error", err)
				os.Exit(1)
			}
		}
	}

	router := api.NewRouter(st, appCache, cfg, logger)

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting SoccerScore API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
