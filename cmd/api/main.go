// Package main is the entry point for the Target Ledger API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/target-ledger/backend/config"
	"github.com/target-ledger/backend/internal/infra/db"
	"github.com/target-ledger/backend/internal/infra/dependency"
	"github.com/target-ledger/backend/internal/infra/server/router"
	"github.com/target-ledger/backend/internal/integration/entrypoint/controller"
	"github.com/target-ledger/backend/internal/integration/persistence"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg := config.Load()

	slog.Info("Starting Target Ledger API",
		"environment", cfg.Server.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"root_owner_id", cfg.Ledger.RootOwnerID.String(),
	)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	var engine *gin.Engine
	var injector *dependency.Injector

	database, err := db.NewPostgresConnection(&cfg.Database)
	if err != nil {
		slog.Warn("Database connection failed, running without database",
			"error", err,
		)
		healthController := controller.NewHealthController(func() bool { return false }, nil)
		engine = router.NewRouter(healthController, nil, nil, nil, nil, nil, nil).Setup(cfg.Server.Environment)
	} else {
		defer func() {
			if err := database.Close(); err != nil {
				slog.Error("Failed to close database connection", "error", err)
			}
		}()

		// Run database migrations and normalize legacy progress rows
		normalized, err := persistence.MigrateLedger(rootCtx, database.DB())
		if err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("Database migrations completed successfully", "normalized_progress_entries", normalized)

		rdb, err := db.NewRedisClient(&cfg.Redis)
		if err != nil {
			slog.Warn("Redis connection failed, locks and notifications degraded", "error", err)
			rdb = nil
		}
		if rdb != nil {
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("Failed to close redis connection", "error", err)
				}
			}()
		}

		injector = dependency.NewInjector(cfg, database.DB(), rdb)
		engine = injector.Router.Setup(cfg.Server.Environment)

		if cfg.Ledger.ReconcileEnabled {
			go injector.Worker.Start(rootCtx)
		} else {
			slog.Info("Reconciliation worker disabled")
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Let in-flight recompute, notify and audit work finish
	if injector != nil {
		injector.Dispatcher.Wait()
	}

	slog.Info("Server exited properly")
}
