package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RowanMueller/ai-production/pkg/config"
	"github.com/RowanMueller/ai-production/pkg/di"
	"github.com/RowanMueller/ai-production/pkg/logger"
	"github.com/RowanMueller/ai-production/pkg/observability"
	"github.com/RowanMueller/ai-production/pkg/router"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.New()

	// Initialize structured logger
	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	appLog := logger.New(logConfig)
	logger.SetGlobal(appLog)

	appLog.Info("Starting gateway",
		"env", cfg.Server.Env,
		"upstream", cfg.Upstream.BaseURL,
	)

	// Tracing (stdout exporter; swap for OTLP in production)
	shutdownTracing := observability.SetupTracing("ai-stock-gateway")
	defer shutdownTracing()

	// Build the dependency graph
	container := di.New(cfg, appLog)
	observability.SetupMeterProvider(container.Metrics.Registry())

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	container.Start(workerCtx)

	// Initialize and setup router
	r := router.New(container)
	r.SetupRoutes()

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     r.Engine,
		ReadTimeout: cfg.Server.Timeout,
	}

	// Start the server in a goroutine
	go func() {
		appLog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLog.LogError(err, "Server forced to shutdown")
	}

	appLog.Info("Server exited gracefully")
}
