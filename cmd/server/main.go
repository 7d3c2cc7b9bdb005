package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/app"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/config"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/delivery/http"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Dependency Injection
	deps, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("startup failed", logging.Err(err))
		os.Exit(1)
	}

	// Fiber App
	server := http.NewApp(http.AppConfig{AccessLog: !cfg.Production()})
	http.SetupRoutes(server, deps.Issues, deps.Analytics, deps.Metrics, logger.Named("http"))

	// Graceful shutdown
	go func() {
		logger.Info("server starting", logging.String("port", cfg.Port), logging.String("env", cfg.Env))
		if err := server.Listen(":" + cfg.Port); err != nil {
			logger.Error("server error", logging.Err(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if err := server.ShutdownWithTimeout(5 * time.Second); err != nil {
		logger.Warn("server forced to shutdown", logging.Err(err))
	}
	if err := deps.Close(); err != nil {
		logger.Warn("failed to release resources", logging.Err(err))
	}
	logger.Info("server exited gracefully")
}
