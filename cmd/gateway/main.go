package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"library-gateway/application/resilience"
	"library-gateway/application/retry"
	"library-gateway/infrastructure/config"
	"library-gateway/infrastructure/di"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependency container
	container, err := di.InitializeContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	logger := container.Logger

	// Start the retry worker before accepting traffic
	container.Queue.Start(ctx)

	// Hot-reload of breaker/queue tunables from the overrides file
	var watcher *config.OverridesWatcher
	if cfg.OverridesFile != "" {
		watcher, err = config.NewOverridesWatcher(cfg.OverridesFile, logger)
		if err != nil {
			logger.Warn("overrides file unavailable, using static tuning",
				zap.String("path", cfg.OverridesFile),
				zap.Error(err),
			)
		} else {
			applyOverrides := func(o *config.Overrides) {
				container.Breaker.UpdateConfig(resilience.BreakerConfig{
					FailureThreshold: o.Breaker.FailureThreshold,
					BreakDuration:    o.Breaker.BreakDuration,
				})
				container.Queue.UpdateConfig(retry.QueueConfig{
					TaskTimeout:  o.Queue.TaskTimeout,
					RetryBackoff: o.Queue.RetryBackoff,
				})
			}
			// Tunables already present in the file take effect at boot,
			// not only on the next edit.
			applyOverrides(watcher.GetCurrent())
			watcher.OnChange(applyOverrides)
			watcher.Start()
		}
	}

	// Setup routes
	handler := container.Router.Setup()

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting gateway",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down gateway...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	if watcher != nil {
		watcher.Stop()
	}

	// Give the retry queue its drain grace before abandoning queued work
	container.Queue.Stop()

	if err := logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	log.Println("Gateway stopped")
}
