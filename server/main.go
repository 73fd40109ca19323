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

	"github.com/nvquang/formatforge/internal/analytics"
	"github.com/nvquang/formatforge/internal/config"
	"github.com/nvquang/formatforge/internal/convert"
	"github.com/nvquang/formatforge/internal/handlers"
	"github.com/nvquang/formatforge/internal/service"
	"github.com/nvquang/formatforge/server/routes"
)

const queueWorkers = 2

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize services
	dispatcher := convert.NewDispatcher(convert.DispatcherOptions{
		FFmpegPath:     cfg.Convert.FFmpegPath,
		PandocPath:     cfg.Convert.PandocPath,
		CommandTimeout: cfg.Convert.CommandTimeout,
		StrictErrors:   cfg.Convert.StrictErrors,
	}, logger)

	if err := dispatcher.Validate(); err != nil {
		logger.Fatal("Invalid dispatch table", zap.Error(err))
	}

	recorder := analytics.NewRecorder(analytics.DefaultCapacity)

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage service", zap.Error(err))
	}

	queue, err := service.NewQueueService(cfg.RabbitMQ.URL, dispatcher, storage, logger)
	if err != nil {
		logger.Warn("Failed to initialize queue service", zap.Error(err))
		// Continue without async conversion
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if queue != nil {
		for i := 0; i < queueWorkers; i++ {
			if err := queue.StartWorker(workerCtx, i); err != nil {
				logger.Warn("Failed to start queue worker", zap.Int("worker_id", i), zap.Error(err))
			}
		}
	}

	// Initialize handlers
	convertHandler := handlers.NewConvertHandler(dispatcher, recorder, storage, queue, logger, cfg)
	analyticsHandler := handlers.NewAnalyticsHandler(recorder, logger)
	uploadHandler := handlers.NewUploadHandler(storage, logger, cfg)
	healthHandler := handlers.NewHealthHandler(storage, queue)

	router := routes.NewRouter(convertHandler, analyticsHandler, uploadHandler, healthHandler, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	stopWorkers()
	if queue != nil {
		queue.Close()
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
