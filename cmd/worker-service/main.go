package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lurkingpods/backend/internal/bucket"
	"github.com/lurkingpods/backend/internal/config"
	"github.com/lurkingpods/backend/internal/elevenlabs"
	"github.com/lurkingpods/backend/internal/gemini"
	"github.com/lurkingpods/backend/internal/generation"
	"github.com/lurkingpods/backend/internal/storage"
	"github.com/lurkingpods/backend/internal/worker"
	"github.com/lurkingpods/backend/shared/logger"
	"github.com/lurkingpods/backend/shared/postgresql"
	"github.com/lurkingpods/backend/shared/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("WORKER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/worker-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateWorker(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// Initialize PostgreSQL client
	dbClient, err := initPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	appLogger.Info("Database connection established")

	// Initialize RabbitMQ client
	rabbitClient, err := initRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}

	appLogger.Info("RabbitMQ connection established")

	// Wire the generation pipeline
	store := storage.NewStorage(dbClient, appLogger.Logger)
	orchestrator := initOrchestrator(cfg, appLogger.Logger, store)

	// Create worker instance
	workerInstance := worker.NewWorker(&worker.Config{
		Logger:        appLogger.Logger,
		RabbitClient:  rabbitClient,
		Processor:     orchestrator,
		Concurrency:   cfg.Worker.Concurrency,
		MaxJobs:       cfg.Worker.MaxJobs,
		JobTimeout:    cfg.Worker.JobTimeout,
		PrefetchCount: cfg.RabbitMQ.Consumer.PrefetchCount,
		QueueName:     cfg.RabbitMQ.Queue.Name,
	})

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := workerInstance.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	appLogger.Info("Worker service started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		appLogger.Error("Worker error",
			slog.Any("error", err),
		)
		return err
	}

	// Cancel context to stop worker
	cancel()

	// Give worker time to shutdown gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	// Stop worker
	done := make(chan struct{})
	go func() {
		workerInstance.Stop()
		close(done)
	}()

	select {
	case <-done:
		appLogger.Info("Worker stopped gracefully")
	case <-shutdownCtx.Done():
		appLogger.Warn("Worker shutdown timeout exceeded, forcing exit")
	}

	// Cleanup function to close all resources
	cleanup := func() {
		if dbClient != nil {
			dbClient.Close()
		}
		if rabbitClient != nil {
			rabbitClient.Close()
		}
	}
	cleanup()

	appLogger.Info("Worker service shutdown complete")
	return nil
}

// initOrchestrator wires the generation pipeline: script and speech providers,
// object storage and the job state machine.
func initOrchestrator(cfg *config.Config, log *slog.Logger, store *storage.Storage) *generation.Orchestrator {
	scriptClient := gemini.NewClient(cfg.Providers.Gemini.APIKey,
		gemini.WithBaseURL(cfg.Providers.Gemini.BaseURL),
		gemini.WithModel(cfg.Providers.Gemini.Model),
		gemini.WithHTTPClient(&http.Client{Timeout: cfg.Providers.Gemini.Timeout}),
	)

	speechClient := elevenlabs.NewClient(cfg.Providers.ElevenLabs.APIKey,
		elevenlabs.WithBaseURL(cfg.Providers.ElevenLabs.BaseURL),
		elevenlabs.WithModelID(cfg.Providers.ElevenLabs.ModelID),
		elevenlabs.WithHTTPClient(&http.Client{Timeout: cfg.Providers.ElevenLabs.Timeout}),
	)

	bucketClient := bucket.NewClient(cfg.Bucket.BaseURL, cfg.Bucket.ServiceKey, cfg.Bucket.Name,
		bucket.WithHTTPClient(&http.Client{Timeout: cfg.Bucket.Timeout}),
	)

	return generation.NewOrchestrator(&generation.Config{
		Jobs:       store,
		Podcasts:   store,
		Categories: store,
		Scripts:    scriptClient,
		Speech:     speechClient,
		Store:      bucketClient,
		Logger:     log,

		ScriptTimeout: cfg.Providers.Gemini.Timeout,
		AudioTimeout:  cfg.Providers.ElevenLabs.Timeout,
		UploadTimeout: cfg.Bucket.Timeout,
	})
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}

	return postgresql.NewClient(dbConfig, logger)
}

// initRabbitMQ initializes the RabbitMQ client
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	rabbitConfig := &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
	}

	return rabbitmq.NewClient(rabbitConfig, logger)
}
