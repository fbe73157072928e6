// Package worker consumes generation job messages from RabbitMQ and runs each
// job through the generation pipeline on a pool of goroutines.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lurkingpods/backend/shared/rabbitmq"
)

// JobProcessor runs one queued generation job, routing it by its current
// status. Failed jobs with remaining retry budget take the retry path.
type JobProcessor interface {
	Dispatch(ctx context.Context, jobID string) error
}

// jobMessage pairs a queued job ID with its AMQP delivery tag so the worker
// goroutine that processed it can ACK or NACK it.
type jobMessage struct {
	JobID       string
	DeliveryTag uint64
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	RabbitClient  *rabbitmq.Client
	Processor     JobProcessor
	Concurrency   int
	MaxJobs       int
	JobTimeout    time.Duration
	PrefetchCount int
	QueueName     string
}

// Worker represents the background generation worker
type Worker struct {
	logger        *slog.Logger
	rabbitClient  *rabbitmq.Client
	processor     JobProcessor
	concurrency   int
	jobTimeout    time.Duration
	prefetchCount int
	queueName     string
	workerID      string
	jobsChan      chan *jobMessage
	wg            sync.WaitGroup
	stopChan      chan struct{}
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	maxJobs := cfg.MaxJobs
	if maxJobs <= 0 {
		maxJobs = cfg.Concurrency
	}

	return &Worker{
		logger:        cfg.Logger,
		rabbitClient:  cfg.RabbitClient,
		processor:     cfg.Processor,
		concurrency:   cfg.Concurrency,
		jobTimeout:    cfg.JobTimeout,
		prefetchCount: cfg.PrefetchCount,
		queueName:     cfg.QueueName,
		workerID:      "worker-" + uuid.New().String()[:8],
		jobsChan:      make(chan *jobMessage, maxJobs),
		stopChan:      make(chan struct{}),
	}
}

// Start begins consuming and processing jobs. It blocks until the context is
// canceled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.startMessageDispatcher(ctx, deliveries)
	}()

	<-ctx.Done()
	w.logger.Info("Worker context canceled, stopping...")

	return nil
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...",
		slog.String("worker_id", w.workerID),
	)
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
