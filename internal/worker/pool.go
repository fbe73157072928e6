package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lurkingpods/backend/internal/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop is the main processing loop for each worker goroutine
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Info("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("Worker goroutine stopping - stopChan closed",
				slog.String("worker_name", workerName),
			)
			return

		case <-ctx.Done():
			w.logger.Info("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case msg, ok := <-w.jobsChan:
			if !ok {
				w.logger.Info("Worker goroutine stopping - jobsChan closed",
					slog.String("worker_name", workerName),
				)
				return
			}

			w.logger.Info("Worker received job",
				slog.String("worker_name", workerName),
				slog.String("job_id", msg.JobID),
				slog.Uint64("delivery_tag", msg.DeliveryTag),
			)

			err := w.processJob(ctx, msg)

			if err != nil {
				w.logger.Error("Job processing failed",
					slog.String("worker_name", workerName),
					slog.String("job_id", msg.JobID),
					slog.String("error", err.Error()),
				)

				requeue := shouldRequeueJob(err)

				if nackErr := w.rabbitClient.Nack(msg.DeliveryTag, requeue); nackErr != nil {
					w.logger.Error("Failed to NACK message",
						slog.String("worker_name", workerName),
						slog.String("job_id", msg.JobID),
						slog.String("error", nackErr.Error()),
					)
				} else {
					w.logger.Info("Message NACKed",
						slog.String("worker_name", workerName),
						slog.String("job_id", msg.JobID),
						slog.Bool("requeue", requeue),
					)
				}
			} else {
				if ackErr := w.rabbitClient.Ack(msg.DeliveryTag); ackErr != nil {
					w.logger.Error("Failed to ACK message",
						slog.String("worker_name", workerName),
						slog.String("job_id", msg.JobID),
						slog.String("error", ackErr.Error()),
					)
				} else {
					w.logger.Info("Job completed successfully",
						slog.String("worker_name", workerName),
						slog.String("job_id", msg.JobID),
					)
				}
			}
		}
	}
}

// shouldRequeueJob decides whether a failed delivery goes back on the queue.
// Failures the pipeline has durably recorded on the job, and jobs that no
// longer exist or were claimed elsewhere, must not be redelivered. Everything
// else is treated as a transient infrastructure error.
func shouldRequeueJob(err error) bool {
	// Shutdown interrupted the job mid-flight. The failure is recorded, but
	// the job still has retry budget and another worker should pick it up.
	if errors.Is(err, context.Canceled) {
		return true
	}

	// Job gone or already picked up by a concurrent worker.
	if errors.Is(err, domain.ErrJobNotFound) {
		return false
	}
	var transitionErr *domain.TransitionError
	if errors.As(err, &transitionErr) {
		return false
	}

	// Recorded on the job; a retry goes through the explicit retry path.
	var providerErr *domain.ProviderError
	if errors.As(err, &providerErr) {
		return false
	}
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return false
	}
	if errors.Is(err, domain.ErrJobNotRetryable) {
		return false
	}

	return true
}
