package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/lurkingpods/backend/internal/queue"
)

// setupConsumer sets QoS on the channel and starts consuming job messages.
func (w *Worker) setupConsumer() (<-chan amqp.Delivery, error) {
	// Prefetch limits unacknowledged deliveries per consumer, keeping slow
	// generation jobs from piling up on one worker.
	if err := w.rabbitClient.Qos(w.prefetchCount); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	w.logger.Info("RabbitMQ QoS configured",
		slog.Int("prefetch_count", w.prefetchCount),
	)

	deliveries, err := w.rabbitClient.Consume(w.workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	w.logger.Info("RabbitMQ consumer started",
		slog.String("consumer_tag", w.workerID),
		slog.String("queue", w.queueName),
	)

	return deliveries, nil
}

// startMessageDispatcher reads deliveries, validates them and hands them to
// the worker pool.
func (w *Worker) startMessageDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) {
	w.logger.Info("Message dispatcher started",
		slog.String("worker_id", w.workerID),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			var msg queue.JobMessage
			if err := json.Unmarshal(delivery.Body, &msg); err != nil {
				w.logger.Error("Failed to parse job message",
					slog.String("error", err.Error()),
					slog.String("body", string(delivery.Body)),
				)
				// Malformed messages are dropped, not requeued.
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					w.logger.Error("Failed to NACK malformed message",
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			if _, err := uuid.Parse(msg.JobID); err != nil {
				w.logger.Error("Invalid job_id in message",
					slog.String("job_id", msg.JobID),
					slog.String("error", err.Error()),
				)
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					w.logger.Error("Failed to NACK message with invalid job_id",
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			jobMsg := &jobMessage{
				JobID:       msg.JobID,
				DeliveryTag: delivery.DeliveryTag,
			}

			select {
			case w.jobsChan <- jobMsg:
				w.logger.Debug("Job dispatched to worker pool",
					slog.String("job_id", msg.JobID),
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
				)
			case <-ctx.Done():
				w.logger.Info("Message dispatcher stopped while dispatching job")
				// Requeue so another worker picks the job up.
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					w.logger.Error("Failed to NACK message on shutdown",
						slog.String("error", nackErr.Error()),
					)
				}
				return
			}
		}
	}
}
