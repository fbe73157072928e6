// Package queue defines the generation job message exchanged over RabbitMQ
// between the API service, the scheduler and the worker.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lurkingpods/backend/shared/rabbitmq"
)

// JobMessage is the wire format of a queued generation job.
type JobMessage struct {
	JobID string `json:"job_id"`
}

// Publisher enqueues generation jobs.
type Publisher struct {
	client *rabbitmq.Client
}

// NewPublisher wraps a RabbitMQ client as a job publisher.
func NewPublisher(client *rabbitmq.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishJob enqueues one generation job by ID.
func (p *Publisher) PublishJob(ctx context.Context, jobID string) error {
	body, err := json.Marshal(JobMessage{JobID: jobID})
	if err != nil {
		return fmt.Errorf("failed to encode job message: %w", err)
	}

	if err := p.client.PublishWithRetry(ctx, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish job %s: %w", jobID, err)
	}
	return nil
}
