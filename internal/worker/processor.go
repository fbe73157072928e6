package worker

import (
	"context"
	"log/slog"
	"time"
)

// processJob runs one queued job through the generation pipeline under the
// configured job timeout.
func (w *Worker) processJob(ctx context.Context, msg *jobMessage) error {
	jobCtx := ctx
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}

	start := time.Now()
	err := w.processor.Dispatch(jobCtx, msg.JobID)
	elapsed := time.Since(start)

	if err != nil {
		w.logger.Error("Generation pipeline failed",
			slog.String("job_id", msg.JobID),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
		return err
	}

	w.logger.Info("Generation pipeline finished",
		slog.String("job_id", msg.JobID),
		slog.Duration("elapsed", elapsed),
	)
	return nil
}
