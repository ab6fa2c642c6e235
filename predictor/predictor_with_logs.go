package predictor

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/atlas-rt/dispatch/log"
	"github.com/atlas-rt/dispatch/workitem"
)

type withLogs struct {
	p      Predictor
	logger *slog.Logger
}

// Predict implements Predictor.
func (w withLogs) Predict(ctx context.Context, jobType workitem.JobType, id workitem.JobID, metrics []float64) (time.Duration, error) {
	prediction, err := w.p.Predict(ctx, jobType, id, metrics)
	if err != nil {
		w.logger.ErrorContext(ctx, "predict failed", "job_type", jobType, "job_id", id, "error", err)

		return prediction, err
	}

	w.logger.DebugContext(ctx, "predict", "job_type", jobType, "job_id", id, "prediction", prediction)

	return prediction, nil
}

// Train implements Predictor.
func (w withLogs) Train(ctx context.Context, jobType workitem.JobType, id workitem.JobID, observed time.Duration) error {
	if err := w.p.Train(ctx, jobType, id, observed); err != nil {
		w.logger.ErrorContext(ctx, "train failed", "job_type", jobType, "job_id", id, "error", err)

		return err
	}

	w.logger.DebugContext(ctx, "train", "job_type", jobType, "job_id", id, "observed", observed)

	return nil
}

// Snapshot implements Predictor.
func (w withLogs) Snapshot() ([]byte, error) {
	return w.p.Snapshot()
}

// AddLogs decorates the input Predictor with logging, using the input
// slog.Handler.
//
// If the input Predictor is nil or a no-op Predictor, a no-op Predictor is
// returned. If the input slog.Handler is nil or a no-op handler, a default
// slog.Handler is configured (a text handler printing to standard-error).
func AddLogs(p Predictor, handler slog.Handler) Predictor {
	if p == nil || p == NoOp() {
		return NoOp()
	}

	if handler == nil || handler == log.NoOp() {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}

	if logs, ok := p.(withLogs); ok {
		logs.logger = slog.New(handler)

		return logs
	}

	return withLogs{p: p, logger: slog.New(handler)}
}
