package predictor

import (
	"context"
	"time"

	"github.com/atlas-rt/dispatch/workitem"
)

type withMetrics struct {
	p Predictor
	m Metrics
}

// Predict implements Predictor.
func (w withMetrics) Predict(ctx context.Context, jobType workitem.JobType, id workitem.JobID, metrics []float64) (time.Duration, error) {
	prediction, err := w.p.Predict(ctx, jobType, id, metrics)

	w.m.IncPredictCalls()

	return prediction, err
}

// Train implements Predictor.
func (w withMetrics) Train(ctx context.Context, jobType workitem.JobType, id workitem.JobID, observed time.Duration) error {
	err := w.p.Train(ctx, jobType, id, observed)
	if err != nil {
		w.m.IncTrainErrors()

		return err
	}

	w.m.IncTrainCalls()

	return nil
}

// Snapshot implements Predictor.
func (w withMetrics) Snapshot() ([]byte, error) {
	return w.p.Snapshot()
}

// AddMetrics decorates the input Predictor with metrics, using the input
// Metrics interface.
//
// If the input Predictor is nil or a no-op Predictor, a no-op Predictor is
// returned. If the input Metrics is nil, a no-op Metrics is used.
func AddMetrics(p Predictor, m Metrics) Predictor {
	if m == nil {
		m = NoOpMetrics()
	}

	if p == nil || p == NoOp() {
		return NoOp()
	}

	if metric, ok := p.(withMetrics); ok {
		metric.m = m

		return metric
	}

	return withMetrics{p: p, m: m}
}
