package predictor

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/atlas-rt/dispatch/workitem"
)

type withTrace struct {
	p      Predictor
	tracer trace.Tracer
}

// Predict implements Predictor.
func (w withTrace) Predict(ctx context.Context, jobType workitem.JobType, id workitem.JobID, metrics []float64) (time.Duration, error) {
	ctx, span := w.tracer.Start(ctx, "Predictor.Predict",
		trace.WithAttributes(attribute.Int64("job_type", int64(jobType)), attribute.Int64("job_id", int64(id))))
	defer span.End()

	prediction, err := w.p.Predict(ctx, jobType, id, metrics)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}

	return prediction, err
}

// Train implements Predictor.
func (w withTrace) Train(ctx context.Context, jobType workitem.JobType, id workitem.JobID, observed time.Duration) error {
	ctx, span := w.tracer.Start(ctx, "Predictor.Train",
		trace.WithAttributes(attribute.Int64("job_type", int64(jobType)), attribute.Int64("job_id", int64(id))))
	defer span.End()

	err := w.p.Train(ctx, jobType, id, observed)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}

// Snapshot implements Predictor.
func (w withTrace) Snapshot() ([]byte, error) {
	return w.p.Snapshot()
}

// AddTraces decorates the input Predictor with tracing, using the input
// trace.Tracer.
//
// If the input Predictor is nil or a no-op Predictor, a no-op Predictor is
// returned. If the input trace.Tracer is nil, the input Predictor is
// returned as-is.
func AddTraces(p Predictor, tracer trace.Tracer) Predictor {
	if p == nil || p == NoOp() {
		return NoOp()
	}

	if tracer == nil {
		return p
	}

	if traced, ok := p.(withTrace); ok {
		traced.tracer = tracer

		return traced
	}

	return withTrace{p: p, tracer: tracer}
}
