package executor

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/atlas-rt/dispatch/workitem"
)

type withTrace struct {
	e      Executor
	tracer trace.Tracer
}

// Enqueue links item into the executor's queue within a span.
func (e withTrace) Enqueue(ctx context.Context, item *workitem.Item) (workitem.JobID, error) {
	ctx, span := e.tracer.Start(ctx, "Executor.Enqueue")
	defer span.End()

	span.SetAttributes(attribute.String("id", e.e.ID()), attribute.Bool("realtime", item.Realtime))

	id, err := e.e.Enqueue(ctx, item)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return id, err
}

// Close enqueues the shutdown item and waits for every worker to return.
func (e withTrace) Close() error {
	return e.e.Close()
}

// ID returns this Executor's label.
func (e withTrace) ID() string {
	return e.e.ID()
}

// AddTraces decorates the input Executor with tracing, using the input
// trace.Tracer.
//
// If the input Executor is nil or a no-op Executor, a no-op Executor is
// returned. If the input trace.Tracer is nil, the input Executor is
// returned as-is.
//
// If the input Executor is already an Executor with tracing, this Executor
// with tracing is returned with the new trace.Tracer configured in place
// of the former.
func AddTraces(e Executor, tracer trace.Tracer) Executor {
	if e == nil || e == NoOp() {
		return NoOp()
	}

	if tracer == nil {
		return e
	}

	if traced, ok := e.(withTrace); ok {
		traced.tracer = tracer

		return traced
	}

	return withTrace{
		e:      e,
		tracer: tracer,
	}
}
