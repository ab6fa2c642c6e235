package executor

import (
	"context"

	"github.com/atlas-rt/dispatch/workitem"
)

type withMetrics struct {
	e Executor
	m Metrics
}

// Enqueue links item into the executor's queue, recording enqueue metrics.
func (e withMetrics) Enqueue(ctx context.Context, item *workitem.Item) (workitem.JobID, error) {
	id, err := e.e.Enqueue(ctx, item)
	if err != nil {
		e.m.IncEnqueueErrors(e.e.ID())

		return id, err
	}

	return id, nil
}

// Close enqueues the shutdown item and waits for every worker to return.
func (e withMetrics) Close() error {
	return e.e.Close()
}

// ID returns this Executor's label.
func (e withMetrics) ID() string {
	return e.e.ID()
}

// AddMetrics decorates the input Executor with metrics, using the input
// Metrics interface.
//
// If the input Executor is nil or a no-op Executor, a no-op Executor is
// returned. If the input Metrics is nil or a no-op Metrics, the input
// Executor is returned as-is.
//
// If the input Executor is already an Executor with metrics, this Executor
// with metrics is returned with the new Metrics interface configured in
// place of the former.
func AddMetrics(e Executor, m Metrics) Executor {
	if e == nil || e == NoOp() {
		return NoOp()
	}

	if m == nil || m == NoOpMetrics() {
		return e
	}

	if metric, ok := e.(withMetrics); ok {
		metric.m = m

		return metric
	}

	return withMetrics{
		e: e,
		m: m,
	}
}
