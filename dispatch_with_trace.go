package dispatch

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/atlas-rt/dispatch/executor"
)

// AddTraces configures q and its underlying executor to emit spans through
// tracer, replacing whatever tracer either was already using. Returns q
// as-is if tracer is nil.
func AddTraces(q *Queue, tracer trace.Tracer) *Queue {
	if tracer == nil {
		return q
	}

	q.tracer = tracer
	q.exec = executor.AddTraces(q.exec, tracer)

	return q
}
