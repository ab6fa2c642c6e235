package dispatch

import (
	"github.com/atlas-rt/dispatch/executor"
	"github.com/atlas-rt/dispatch/metrics"
)

// AddMetrics configures q and its underlying executor to report through m,
// replacing whatever registry either was already using. Returns q as-is if
// m is nil.
func AddMetrics(q *Queue, m metrics.Metrics) *Queue {
	if m == nil {
		return q
	}

	q.metrics = m
	q.exec = executor.AddMetrics(q.exec, m)

	return q
}
