package metrics

import (
	"context"
	"time"
)

// NoOp returns a Metrics registry whose methods have no effect, used as the
// default until a real backend is wired in.
func NoOp() Metrics {
	return noOpMetrics{}
}

type noOpMetrics struct{}

func (noOpMetrics) IncPredictCalls() {}
func (noOpMetrics) IncTrainCalls()   {}
func (noOpMetrics) IncTrainErrors()  {}

func (noOpMetrics) IncSchedulerSubmitCalls() {}
func (noOpMetrics) IncSchedulerNextCalls()   {}
func (noOpMetrics) IncSchedulerRejections()  {}
func (noOpMetrics) IncDeadlineMiss()         {}

func (noOpMetrics) IncEnqueueCalls(string)                                    {}
func (noOpMetrics) IncEnqueueErrors(string)                                   {}
func (noOpMetrics) IncNextCalls(string)                                       {}
func (noOpMetrics) IncExecCalls(string)                                       {}
func (noOpMetrics) IncExecErrors(string)                                      {}
func (noOpMetrics) ObserveExecLatency(context.Context, string, time.Duration) {}
func (noOpMetrics) IncProtocolViolations(string)                              {}

func (noOpMetrics) IsUp(bool)                      {}
func (noOpMetrics) Shutdown(context.Context) error { return nil }
