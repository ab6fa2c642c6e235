package executor

import (
	"context"
	"time"
)

// NoOpMetrics returns a Metrics implementation whose methods have no effect.
func NoOpMetrics() Metrics { return noOpMetrics{} }

type noOpMetrics struct{}

func (noOpMetrics) IncEnqueueCalls(string)  {}
func (noOpMetrics) IncEnqueueErrors(string) {}
func (noOpMetrics) IncNextCalls(string)     {}
func (noOpMetrics) IncExecCalls(string)     {}
func (noOpMetrics) IncExecErrors(string)    {}

func (noOpMetrics) ObserveExecLatency(context.Context, string, time.Duration) {}

func (noOpMetrics) IncProtocolViolations(string) {}
