package kernel

// NoOpMetrics returns a Metrics implementation whose methods have no effect.
func NoOpMetrics() Metrics { return noOpMetrics{} }

type noOpMetrics struct{}

func (noOpMetrics) IncSchedulerSubmitCalls() {}
func (noOpMetrics) IncSchedulerNextCalls()   {}
func (noOpMetrics) IncSchedulerRejections()  {}
func (noOpMetrics) IncDeadlineMiss()         {}
