package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPort    = 13003
	defaultTimeout = 15 * time.Second
)

// Prometheus is the default Metrics registry: a set of counters,
// histograms and one gauge served over an embedded /metrics HTTP server.
type Prometheus struct {
	server *http.Server

	predictCalls prometheus.Counter
	trainCalls   prometheus.Counter
	trainErrors  prometheus.Counter

	schedulerSubmitCalls prometheus.Counter
	schedulerNextCalls   prometheus.Counter
	schedulerRejections  prometheus.Counter
	deadlineMissCount    prometheus.Counter

	enqueueCalls        *prometheus.CounterVec
	enqueueErrors       *prometheus.CounterVec
	executorNextCalls   *prometheus.CounterVec
	execCalls           *prometheus.CounterVec
	execErrors          *prometheus.CounterVec
	execLatency         *prometheus.HistogramVec
	protocolViolations  *prometheus.CounterVec

	up prometheus.Gauge
}

func (m *Prometheus) IncPredictCalls() { m.predictCalls.Inc() }
func (m *Prometheus) IncTrainCalls()   { m.trainCalls.Inc() }
func (m *Prometheus) IncTrainErrors()  { m.trainErrors.Inc() }

func (m *Prometheus) IncSchedulerSubmitCalls() { m.schedulerSubmitCalls.Inc() }
func (m *Prometheus) IncSchedulerNextCalls()   { m.schedulerNextCalls.Inc() }
func (m *Prometheus) IncSchedulerRejections()  { m.schedulerRejections.Inc() }
func (m *Prometheus) IncDeadlineMiss()         { m.deadlineMissCount.Inc() }

func (m *Prometheus) IncEnqueueCalls(id string)  { m.enqueueCalls.WithLabelValues(id).Inc() }
func (m *Prometheus) IncEnqueueErrors(id string) { m.enqueueErrors.WithLabelValues(id).Inc() }
func (m *Prometheus) IncNextCalls(id string)     { m.executorNextCalls.WithLabelValues(id).Inc() }
func (m *Prometheus) IncExecCalls(id string)     { m.execCalls.WithLabelValues(id).Inc() }
func (m *Prometheus) IncExecErrors(id string)    { m.execErrors.WithLabelValues(id).Inc() }

func (m *Prometheus) ObserveExecLatency(ctx context.Context, id string, dur time.Duration) {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		//nolint:forcetypeassert // the underlying implementation implements ExemplarObserver by default
		m.execLatency.
			WithLabelValues(id).(prometheus.ExemplarObserver).
			ObserveWithExemplar(
				dur.Seconds(),
				prometheus.Labels{traceIDKey: sc.TraceID().String()},
			)

		return
	}

	m.execLatency.WithLabelValues(id).Observe(dur.Seconds())
}

func (m *Prometheus) IncProtocolViolations(id string) { m.protocolViolations.WithLabelValues(id).Inc() }

func (m *Prometheus) IsUp(up bool) {
	if up {
		m.up.Set(1.0)

		return
	}

	m.up.Set(0.0)
}

// Registry assembles a fresh prometheus.Registry carrying every metric
// this registry exposes, plus the standard Go/process collectors.
func (m *Prometheus) Registry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()

	for _, metric := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
			ReportErrors: false,
		}),
		m.predictCalls,
		m.trainCalls,
		m.trainErrors,
		m.schedulerSubmitCalls,
		m.schedulerNextCalls,
		m.schedulerRejections,
		m.deadlineMissCount,
		m.enqueueCalls,
		m.enqueueErrors,
		m.executorNextCalls,
		m.execCalls,
		m.execErrors,
		m.execLatency,
		m.protocolViolations,
		m.up,
	} {
		if err := reg.Register(metric); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

func (m *Prometheus) Shutdown(ctx context.Context) error {
	return m.server.Shutdown(ctx)
}

// NewPrometheus starts the /metrics HTTP server on port (defaultPort when
// port <= 0) and returns the registry backing it.
func NewPrometheus(port int) (*Prometheus, error) {
	if port <= 0 {
		port = defaultPort
	}

	prom := &Prometheus{
		predictCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "predictor_predict_calls_total",
			Help: "Count of calls to predict an execution budget for a job",
		}),
		trainCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "predictor_train_calls_total",
			Help: "Count of calls to train an estimator with an observed execution time",
		}),
		trainErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "predictor_train_errors_total",
			Help: "Count of training errors (unknown job type or job id)",
		}),
		schedulerSubmitCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kernel_submit_calls_total",
			Help: "Count of realtime job admissions submitted to the kernel scheduler",
		}),
		schedulerNextCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kernel_next_calls_total",
			Help: "Count of calls blocking for the next kernel-admitted job",
		}),
		schedulerRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kernel_rejections_total",
			Help: "Count of admissions rejected by the kernel scheduler",
		}),
		deadlineMissCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kernel_deadline_misses_total",
			Help: "Count of jobs admitted by the simulated backend after their deadline had already passed",
		}),
		enqueueCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "executor_enqueue_calls_total",
			Help: "Count of items linked into an executor's queue, identified by executor ID",
		}, []string{"id"}),
		enqueueErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "executor_enqueue_errors_total",
			Help: "Count of enqueue failures, identified by executor ID",
		}, []string{"id"}),
		executorNextCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "executor_next_calls_total",
			Help: "Count of worker pickups, identified by executor ID",
		}, []string{"id"}),
		execCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "executor_exec_calls_total",
			Help: "Count of item executions from a single executor, identified by its ID",
		}, []string{"id"}),
		execErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "executor_exec_errors_total",
			Help: "Count of execution errors from a single executor, identified by its ID",
		}, []string{"id"}),
		execLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "executor_exec_latency_seconds",
			Help:    "Histogram of item execution times",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"id"}),
		protocolViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "executor_protocol_violations_total",
			Help: "Count of JobIDs awarded by the kernel but not found in the executor's queue",
		}, []string{"id"}),
		up: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_up",
			Help: "Signals whether the dispatch queue is running",
		}),
	}

	mux := http.NewServeMux()

	reg, err := prom.Registry()
	if err != nil {
		return nil, err
	}

	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		Registry:          reg,
		EnableOpenMetrics: true,
	}))

	prom.server = &http.Server{
		Handler:      mux,
		Addr:         fmt.Sprintf(":%d", port),
		ReadTimeout:  defaultTimeout,
		WriteTimeout: defaultTimeout,
	}

	go func() {
		if err := prom.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()

	return prom, nil
}
