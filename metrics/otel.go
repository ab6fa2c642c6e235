package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

const defaultInterval = 500 * time.Millisecond

type ShutdownFunc func(ctx context.Context) error

func Meter() metric.Meter {
	return otel.GetMeterProvider().Meter(ServiceName)
}

var bucketBoundaries = []float64{
	.00001, .00005, .0001, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10,
}

// Otel is the OTLP-backed Metrics registry, an alternative to Prometheus
// for deployments that push to a collector instead of being scraped. Its
// global meter provider is torn down via the ShutdownFunc Init returns,
// not via Shutdown -- the meter provider outlives any single Otel value.
type Otel struct {
	predictCalls metric.Int64Counter
	trainCalls   metric.Int64Counter
	trainErrors  metric.Int64Counter

	schedulerSubmitCalls metric.Int64Counter
	schedulerNextCalls   metric.Int64Counter
	schedulerRejections  metric.Int64Counter
	deadlineMissCount    metric.Int64Counter

	enqueueCalls       metric.Int64Counter
	enqueueErrors      metric.Int64Counter
	executorNextCalls  metric.Int64Counter
	execCalls          metric.Int64Counter
	execErrors         metric.Int64Counter
	execLatency        metric.Float64Histogram
	protocolViolations metric.Int64Counter

	up metric.Int64Gauge
}

func NewOtel() (*Otel, error) {
	predictCalls, err := Meter().Int64Counter(
		"predictor_predict_calls_total",
		metric.WithUnit("calls"),
		metric.WithDescription("Count of calls to predict an execution budget for a job"),
	)
	if err != nil {
		return nil, err
	}

	trainCalls, err := Meter().Int64Counter(
		"predictor_train_calls_total",
		metric.WithUnit("calls"),
		metric.WithDescription("Count of calls to train an estimator with an observed execution time"),
	)
	if err != nil {
		return nil, err
	}

	trainErrors, err := Meter().Int64Counter(
		"predictor_train_errors_total",
		metric.WithUnit("calls"),
		metric.WithDescription("Count of training errors (unknown job type or job id)"),
	)
	if err != nil {
		return nil, err
	}

	schedulerSubmitCalls, err := Meter().Int64Counter(
		"kernel_submit_calls_total",
		metric.WithUnit("calls"),
		metric.WithDescription("Count of realtime job admissions submitted to the kernel scheduler"),
	)
	if err != nil {
		return nil, err
	}

	schedulerNextCalls, err := Meter().Int64Counter(
		"kernel_next_calls_total",
		metric.WithUnit("calls"),
		metric.WithDescription("Count of calls blocking for the next kernel-admitted job"),
	)
	if err != nil {
		return nil, err
	}

	schedulerRejections, err := Meter().Int64Counter(
		"kernel_rejections_total",
		metric.WithUnit("calls"),
		metric.WithDescription("Count of admissions rejected by the kernel scheduler"),
	)
	if err != nil {
		return nil, err
	}

	deadlineMissCount, err := Meter().Int64Counter(
		"kernel_deadline_misses_total",
		metric.WithUnit("misses"),
		metric.WithDescription("Count of jobs admitted by the simulated backend after their deadline had already passed"),
	)
	if err != nil {
		return nil, err
	}

	enqueueCalls, err := Meter().Int64Counter(
		"executor_enqueue_calls_total",
		metric.WithUnit("calls"),
		metric.WithDescription("Count of items linked into an executor's queue"),
	)
	if err != nil {
		return nil, err
	}

	enqueueErrors, err := Meter().Int64Counter(
		"executor_enqueue_errors_total",
		metric.WithUnit("calls"),
		metric.WithDescription("Count of enqueue failures"),
	)
	if err != nil {
		return nil, err
	}

	executorNextCalls, err := Meter().Int64Counter(
		"executor_next_calls_total",
		metric.WithUnit("calls"),
		metric.WithDescription("Count of worker pickups"),
	)
	if err != nil {
		return nil, err
	}

	execCalls, err := Meter().Int64Counter(
		"executor_exec_calls_total",
		metric.WithUnit("calls"),
		metric.WithDescription("Count of item executions from a single executor"),
	)
	if err != nil {
		return nil, err
	}

	execErrors, err := Meter().Int64Counter(
		"executor_exec_errors_total",
		metric.WithUnit("calls"),
		metric.WithDescription("Count of execution errors from a single executor"),
	)
	if err != nil {
		return nil, err
	}

	execLatency, err := Meter().Float64Histogram(
		"executor_exec_latency",
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(bucketBoundaries...),
		metric.WithDescription("Histogram of item execution times"),
	)
	if err != nil {
		return nil, err
	}

	protocolViolations, err := Meter().Int64Counter(
		"executor_protocol_violations_total",
		metric.WithUnit("calls"),
		metric.WithDescription("Count of JobIDs awarded by the kernel but not found in the executor's queue"),
	)
	if err != nil {
		return nil, err
	}

	up, err := Meter().Int64Gauge(
		"dispatch_up",
		metric.WithUnit("up"),
		metric.WithDescription("Signals whether the dispatch queue is running"),
	)
	if err != nil {
		return nil, err
	}

	return &Otel{
		predictCalls:         predictCalls,
		trainCalls:           trainCalls,
		trainErrors:          trainErrors,
		schedulerSubmitCalls: schedulerSubmitCalls,
		schedulerNextCalls:   schedulerNextCalls,
		schedulerRejections:  schedulerRejections,
		deadlineMissCount:    deadlineMissCount,
		enqueueCalls:         enqueueCalls,
		enqueueErrors:        enqueueErrors,
		executorNextCalls:    executorNextCalls,
		execCalls:            execCalls,
		execErrors:           execErrors,
		execLatency:          execLatency,
		protocolViolations:   protocolViolations,
		up:                   up,
	}, nil
}

func (m *Otel) IncPredictCalls() { m.predictCalls.Add(context.Background(), 1) }
func (m *Otel) IncTrainCalls()   { m.trainCalls.Add(context.Background(), 1) }
func (m *Otel) IncTrainErrors()  { m.trainErrors.Add(context.Background(), 1) }

func (m *Otel) IncSchedulerSubmitCalls() { m.schedulerSubmitCalls.Add(context.Background(), 1) }
func (m *Otel) IncSchedulerNextCalls()   { m.schedulerNextCalls.Add(context.Background(), 1) }
func (m *Otel) IncSchedulerRejections()  { m.schedulerRejections.Add(context.Background(), 1) }
func (m *Otel) IncDeadlineMiss()         { m.deadlineMissCount.Add(context.Background(), 1) }

func (m *Otel) IncEnqueueCalls(id string) {
	m.enqueueCalls.Add(context.Background(), 1, metric.WithAttributes(attribute.String("id", id)))
}

func (m *Otel) IncEnqueueErrors(id string) {
	m.enqueueErrors.Add(context.Background(), 1, metric.WithAttributes(attribute.String("id", id)))
}

func (m *Otel) IncNextCalls(id string) {
	m.executorNextCalls.Add(context.Background(), 1, metric.WithAttributes(attribute.String("id", id)))
}

func (m *Otel) IncExecCalls(id string) {
	m.execCalls.Add(context.Background(), 1, metric.WithAttributes(attribute.String("id", id)))
}

func (m *Otel) IncExecErrors(id string) {
	m.execErrors.Add(context.Background(), 1, metric.WithAttributes(attribute.String("id", id)))
}

func (m *Otel) ObserveExecLatency(ctx context.Context, id string, dur time.Duration) {
	m.execLatency.Record(ctx, dur.Seconds(), metric.WithAttributes(attribute.String("id", id)))
}

func (m *Otel) IncProtocolViolations(id string) {
	m.protocolViolations.Add(context.Background(), 1, metric.WithAttributes(attribute.String("id", id)))
}

func (m *Otel) IsUp(isUp bool) {
	var up int64
	if isUp {
		up = 1
	}

	m.up.Record(context.Background(), up)
}

// Shutdown is a no-op: the OTLP meter provider is a process-wide global
// torn down via the ShutdownFunc returned by Init, not per Otel value.
func (m *Otel) Shutdown(context.Context) error { return nil }

// Init configures the global OTLP meter provider to push to uri, returning
// a ShutdownFunc that flushes and tears it down.
func Init(ctx context.Context, uri string) (ShutdownFunc, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(ServiceName)),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(uri),
		otlpmetrichttp.WithInsecure(),
		otlpmetrichttp.WithHeaders(map[string]string{
			"X-Scope-OrgID": "anonymous",
		}),
		otlpmetrichttp.WithRetry(otlpmetrichttp.RetryConfig{
			Enabled:         true,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     500 * time.Millisecond,
			MaxElapsedTime:  time.Minute,
		}),
	)
	if err != nil {
		return nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(defaultInterval),
	)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(meterProvider)

	return meterProvider.Shutdown, nil
}
