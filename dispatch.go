// Package dispatch is the public façade over the executor, kernel and
// predictor packages: a Queue that accepts realtime and best-effort work
// and hands back a Future resolving to the callable's result.
package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/zalgonoise/cfg"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/atlas-rt/dispatch/cpuset"
	"github.com/atlas-rt/dispatch/executor"
	"github.com/atlas-rt/dispatch/kernel"
	"github.com/atlas-rt/dispatch/log"
	"github.com/atlas-rt/dispatch/metrics"
	"github.com/atlas-rt/dispatch/predictor"
	"github.com/atlas-rt/dispatch/workitem"
)

// Metrics describes the actions that register Queue-related liveness.
// NewSerial, NewConcurrent and MainQueue forward the same value to the
// executor (executor.WithMetrics) only; the default predictor and a
// scheduler passed through WithScheduler keep whatever metrics they were
// built with.
type Metrics interface {
	// IsUp signals whether the Queue is currently accepting work.
	IsUp(bool)
}

// Queue accepts work and dispatches it to one underlying executor.Executor.
// NewSerial, NewConcurrent and MainQueue each realize a different
// concurrency strategy; the public surface above this line is identical.
type Queue struct {
	label string

	exec executor.Executor

	logger  *slog.Logger
	metrics Metrics
	tracer  trace.Tracer
}

// Async enqueues fn as a realtime item due by deadline, with metrics fed
// to the predictor for its execution-time estimate. It returns a Future
// that resolves once fn has run.
func (q *Queue) Async(deadline time.Time, metrics []float64, fn func(context.Context) (any, error)) *Future {
	item := workitem.NewItem(deadline, metrics, workitem.TypeOf(fn), fn, true)

	id, err := q.exec.Enqueue(context.Background(), item)
	if err != nil {
		return errFuture(id, err)
	}

	return newFuture(id, item.Done)
}

// Sync is Async(...).Wait().
func (q *Queue) Sync(deadline time.Time, metrics []float64, fn func(context.Context) (any, error)) (any, error) {
	return q.Async(deadline, metrics, fn).Wait()
}

// AsyncBestEffort enqueues fn with no deadline, picked up strictly in
// FIFO order and never submitted to the kernel scheduler.
func (q *Queue) AsyncBestEffort(fn func(context.Context) (any, error)) *Future {
	item := workitem.NewItem(time.Time{}, nil, workitem.TypeOf(fn), fn, false)

	id, err := q.exec.Enqueue(context.Background(), item)
	if err != nil {
		return errFuture(id, err)
	}

	return newFuture(id, item.Done)
}

// SyncBestEffort is AsyncBestEffort(...).Wait().
func (q *Queue) SyncBestEffort(fn func(context.Context) (any, error)) (any, error) {
	return q.AsyncBestEffort(fn).Wait()
}

// AsyncAfter enqueues fn as a realtime item due d from now -- sugar over
// Async(time.Now().Add(d), metrics, fn).
func (q *Queue) AsyncAfter(d time.Duration, metrics []float64, fn func(context.Context) (any, error)) *Future {
	return q.Async(time.Now().Add(d), metrics, fn)
}

// Close enqueues the shutdown item and blocks until every worker goroutine
// has returned.
func (q *Queue) Close() error {
	q.metrics.IsUp(false)

	return q.exec.Close()
}

// NewSerial creates a Queue backed by a single, unbound worker goroutine
// pinned to its own OS thread.
func NewSerial(label string, options ...cfg.Option[*Config]) (*Queue, error) {
	config := cfg.Set(defaultConfig(), options...)

	exec, err := executor.NewSerial(label,
		executor.WithScheduler(config.scheduler),
		executor.WithPredictor(config.predictor),
		executor.WithLogHandler(config.handler),
		executor.WithMetrics(config.metrics),
		executor.WithTrace(config.tracer),
	)
	if err != nil {
		return nil, err
	}

	return newQueue(label, exec, config), nil
}

// NewConcurrent creates a Queue backed by a pool of worker goroutines
// pinned to cpus, sharing one kernel thread pool.
func NewConcurrent(label string, workers int, cpus cpuset.Set, options ...cfg.Option[*Config]) (*Queue, error) {
	config := cfg.Set(defaultConfig(), options...)

	exec, err := executor.NewConcurrent(label, workers, cpus,
		executor.WithScheduler(config.scheduler),
		executor.WithPredictor(config.predictor),
		executor.WithLogHandler(config.handler),
		executor.WithMetrics(config.metrics),
		executor.WithTrace(config.tracer),
	)
	if err != nil {
		return nil, err
	}

	return newQueue(label, exec, config), nil
}

var (
	mainQueueOnce sync.Once
	mainQueueInst *Queue
	mainQueueErr  error
)

// MainQueue returns the singleton Queue wrapping the process-wide main
// queue: a Queue with no worker goroutine of its own, hosted instead by
// whichever goroutine calls the package-level DispatchMain. Only the first
// call's options take effect; later calls return the already-built Queue.
func MainQueue(options ...cfg.Option[*Config]) (*Queue, error) {
	mainQueueOnce.Do(func() {
		config := cfg.Set(defaultConfig(), options...)

		exec, err := executor.MainQueue(
			executor.WithScheduler(config.scheduler),
			executor.WithPredictor(config.predictor),
			executor.WithLogHandler(config.handler),
			executor.WithMetrics(config.metrics),
			executor.WithTrace(config.tracer),
		)
		if err != nil {
			mainQueueErr = err

			return
		}

		mainQueueInst = &Queue{
			label:   "atlas.main-queue",
			exec:    exec,
			logger:  slog.New(config.handler),
			metrics: config.metrics,
			tracer:  config.tracer,
		}
	})

	return mainQueueInst, mainQueueErr
}

// DispatchMain converts the calling goroutine into the main queue's
// worker, blocking until DispatchMainQuit is called or ctx is cancelled.
// Calling MainQueue first is not required -- DispatchMain builds the
// singleton with default options if it has not been built yet.
func DispatchMain(ctx context.Context) {
	q, err := MainQueue()
	if err != nil {
		return
	}

	q.metrics.IsUp(true)
	defer q.metrics.IsUp(false)

	executor.DispatchMain(ctx)
}

// DispatchMainQuit lets the goroutine currently running inside
// DispatchMain return.
func DispatchMainQuit() {
	executor.DispatchMainQuit()
}

func newQueue(label string, exec executor.Executor, config *Config) *Queue {
	q := &Queue{
		label:   label,
		exec:    exec,
		logger:  slog.New(config.handler),
		metrics: config.metrics,
		tracer:  config.tracer,
	}

	q.metrics.IsUp(true)

	return q
}

func defaultTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("no-op tracer")
}

func defaultLogHandler() slog.Handler {
	return log.NoOp()
}

func defaultMetrics() metrics.Metrics {
	return metrics.NoOp()
}

func defaultScheduler() (kernel.Scheduler, error) {
	return kernel.New()
}

func defaultPredictor() (predictor.Predictor, error) {
	return predictor.New()
}
