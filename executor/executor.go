// Package executor runs queued work items against a kernel.Scheduler. All
// three realizations (serial, concurrent, main-queue) share one worker loop
// and one enqueue protocol; they differ only in how work is handed to the
// kernel and how worker goroutines are bound to OS threads.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zalgonoise/cfg"
	"github.com/zalgonoise/x/errs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/atlas-rt/dispatch/clock"
	"github.com/atlas-rt/dispatch/kernel"
	"github.com/atlas-rt/dispatch/predictor"
	"github.com/atlas-rt/dispatch/workitem"
)

const defaultID = "atlas.executor"

const (
	errDomain = errs.Domain("atlas-rt/dispatch/executor")

	ErrEmpty   = errs.Kind("empty")
	ErrClosed  = errs.Kind("closed")
	ErrMissing = errs.Kind("missing")

	ErrScheduler = errs.Entity("kernel scheduler")
	ErrItem      = errs.Entity("work item")
	ErrExecutor  = errs.Entity("executor")
)

var (
	ErrEmptyScheduler = errs.WithDomain(errDomain, ErrEmpty, ErrScheduler)
	ErrClosedExecutor = errs.WithDomain(errDomain, ErrClosed, ErrExecutor)

	// ErrProtocolViolation signals that the kernel awarded a JobID whose
	// item could not be located in the queue. This can only happen if an
	// item was submitted to the kernel before being linked into the queue,
	// which the enqueue protocol forbids; encountering it at runtime means
	// that invariant was somehow broken, so the worker terminates the
	// process rather than continue in a state it cannot reason about.
	ErrProtocolViolation = errs.WithDomain(errDomain, ErrMissing, ErrItem)
)

// Metrics describes the actions that register Executor-related metrics.
type Metrics interface {
	IncEnqueueCalls(id string)
	IncEnqueueErrors(id string)
	IncNextCalls(id string)
	IncExecCalls(id string)
	IncExecErrors(id string)
	ObserveExecLatency(ctx context.Context, id string, dur time.Duration)
	IncProtocolViolations(id string)
}

// Executor runs queued work items to completion. One Executor backs one
// dispatch.Queue.
type Executor interface {
	// Enqueue links item into the executor's queue and, for realtime
	// items, predicts its execution budget and submits it to the kernel
	// scheduler -- in that order, never reversed. It returns the item's
	// JobID.
	Enqueue(ctx context.Context, item *workitem.Item) (workitem.JobID, error)
	// Close enqueues the distinguished shutdown item and blocks until
	// every worker goroutine has returned.
	Close() error
	// ID returns this Executor's label.
	ID() string
}

// submitFunc submits a realtime item to whatever kernel target (a single
// thread, a pool, the main-queue thread) this Executor variant addresses.
type submitFunc func(ctx context.Context, id workitem.JobID, exec time.Duration, deadline time.Time) error

// base implements the shared enqueue protocol and worker loop described in
// the package doc; NewSerial, NewConcurrent and MainQueue each wire a
// submitFunc and a worker-spawning strategy around it.
type base struct {
	id string

	mu           sync.Mutex
	cond         *sync.Cond
	queue        *workitem.Queue
	shuttingDown atomic.Bool

	runCtx    context.Context
	cancelRun context.CancelFunc
	wg        sync.WaitGroup

	scheduler kernel.Scheduler
	predictor predictor.Predictor
	cpuTime   clock.CPUTime

	submit submitFunc
	// submitReady is closed the instant submit is safe to call. NewSerial
	// and NewConcurrent close it before returning, since their worker(s)
	// are already bound to a thread by then; MainQueue leaves it open
	// until DispatchMain actually binds the calling thread, so a realtime
	// Enqueue racing ahead of DispatchMain waits instead of calling a nil
	// submit.
	submitReady chan struct{}

	logger  *slog.Logger
	metrics Metrics
	tracer  trace.Tracer
}

func newBase(id string, config *Config) *base {
	b := &base{
		id:          id,
		queue:       workitem.NewQueue(),
		scheduler:   config.scheduler,
		predictor:   config.predictor,
		cpuTime:     config.cpuTime,
		logger:      slog.New(config.handler),
		metrics:     config.metrics,
		tracer:      config.tracer,
		submitReady: make(chan struct{}),
	}

	b.cond = sync.NewCond(&b.mu)
	b.runCtx, b.cancelRun = context.WithCancel(context.Background())

	return b
}

// ID returns this Executor's label.
func (b *base) ID() string { return b.id }

// Enqueue implements Executor.
func (b *base) Enqueue(ctx context.Context, item *workitem.Item) (workitem.JobID, error) {
	ctx, span := b.tracer.Start(ctx, "Executor.Enqueue")
	defer span.End()

	b.metrics.IncEnqueueCalls(b.id)

	if b.shuttingDown.Load() {
		return 0, ErrClosedExecutor
	}

	// link first, publish second: the item must be visible in the queue
	// before the kernel can possibly award its JobID to a worker.
	b.mu.Lock()
	id := b.queue.PushBack(item)
	b.mu.Unlock()

	span.SetAttributes(
		attribute.String("id", b.id),
		attribute.Int64("job_id", int64(id)),
		attribute.Bool("realtime", item.Realtime),
	)

	if item.Realtime {
		select {
		case <-b.submitReady:
		case <-ctx.Done():
			return id, b.rejectEnqueue(item, id, fmt.Errorf("waiting for worker thread to bind: %w", ctx.Err()), span)
		}

		exec, err := b.predictor.Predict(ctx, item.Type, id, item.Metrics)
		if err != nil {
			return id, b.rejectEnqueue(item, id, fmt.Errorf("predicting execution budget: %w", err), span)
		}

		item.PredictedExec = exec

		if err := b.submit(ctx, id, exec, item.Deadline); err != nil {
			return id, b.rejectEnqueue(item, id, fmt.Errorf("submitting to kernel scheduler: %w", err), span)
		}
	}

	b.mu.Lock()
	b.cond.Broadcast()
	b.mu.Unlock()

	return id, nil
}

// rejectEnqueue unlinks an item that failed prediction or kernel
// submission, resolves its completion channel with the failure, and
// records it on the span and metrics.
func (b *base) rejectEnqueue(item *workitem.Item, id workitem.JobID, err error, span trace.Span) error {
	b.metrics.IncEnqueueErrors(b.id)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	b.mu.Lock()
	b.queue.Take(id)
	b.mu.Unlock()

	item.Done <- workitem.Result{Err: err}
	close(item.Done)

	return err
}

// Close implements Executor for the serial and main-queue realizations,
// which have no pool to tear down.
func (b *base) Close() error {
	return b.closeBase()
}

// closeBase enqueues the shutdown item, cancels the run context (to
// unblock any worker parked in a blocking kernel Next call) and waits for
// every worker goroutine to return.
func (b *base) closeBase() error {
	shutdown := workitem.NewItem(time.Time{}, nil, 0, func(context.Context) (any, error) {
		b.shuttingDown.Store(true)

		b.mu.Lock()
		b.cond.Broadcast()
		b.mu.Unlock()

		return nil, nil
	}, false)
	shutdown.Internal = true

	b.mu.Lock()
	b.queue.PushBack(shutdown)
	b.cond.Broadcast()
	b.mu.Unlock()

	b.cancelRun()
	b.wg.Wait()

	return nil
}

// workerLoop runs the shared pickup-execute cycle until shutdown. thread is
// the OS thread this goroutine is bound to, used to address the kernel
// scheduler's per-thread Next call.
func (b *base) workerLoop(thread kernel.ThreadHandle) {
	defer b.wg.Done()

	for {
		item, id, ok := b.pickup(thread)
		if !ok {
			return
		}

		if item == nil {
			continue
		}

		b.execute(id, item)

		if item.Internal {
			return
		}
	}
}

// pickup waits for the queue to be non-empty (or for shutdown) and then
// picks the next item: a best-effort head is popped directly, a realtime
// head is picked by blocking in the kernel scheduler's Next call and
// locating the matching JobID. The second return value is false only when
// the worker should exit; a nil item with ok true means "retry", used when
// a realtime Next call is interrupted by a graceful shutdown.
func (b *base) pickup(thread kernel.ThreadHandle) (*workitem.Item, workitem.JobID, bool) {
	b.mu.Lock()

	for b.queue.Len() == 0 && !b.shuttingDown.Load() {
		b.cond.Wait()
	}

	if b.queue.Len() == 0 && b.shuttingDown.Load() {
		b.mu.Unlock()

		return nil, 0, false
	}

	head, headID := b.queue.Front()

	if !head.Realtime {
		item := b.queue.PopFront()
		b.mu.Unlock()

		return item, headID, true
	}

	b.mu.Unlock()

	b.metrics.IncNextCalls(b.id)

	id, err := b.scheduler.Next(b.runCtx, thread)
	if err != nil {
		if b.runCtx.Err() != nil {
			// shutdown cancelled the blocking Next call; loop back around
			// so the top-of-loop shuttingDown check can exit cleanly.
			return nil, 0, true
		}

		b.logger.Error("kernel Next call failed", slog.String("id", b.id), slog.String("error", err.Error()))

		return nil, 0, true
	}

	b.mu.Lock()
	item, found := b.queue.Take(id)
	b.mu.Unlock()

	if !found {
		b.fatal(fmt.Errorf("%w: job %d awarded by kernel but not found in queue", ErrProtocolViolation, id))

		return nil, 0, false
	}

	return item, id, true
}

// fatal logs and surfaces a protocol violation, then terminates the
// process -- the worker has no way to reason about queue state it cannot
// trust, matching the original runtime's "work item not found" abort.
func (b *base) fatal(err error) {
	b.metrics.IncProtocolViolations(b.id)
	b.logger.Error("protocol violation, terminating", slog.String("id", b.id), slog.String("error", err.Error()))
	os.Exit(1)
}

// execute runs item.Run bracketed by a CPU-time measurement, resolves its
// completion channel exactly once, and -- for realtime items whose callable
// succeeded -- trains the predictor with the measured execution time.
func (b *base) execute(id workitem.JobID, item *workitem.Item) {
	ctx, span := b.tracer.Start(b.runCtx, "Executor.Execute")
	defer span.End()

	span.SetAttributes(attribute.String("id", b.id), attribute.Int64("job_id", int64(id)))
	b.metrics.IncExecCalls(b.id)

	wallStart := time.Now()

	defer func() {
		b.metrics.ObserveExecLatency(ctx, b.id, time.Since(wallStart))
	}()

	start, startErr := b.cpuTime.Now()

	value, runErr := item.Run(ctx)

	end, endErr := b.cpuTime.Now()

	if runErr != nil {
		b.metrics.IncExecErrors(b.id)
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
		b.logger.Warn("work item execution error", slog.String("id", b.id), slog.String("error", runErr.Error()))
	}

	deadlineMissed := !item.Deadline.IsZero() && time.Now().After(item.Deadline)

	item.Done <- workitem.Result{Value: value, Err: runErr, DeadlineMissed: deadlineMissed}
	close(item.Done)

	if !item.Realtime || item.Internal || runErr != nil {
		return
	}

	var elapsed time.Duration
	if startErr == nil && endErr == nil {
		elapsed = end - start
	}

	if err := b.predictor.Train(ctx, item.Type, id, elapsed); err != nil {
		b.logger.Warn("predictor training error", slog.String("id", b.id), slog.String("error", err.Error()))
	}
}

// New creates an Executor with the input cfg.Option(s), also returning an
// error if raised.
//
// New always builds a serial executor -- one unbound worker goroutine. Use
// NewConcurrent for a worker pool pinned to a cpuset.Set, or MainQueue for
// the singleton that runs on the caller of DispatchMain.
func New(id string, options ...cfg.Option[*Config]) (Executor, error) {
	return NewSerial(id, options...)
}

// NewSerial creates an Executor with a single, unbound worker goroutine.
// submitToScheduler addresses that worker's own locked OS thread, exactly
// as the original's serial executor does.
func NewSerial(id string, options ...cfg.Option[*Config]) (Executor, error) {
	config := cfg.Set(defaultConfig(), options...)

	if id == "" {
		id = defaultID
	}

	if config.scheduler == nil {
		return nil, ErrEmptyScheduler
	}

	b := newBase(id, config)

	ready := make(chan error, 1)

	b.wg.Add(1)

	// the worker goroutine must lock its own OS thread: kernel.LockThread
	// resolves the tid of the calling goroutine, so locking it up front on
	// the constructor's goroutine would bind the kernel scheduler to the
	// wrong thread entirely.
	go func() {
		thread, err := kernel.LockThread()
		if err != nil {
			ready <- err
			b.wg.Done()

			return
		}

		b.submit = func(ctx context.Context, id workitem.JobID, exec time.Duration, deadline time.Time) error {
			return b.scheduler.Submit(ctx, thread, id, exec, deadline)
		}
		close(b.submitReady)

		ready <- nil

		b.workerLoop(thread)
	}()

	if err := <-ready; err != nil {
		return nil, fmt.Errorf("locking worker thread: %w", err)
	}

	return b, nil
}

// NoOp returns an Executor whose methods have no effect.
func NoOp() Executor { return noOpExecutor{} }

type noOpExecutor struct{}

func (noOpExecutor) Enqueue(context.Context, *workitem.Item) (workitem.JobID, error) { return 0, nil }
func (noOpExecutor) Close() error                                                    { return nil }
func (noOpExecutor) ID() string                                                      { return "" }
