package executor

import (
	"context"
	"sync"
	"time"

	"github.com/zalgonoise/cfg"

	"github.com/atlas-rt/dispatch/kernel"
	"github.com/atlas-rt/dispatch/workitem"
)

// mainQueue is the process-wide singleton Executor with no worker goroutine
// of its own: DispatchMain converts the calling goroutine into its worker,
// exactly as the original lets a GUI-like event loop host deadline-driven
// work dispatched to it from anywhere.
var (
	mainQueueOnce sync.Once
	mainQueueInst *base
	mainQueueErr  error
)

// MainQueue returns the singleton main-queue Executor, configuring it with
// options on first call only; subsequent calls ignore options and return
// the already-built instance.
func MainQueue(options ...cfg.Option[*Config]) (Executor, error) {
	mainQueueOnce.Do(func() {
		config := cfg.Set(defaultConfig(), options...)

		if config.scheduler == nil {
			mainQueueErr = ErrEmptyScheduler

			return
		}

		mainQueueInst = newBase("atlas.main-queue", config)
	})

	if mainQueueErr != nil {
		return nil, mainQueueErr
	}

	return mainQueueInst, nil
}

// DispatchMain converts the calling goroutine into the main queue's
// worker, locking it to its OS thread and running the shared worker loop
// directly -- no goroutine is spawned, matching the original's "dispatch_
// main turns the calling thread into the worker" semantics. It blocks
// until DispatchMainQuit enqueues the shutdown item, or ctx is cancelled
// (which triggers the same shutdown path).
func DispatchMain(ctx context.Context) {
	if mainQueueInst == nil {
		return
	}

	thread, err := kernel.LockThread()
	if err != nil {
		mainQueueInst.logger.Error("failed to lock main-queue thread", "error", err.Error())

		return
	}

	mainQueueInst.submit = func(ctx context.Context, id workitem.JobID, exec time.Duration, deadline time.Time) error {
		return mainQueueInst.scheduler.Submit(ctx, thread, id, exec, deadline)
	}
	close(mainQueueInst.submitReady)

	stop := context.AfterFunc(ctx, DispatchMainQuit)
	defer stop()

	mainQueueInst.wg.Add(1)
	mainQueueInst.workerLoop(thread)
}

// DispatchMainQuit enqueues the shutdown item for the main queue, letting
// the goroutine running inside DispatchMain return.
func DispatchMainQuit() {
	if mainQueueInst == nil {
		return
	}

	_ = mainQueueInst.closeBase()
}
