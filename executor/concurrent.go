package executor

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/zalgonoise/cfg"
	"golang.org/x/sys/unix"

	"github.com/atlas-rt/dispatch/cpuset"
	"github.com/atlas-rt/dispatch/kernel"
	"github.com/atlas-rt/dispatch/workitem"
)

// concurrent is an Executor backed by N worker goroutines, each pinned to
// the caller-supplied cpuset.Set and sharing one kernel.PoolHandle.
type concurrent struct {
	*base

	pool kernel.PoolHandle
}

// NewConcurrent creates an Executor with workers worker goroutines, each
// pinned via unix.SchedSetaffinity to cpus and joined to a shared kernel
// thread pool. The constructor blocks (busy-yielding, as the original
// does) until every worker has joined the pool, so no submission is ever
// lost to an empty pool.
func NewConcurrent(id string, workers int, cpus cpuset.Set, options ...cfg.Option[*Config]) (Executor, error) {
	config := cfg.Set(defaultConfig(), options...)

	if id == "" {
		id = defaultID
	}

	if config.scheduler == nil {
		return nil, ErrEmptyScheduler
	}

	if workers <= 0 {
		return nil, fmt.Errorf("%w: worker count must be positive, got %d", ErrEmptyScheduler, workers)
	}

	pool, err := config.scheduler.PoolCreate(workers)
	if err != nil {
		return nil, fmt.Errorf("creating kernel thread pool: %w", err)
	}

	b := newBase(id, config)

	c := &concurrent{base: b, pool: pool}

	c.submit = func(ctx context.Context, id workitem.JobID, exec time.Duration, deadline time.Time) error {
		return b.scheduler.PoolSubmit(ctx, pool, id, exec, deadline)
	}
	close(b.submitReady)

	var initCount int32 = int32(workers)

	b.wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			runtime.LockOSThread()

			thread, joinErr := b.scheduler.PoolJoin(pool)
			if joinErr != nil {
				b.logger.Error("failed to join kernel thread pool", "id", b.id, "error", joinErr.Error())
				atomic.AddInt32(&initCount, -1)
				b.wg.Done()

				return
			}

			if len(cpus.CPUs()) > 0 {
				if affErr := setAffinity(thread, cpus); affErr != nil {
					b.logger.Warn("failed to set worker affinity", "id", b.id, "error", affErr.Error())
				}
			}

			atomic.AddInt32(&initCount, -1)

			b.workerLoop(thread)
		}()
	}

	// busy-yield until every worker has joined the pool, mirroring the
	// original's atomic init_count spin-wait.
	for atomic.LoadInt32(&initCount) > 0 {
		runtime.Gosched()
	}

	return c, nil
}

// Close enqueues the shutdown item for every worker, waits for them all to
// exit, and only then destroys the shared kernel thread pool.
func (c *concurrent) Close() error {
	if err := c.closeBase(); err != nil {
		return err
	}

	return c.scheduler.PoolDestroy(c.pool)
}

func setAffinity(thread kernel.ThreadHandle, cpus cpuset.Set) error {
	var set unix.CPUSet

	for _, cpu := range cpus.CPUs() {
		set.Set(cpu)
	}

	return unix.SchedSetaffinity(int(thread.TID()), &set)
}
