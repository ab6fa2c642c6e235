//go:build integration

package dispatch_test

import (
	"context"
	"testing"
	"time"

	"github.com/zalgonoise/x/is"

	"github.com/atlas-rt/dispatch"
	"github.com/atlas-rt/dispatch/cpuset"
	"github.com/atlas-rt/dispatch/kernel"
)

// TestSerialAsyncRealtimeResolves exercises a serial Queue end-to-end with
// two realtime items of different deadlines, the later one enqueued first,
// and checks that each Future resolves to its own callable's value. The
// order in which the two run is left to the kernel scheduler and is not
// asserted.
func TestSerialAsyncRealtimeResolves(t *testing.T) {
	sched, err := kernel.New(kernel.WithBackend("NONE"))
	is.Empty(t, err)

	q, err := dispatch.NewSerial("integration", dispatch.WithScheduler(sched))
	is.Empty(t, err)

	defer q.Close()

	now := time.Now()

	late := q.Async(now.Add(2*time.Second), []float64{1}, func(context.Context) (any, error) {
		return "late", nil
	})

	early := q.Async(now.Add(time.Second), []float64{1}, func(context.Context) (any, error) {
		return "early", nil
	})

	firstValue, err := early.Wait()
	is.Empty(t, err)
	is.Equal(t, "early", firstValue)

	secondValue, err := late.Wait()
	is.Empty(t, err)
	is.Equal(t, "late", secondValue)
}

// TestConcurrentBestEffortFanOut exercises a concurrent Queue pinned to a
// single CPU, distributing best-effort work across its worker pool.
func TestConcurrentBestEffortFanOut(t *testing.T) {
	sched, err := kernel.New(kernel.WithBackend("NONE"))
	is.Empty(t, err)

	cpus, err := cpuset.Parse("0")
	is.Empty(t, err)

	q, err := dispatch.NewConcurrent("integration", 3, cpus, dispatch.WithScheduler(sched))
	is.Empty(t, err)

	defer q.Close()

	results := make(chan int, 6)

	futures := make([]*dispatch.Future, 0, 6)

	for i := 0; i < 6; i++ {
		i := i

		futures = append(futures, q.AsyncBestEffort(func(context.Context) (any, error) {
			results <- i

			return i, nil
		}))
	}

	for _, f := range futures {
		_, err := f.Wait()
		is.Empty(t, err)
	}

	seen := map[int]bool{}

	for i := 0; i < 6; i++ {
		select {
		case v := <-results:
			seen[v] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for concurrent worker results")
		}
	}

	is.Equal(t, 6, len(seen))
}

// TestAsyncAfterResolves exercises AsyncAfter's deadline-from-now sugar.
func TestAsyncAfterResolves(t *testing.T) {
	sched, err := kernel.New(kernel.WithBackend("NONE"))
	is.Empty(t, err)

	q, err := dispatch.NewSerial("integration", dispatch.WithScheduler(sched))
	is.Empty(t, err)

	defer q.Close()

	value, err := q.AsyncAfter(50*time.Millisecond, []float64{1}, func(context.Context) (any, error) {
		return "done", nil
	}).Wait()

	is.Empty(t, err)
	is.Equal(t, "done", value)
}

// TestDispatchMainRunsEnqueuedWork races a realtime Async submission against
// DispatchMain starting -- the worker thread that binds submit to the
// kernel scheduler isn't running yet when the call is made -- then confirms
// a plain best-effort item also runs, before DispatchMainQuit tears the
// worker down. The realtime call must block until DispatchMain binds the
// thread rather than panicking on a nil submit func.
func TestDispatchMainRunsEnqueuedWork(t *testing.T) {
	q, err := dispatch.MainQueue(dispatch.WithScheduler(mainQueueScheduler(t)))
	is.Empty(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	realtimeDone := make(chan struct{})

	var (
		realtimeValue any
		realtimeErr   error
	)

	go func() {
		defer close(realtimeDone)

		future := q.Async(time.Now().Add(2*time.Second), []float64{1}, func(context.Context) (any, error) {
			return "realtime-main-queue-result", nil
		})

		realtimeValue, realtimeErr = future.Wait()
	}()

	// give the realtime call a head start so it reaches Enqueue's
	// submitReady wait before DispatchMain has bound the worker thread.
	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})

	go func() {
		defer close(done)
		dispatch.DispatchMain(ctx)
	}()

	select {
	case <-realtimeDone:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for realtime submission to resolve")
	}

	is.Empty(t, realtimeErr)
	is.Equal(t, "realtime-main-queue-result", realtimeValue)

	value, err := q.SyncBestEffort(func(context.Context) (any, error) {
		return "main-queue-result", nil
	})
	is.Empty(t, err)
	is.Equal(t, "main-queue-result", value)

	dispatch.DispatchMainQuit()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for DispatchMain to return")
	}
}

// mainQueueScheduler builds the kernel.Scheduler used to configure the
// process-wide main queue on its first MainQueue call; later calls in the
// same test binary reuse the already-built singleton and ignore this.
func mainQueueScheduler(t *testing.T) kernel.Scheduler {
	t.Helper()

	sched, err := kernel.New(kernel.WithBackend("NONE"))
	is.Empty(t, err)

	return sched
}
