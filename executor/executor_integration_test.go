//go:build integration

package executor_test

import (
	"context"
	"testing"
	"time"

	"github.com/zalgonoise/x/is"

	"github.com/atlas-rt/dispatch/cpuset"
	"github.com/atlas-rt/dispatch/executor"
	"github.com/atlas-rt/dispatch/kernel"
	"github.com/atlas-rt/dispatch/predictor"
	"github.com/atlas-rt/dispatch/workitem"
)

// TestSerialRealtimeWorkload exercises the enqueue/pickup/execute protocol
// end-to-end on a serial executor with a real predictor: two realtime items
// of one job type, the later deadline enqueued first, each resolve with
// their own callable's value. Execution order is not asserted.
func TestSerialRealtimeWorkload(t *testing.T) {
	sched, err := kernel.New(kernel.WithBackend("NONE"))
	is.Empty(t, err)

	pred, err := predictor.New()
	is.Empty(t, err)

	exec, err := executor.NewSerial("integration", executor.WithScheduler(sched), executor.WithPredictor(pred))
	is.Empty(t, err)

	defer exec.Close()

	now := time.Now()

	late := workitem.NewItem(now.Add(2*time.Second), []float64{1}, workitem.JobType(1), func(context.Context) (any, error) {
		return "late", nil
	}, true)

	early := workitem.NewItem(now.Add(time.Second), []float64{1}, workitem.JobType(1), func(context.Context) (any, error) {
		return "early", nil
	}, true)

	_, err = exec.Enqueue(context.Background(), late)
	is.Empty(t, err)

	_, err = exec.Enqueue(context.Background(), early)
	is.Empty(t, err)

	first := <-early.Done
	second := <-late.Done

	is.Equal(t, "early", first.Value)
	is.Equal(t, "late", second.Value)
}

// TestConcurrentAffinityPinnedWorkload exercises a concurrent executor with
// a cpuset restricted to CPU 0, distributing best-effort work across its
// pool.
func TestConcurrentAffinityPinnedWorkload(t *testing.T) {
	sched, err := kernel.New(kernel.WithBackend("NONE"))
	is.Empty(t, err)

	cpus, err := cpuset.Parse("0")
	is.Empty(t, err)

	exec, err := executor.NewConcurrent("integration", 3, cpus, executor.WithScheduler(sched))
	is.Empty(t, err)

	defer exec.Close()

	results := make(chan int, 6)

	for i := 0; i < 6; i++ {
		i := i

		item := workitem.NewItem(time.Time{}, nil, 0, func(context.Context) (any, error) {
			results <- i

			return i, nil
		}, false)

		_, err := exec.Enqueue(context.Background(), item)
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
