package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zalgonoise/x/is"

	"github.com/atlas-rt/dispatch/cpuset"
	"github.com/atlas-rt/dispatch/kernel"
	"github.com/atlas-rt/dispatch/predictor"
	"github.com/atlas-rt/dispatch/workitem"
)

func newTestScheduler(t *testing.T) kernel.Scheduler {
	t.Helper()

	sched, err := kernel.New(kernel.WithBackend("NONE"))
	is.Empty(t, err)

	return sched
}

func TestNewSerialRequiresScheduler(t *testing.T) {
	_, err := NewSerial("test")
	is.True(t, err != nil)
}

func TestSerialBestEffortRunsInOrder(t *testing.T) {
	sched := newTestScheduler(t)

	exec, err := NewSerial("test", WithScheduler(sched))
	is.Empty(t, err)

	defer exec.Close()

	var order []int

	for i := 0; i < 3; i++ {
		i := i

		item := workitem.NewItem(time.Time{}, nil, 0, func(context.Context) (any, error) {
			order = append(order, i)

			return i, nil
		}, false)

		_, err := exec.Enqueue(context.Background(), item)
		is.Empty(t, err)

		res := <-item.Done
		is.Empty(t, res.Err)
	}

	is.Equal(t, []int{0, 1, 2}, order)
}

func TestSerialRealtimeTrainsPredictor(t *testing.T) {
	sched := newTestScheduler(t)
	pred, err := predictor.New()
	is.Empty(t, err)

	exec, err := NewSerial("test", WithScheduler(sched), WithPredictor(pred))
	is.Empty(t, err)

	defer exec.Close()

	item := workitem.NewItem(time.Now().Add(time.Second), []float64{1}, workitem.JobType(1), func(context.Context) (any, error) {
		return "ok", nil
	}, true)

	id, err := exec.Enqueue(context.Background(), item)
	is.Empty(t, err)

	res := <-item.Done
	is.Empty(t, res.Err)
	is.Equal(t, "ok", res.Value)

	// Close waits for the worker, so training has finished; a trained job is
	// no longer in the predictor's in-flight FIFO.
	is.Empty(t, exec.Close())
	is.True(t, errors.Is(pred.Train(context.Background(), workitem.JobType(1), id, time.Millisecond), predictor.ErrJobUnknown))
}

func TestSerialRealtimeRunnerError(t *testing.T) {
	sched := newTestScheduler(t)

	exec, err := NewSerial("test", WithScheduler(sched))
	is.Empty(t, err)

	defer exec.Close()

	wantErr := errors.New("boom")

	item := workitem.NewItem(time.Now().Add(time.Second), nil, workitem.JobType(1), func(context.Context) (any, error) {
		return nil, wantErr
	}, true)

	_, err = exec.Enqueue(context.Background(), item)
	is.Empty(t, err)

	res := <-item.Done
	is.True(t, errors.Is(res.Err, wantErr))
}

func TestCloseDrainsPendingBestEffortItems(t *testing.T) {
	sched := newTestScheduler(t)

	exec, err := NewSerial("test", WithScheduler(sched))
	is.Empty(t, err)

	done := make(chan struct{})

	item := workitem.NewItem(time.Time{}, nil, 0, func(context.Context) (any, error) {
		close(done)

		return nil, nil
	}, false)

	_, err = exec.Enqueue(context.Background(), item)
	is.Empty(t, err)

	is.Empty(t, exec.Close())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pending item was not drained before Close returned")
	}
}

func TestEnqueueAfterCloseIsRejected(t *testing.T) {
	sched := newTestScheduler(t)

	exec, err := NewSerial("test", WithScheduler(sched))
	is.Empty(t, err)

	is.Empty(t, exec.Close())

	item := workitem.NewItem(time.Time{}, nil, 0, func(context.Context) (any, error) { return nil, nil }, false)

	_, err = exec.Enqueue(context.Background(), item)
	is.True(t, err != nil)
}

func TestNewConcurrentRequiresPositiveWorkers(t *testing.T) {
	sched := newTestScheduler(t)

	_, err := NewConcurrent("test", 0, cpuset.Set{}, WithScheduler(sched))
	is.True(t, err != nil)
}

func TestConcurrentDistributesBestEffortWork(t *testing.T) {
	sched := newTestScheduler(t)

	exec, err := NewConcurrent("test", 2, cpuset.Set{}, WithScheduler(sched))
	is.Empty(t, err)

	defer exec.Close()

	results := make(chan int, 4)

	for i := 0; i < 4; i++ {
		i := i

		item := workitem.NewItem(time.Time{}, nil, 0, func(context.Context) (any, error) {
			results <- i

			return i, nil
		}, false)

		_, err := exec.Enqueue(context.Background(), item)
		is.Empty(t, err)
	}

	seen := map[int]bool{}

	for i := 0; i < 4; i++ {
		select {
		case v := <-results:
			seen[v] = true
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for concurrent worker results")
		}
	}

	is.Equal(t, 4, len(seen))
}

func TestAddLogsNoOpPassthrough(t *testing.T) {
	is.Equal(t, NoOp(), AddLogs(nil, nil))
	is.Equal(t, NoOp(), AddLogs(NoOp(), nil))
}

func TestAddMetricsNoOpPassthrough(t *testing.T) {
	sched := newTestScheduler(t)
	exec, err := NewSerial("test", WithScheduler(sched))
	is.Empty(t, err)

	defer exec.Close()

	is.Equal(t, exec, AddMetrics(exec, nil))
}

func TestAddTracesNoOpPassthrough(t *testing.T) {
	sched := newTestScheduler(t)
	exec, err := NewSerial("test", WithScheduler(sched))
	is.Empty(t, err)

	defer exec.Close()

	is.Equal(t, exec, AddTraces(exec, nil))
}
