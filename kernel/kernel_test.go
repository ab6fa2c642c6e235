package kernel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zalgonoise/x/is"

	"github.com/atlas-rt/dispatch/workitem"
)

func newTestScheduler(t *testing.T) Scheduler {
	t.Helper()

	sched, err := New(WithBackend("NONE"))
	is.Empty(t, err)

	return sched
}

func lockTestThread(t *testing.T) ThreadHandle {
	t.Helper()

	var thread ThreadHandle

	done := make(chan struct{})

	go func() {
		defer close(done)

		var err error
		thread, err = LockThread()
		is.Empty(t, err)
	}()
	<-done

	return thread
}

func TestSubmitAndNext(t *testing.T) {
	sched := newTestScheduler(t)
	thread := lockTestThread(t)

	err := sched.Submit(context.Background(), thread, workitem.JobID(1), time.Millisecond, time.Now().Add(time.Second))
	is.Empty(t, err)

	id, err := sched.Next(context.Background(), thread)
	is.Empty(t, err)
	is.Equal(t, workitem.JobID(1), id)
}

func TestNextPicksEarliestDeadline(t *testing.T) {
	sched := newTestScheduler(t)
	thread := lockTestThread(t)
	ctx := context.Background()
	now := time.Now()

	is.Empty(t, sched.Submit(ctx, thread, workitem.JobID(2), 0, now.Add(2*time.Second)))
	is.Empty(t, sched.Submit(ctx, thread, workitem.JobID(1), 0, now.Add(time.Second)))

	id, err := sched.Next(ctx, thread)
	is.Empty(t, err)
	is.Equal(t, workitem.JobID(1), id)
}

func TestNextBlocksUntilSubmit(t *testing.T) {
	sched := newTestScheduler(t)
	thread := lockTestThread(t)

	result := make(chan workitem.JobID, 1)

	go func() {
		id, err := sched.Next(context.Background(), thread)
		is.Empty(t, err)
		result <- id
	}()

	time.Sleep(20 * time.Millisecond)
	is.Empty(t, sched.Submit(context.Background(), thread, workitem.JobID(5), 0, time.Now().Add(time.Second)))

	select {
	case id := <-result:
		is.Equal(t, workitem.JobID(5), id)
	case <-time.After(time.Second):
		t.Fatal("Next did not unblock after Submit")
	}
}

func TestNextRespectsContextCancellation(t *testing.T) {
	sched := newTestScheduler(t)
	thread := lockTestThread(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := sched.Next(ctx, thread)
	is.True(t, err != nil)
}

func TestUpdateAndRemove(t *testing.T) {
	sched := newTestScheduler(t)
	thread := lockTestThread(t)
	ctx := context.Background()

	is.Empty(t, sched.Submit(ctx, thread, workitem.JobID(9), 0, time.Now().Add(time.Hour)))

	newDeadline := time.Now().Add(time.Millisecond)
	is.Empty(t, sched.Update(ctx, thread, workitem.JobID(9), nil, &newDeadline))

	err := sched.Remove(ctx, thread, workitem.JobID(9))
	is.Empty(t, err)

	err = sched.Remove(ctx, thread, workitem.JobID(9))
	is.True(t, err != nil)
}

func TestSubmitRequiresStartedThread(t *testing.T) {
	sched := newTestScheduler(t)

	err := sched.Submit(context.Background(), ThreadHandle{}, workitem.JobID(1), 0, time.Now())
	is.True(t, err != nil)
}

func TestPoolLifecycle(t *testing.T) {
	sched := newTestScheduler(t)

	pool, err := sched.PoolCreate(2)
	is.Empty(t, err)

	var wg sync.WaitGroup

	results := make(chan workitem.JobID, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			thread, err := sched.PoolJoin(pool)
			is.Empty(t, err)

			id, err := sched.Next(context.Background(), thread)
			is.Empty(t, err)
			results <- id
		}()
	}

	time.Sleep(20 * time.Millisecond)

	ctx := context.Background()
	is.Empty(t, sched.PoolSubmit(ctx, pool, workitem.JobID(10), 0, time.Now().Add(time.Second)))
	is.Empty(t, sched.PoolSubmit(ctx, pool, workitem.JobID(11), 0, time.Now().Add(time.Second)))

	wg.Wait()
	close(results)

	got := map[workitem.JobID]bool{}
	for id := range results {
		got[id] = true
	}

	is.True(t, got[workitem.JobID(10)])
	is.True(t, got[workitem.JobID(11)])
	is.Empty(t, sched.PoolDestroy(pool))
}

func TestPoolCreateRejectsNonPositiveWorkers(t *testing.T) {
	sched := newTestScheduler(t)

	_, err := sched.PoolCreate(0)
	is.True(t, err != nil)
}

func TestSetPolicyRejectsUnknownAttr(t *testing.T) {
	err := SetPolicy("not_a_real_attr", true)
	is.True(t, err != nil)
}
