package kernel

import (
	"container/heap"
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/atlas-rt/dispatch/workitem"
)

// simulated is a pure-Go EDF scheduler used when ATLAS_BACKEND=NONE, when
// no real kernel backend is available (non-Linux, or the Linux backend
// failed to initialize), or in tests. It keeps one earliest-deadline-first
// priority queue per ThreadHandle and wakes exactly one blocked Next caller
// per admitted job, giving the same interface and blocking contract as
// linuxEDF without requiring a patched kernel.
type simulated struct {
	*broker

	mu      sync.Mutex
	threads map[int32]*threadQueue

	logger  *slog.Logger
	metrics Metrics
	tracer  trace.Tracer
}

func newSimulated(config *Config) *simulated {
	s := &simulated{
		threads: make(map[int32]*threadQueue),
		logger:  slog.New(config.handler),
		metrics: config.metrics,
		tracer:  config.tracer,
	}

	s.broker = newBroker(s.Submit)

	return s
}

func (s *simulated) queueFor(tid int32) *threadQueue {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.threads[tid]
	if !ok {
		q = newThreadQueue()
		s.threads[tid] = q
	}

	return q
}

// Submit implements Scheduler.
func (s *simulated) Submit(_ context.Context, thread ThreadHandle, id workitem.JobID, exec time.Duration, deadline time.Time) error {
	if !thread.Started() {
		return ErrThreadNotStarted
	}

	s.metrics.IncSchedulerSubmitCalls()
	s.queueFor(thread.TID()).push(&edfJob{id: id, exec: exec, deadline: deadline})

	return nil
}

// Update implements Scheduler.
func (s *simulated) Update(_ context.Context, thread ThreadHandle, id workitem.JobID, exec *time.Duration, deadline *time.Time) error {
	if !thread.Started() {
		return ErrThreadNotStarted
	}

	return s.queueFor(thread.TID()).update(id, exec, deadline)
}

// Remove implements Scheduler.
func (s *simulated) Remove(_ context.Context, thread ThreadHandle, id workitem.JobID) error {
	if !thread.Started() {
		return ErrThreadNotStarted
	}

	return s.queueFor(thread.TID()).remove(id)
}

// Next implements Scheduler: blocks until a job is admitted for thread,
// re-checking on every wakeup exactly like the original's EINTR retry loop,
// generalized here to also observe ctx cancellation.
func (s *simulated) Next(ctx context.Context, thread ThreadHandle) (workitem.JobID, error) {
	if !thread.Started() {
		return 0, ErrThreadNotStarted
	}

	s.metrics.IncSchedulerNextCalls()

	q := s.queueFor(thread.TID())

	for {
		if job, ok := q.pop(); ok {
			if !job.deadline.IsZero() && time.Now().After(job.deadline) {
				s.metrics.IncDeadlineMiss()
			}

			return job.id, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-q.notify:
		}
	}
}

// edfJob is one admitted job in a threadQueue's priority queue, ordered by
// deadline.
type edfJob struct {
	id       workitem.JobID
	exec     time.Duration
	deadline time.Time
	index    int
}

type edfHeap []*edfJob

func (h edfHeap) Len() int            { return len(h) }
func (h edfHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h edfHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *edfHeap) Push(x any) {
	job := x.(*edfJob)
	job.index = len(*h)
	*h = append(*h, job)
}

func (h *edfHeap) Pop() any {
	old := *h
	n := len(old)
	job := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]

	return job
}

// threadQueue is one ThreadHandle's private admission queue.
type threadQueue struct {
	mu     sync.Mutex
	jobs   edfHeap
	byID   map[workitem.JobID]*edfJob
	notify chan struct{}
}

func newThreadQueue() *threadQueue {
	return &threadQueue{
		byID:   make(map[workitem.JobID]*edfJob),
		notify: make(chan struct{}, 1),
	}
}

func (q *threadQueue) push(job *edfJob) {
	q.mu.Lock()
	heap.Push(&q.jobs, job)
	q.byID[job.id] = job
	q.mu.Unlock()

	q.wake()
}

func (q *threadQueue) pop() (*edfJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.jobs.Len() == 0 {
		return nil, false
	}

	job := heap.Pop(&q.jobs).(*edfJob)
	delete(q.byID, job.id)

	return job, true
}

func (q *threadQueue) update(id workitem.JobID, exec *time.Duration, deadline *time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.byID[id]
	if !ok {
		return ErrJobUnknown
	}

	if exec != nil {
		job.exec = *exec
	}

	if deadline != nil {
		job.deadline = *deadline
	}

	heap.Fix(&q.jobs, job.index)

	return nil
}

func (q *threadQueue) remove(id workitem.JobID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.byID[id]
	if !ok {
		return ErrJobUnknown
	}

	heap.Remove(&q.jobs, job.index)
	delete(q.byID, id)

	return nil
}

func (q *threadQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
