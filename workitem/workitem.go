// Package workitem defines the unit of queued work dispatched by an
// executor.Executor: a deadline, a predicted execution budget, a metric
// vector, a job-type tag, the callable itself, and its completion channel.
//
// Work items are never copied and never stored in a growable slice: each
// item is allocated as a node of a container/list.List, so its address
// stays stable for the item's entire lifetime. JobID is derived from that
// stable address -- the "id-as-pointer" pattern the runtime relies on to
// let the kernel scheduler hand back an opaque uint64 that the owning
// executor can locate in O(n) without a side table.
package workitem

import (
	"container/list"
	"context"
	"time"
)

// JobID uniquely identifies a live work item within its owning executor's
// queue. It doubles as the handle the kernel scheduler returns from Next.
type JobID uint64

// JobType tags the shape of a job for prediction purposes: repeated
// submissions of "the same kind of work" share a JobType so they train the
// same estimator. See TypeOf.
type JobType uint64

// Result is the outcome of a work item's execution.
type Result struct {
	Value          any
	Err            error
	DeadlineMissed bool
}

// Runnable is the callable a dispatch queue executes.
type Runnable func(ctx context.Context) (any, error)

// Item is the unit of queued work. It is allocated inside a container/list
// node by Enqueue and must never be moved afterward.
type Item struct {
	SubmittedAt   time.Time
	Deadline      time.Time
	PredictedExec time.Duration
	Metrics       []float64
	Type          JobType
	Run           Runnable
	Done          chan Result

	// Realtime marks an item that is tracked by the kernel scheduler
	// (submitted/removed via kernel.Scheduler). Best-effort items are
	// never submitted to the kernel and are picked up strictly in FIFO
	// order from the queue head.
	Realtime bool
	// Internal marks the distinguished shutdown item: its Run flips the
	// executor's shutdown flag instead of running user code.
	Internal bool
}

// NewItem allocates an Item with a buffered, single-write completion
// channel.
func NewItem(deadline time.Time, metrics []float64, jobType JobType, run Runnable, realtime bool) *Item {
	return &Item{
		SubmittedAt: time.Now(),
		Deadline:    deadline,
		Metrics:     metrics,
		Type:        jobType,
		Run:         run,
		Done:        make(chan Result, 1),
		Realtime:    realtime,
	}
}

// Queue is the insertion-ordered sequence of in-flight Items shared by an
// executor. It is not safe for concurrent use without external
// synchronization; executor.Executor guards it with a mutex and condition
// variable, exactly as spec'd.
type Queue struct {
	list *list.List
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{list: list.New()}
}

// PushBack links item into the queue tail and returns its JobID, derived
// from the stable address of the list node now holding it.
//
// Callers must link an item into the queue BEFORE submitting it to the
// kernel scheduler -- submitting first risks the kernel awarding the job's
// id to a worker before the item is visible here, which is a protocol
// violation (see executor package).
func (q *Queue) PushBack(item *Item) JobID {
	elem := q.list.PushBack(item)

	return idOf(elem)
}

// Front returns the head item and its JobID, or (nil, 0) if the queue is
// empty.
func (q *Queue) Front() (*Item, JobID) {
	elem := q.list.Front()
	if elem == nil {
		return nil, 0
	}

	return elem.Value.(*Item), idOf(elem)
}

// Len returns the number of items currently linked into the queue.
func (q *Queue) Len() int {
	return q.list.Len()
}

// PopFront unlinks and returns the head item.
func (q *Queue) PopFront() *Item {
	elem := q.list.Front()
	if elem == nil {
		return nil
	}

	q.list.Remove(elem)

	return elem.Value.(*Item)
}

// Take locates the item whose JobID equals id, unlinks it and returns it.
// The second return value is false if no such item is linked -- the
// protocol-violation case the executor worker loop must treat as fatal.
func (q *Queue) Take(id JobID) (*Item, bool) {
	for elem := q.list.Front(); elem != nil; elem = elem.Next() {
		if idOf(elem) == id {
			q.list.Remove(elem)

			return elem.Value.(*Item), true
		}
	}

	return nil, false
}

func idOf(elem *list.Element) JobID {
	return JobID(uintptr(pointerOf(elem)))
}
