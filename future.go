package dispatch

import (
	"github.com/atlas-rt/dispatch/workitem"
)

// Future is a handle to a callable enqueued through Queue.Async or
// Queue.AsyncBestEffort. Wait blocks until the callable has run.
type Future struct {
	id   workitem.JobID
	done <-chan workitem.Result
	err  error
}

func newFuture(id workitem.JobID, done <-chan workitem.Result) *Future {
	return &Future{id: id, done: done}
}

// errFuture builds a Future that resolves immediately with err, used when
// Enqueue itself fails: Wait returns err directly instead of reading the
// item's workitem.Result channel.
func errFuture(id workitem.JobID, err error) *Future {
	return &Future{id: id, err: err}
}

// ID returns the JobID assigned to the underlying work item.
func (f *Future) ID() workitem.JobID {
	return f.id
}

// Wait blocks until the callable has run, returning its result or error.
func (f *Future) Wait() (any, error) {
	if f.err != nil {
		return nil, f.err
	}

	result := <-f.done

	return result.Value, result.Err
}
