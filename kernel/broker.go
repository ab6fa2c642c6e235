package kernel

import (
	"context"
	"sync"
	"time"

	"github.com/atlas-rt/dispatch/workitem"
)

// submitFunc is the real per-thread Submit a broker routes PoolSubmit calls
// through once it has picked a member.
type submitFunc func(ctx context.Context, thread ThreadHandle, id workitem.JobID, exec time.Duration, deadline time.Time) error

// broker implements the thread-pool quartet in-process: no real kernel
// primitive for "create/destroy/join a pool of worker threads" is portable
// to shell out to, so pool membership and the choice of which member
// receives a PoolSubmit'd job are tracked here, while the actual admission
// of a job to a specific thread still goes through submitFunc -- the real
// syscalls on linuxEDF, the simulated per-thread queue on simulated.
type broker struct {
	mu      sync.Mutex
	pools   map[PoolHandle]*poolState
	counter uint64
	submit  submitFunc
}

type poolState struct {
	capacity int
	members  []ThreadHandle
	next     int
}

func newBroker(submit submitFunc) *broker {
	return &broker{
		pools:  make(map[PoolHandle]*poolState),
		submit: submit,
	}
}

// PoolCreate implements Scheduler.
func (b *broker) PoolCreate(workers int) (PoolHandle, error) {
	if workers <= 0 {
		return 0, ErrInvalidArgument
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.counter++
	handle := PoolHandle(b.counter)

	b.pools[handle] = &poolState{
		capacity: workers,
		members:  make([]ThreadHandle, 0, workers),
	}

	return handle, nil
}

// PoolDestroy implements Scheduler.
func (b *broker) PoolDestroy(pool PoolHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.pools[pool]; !ok {
		return ErrPoolUnknown
	}

	delete(b.pools, pool)

	return nil
}

// PoolJoin implements Scheduler: the calling goroutine locks its OS thread,
// resolves a ThreadHandle, and registers as a member of pool.
func (b *broker) PoolJoin(pool PoolHandle) (ThreadHandle, error) {
	thread, err := LockThread()
	if err != nil {
		return ThreadHandle{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	state, ok := b.pools[pool]
	if !ok {
		return ThreadHandle{}, ErrPoolUnknown
	}

	state.members = append(state.members, thread)

	return thread, nil
}

// PoolSubmit implements Scheduler: picks pool's next member round-robin and
// routes the job to it via submitFunc, exactly as Submit would for that
// member's own ThreadHandle.
func (b *broker) PoolSubmit(ctx context.Context, pool PoolHandle, id workitem.JobID, exec time.Duration, deadline time.Time) error {
	b.mu.Lock()
	state, ok := b.pools[pool]
	if !ok {
		b.mu.Unlock()

		return ErrPoolUnknown
	}

	if len(state.members) == 0 {
		b.mu.Unlock()

		return ErrThreadNotStarted
	}

	member := state.members[state.next%len(state.members)]
	state.next++
	b.mu.Unlock()

	return b.submit(ctx, member, id, exec, deadline)
}
