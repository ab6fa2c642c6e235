package kernel

// ThreadHandle identifies the OS thread a goroutine has locked itself to
// via LockThread, the unit of identity the kernel's per-job syscalls (and
// their in-process simulation) address.
//
// A zero-value ThreadHandle is not started; resolving one is only valid
// after LockThread returns successfully from the goroutine that will go on
// to call Scheduler.Next.
type ThreadHandle struct {
	tid     int32
	started bool
}

// TID returns the resolved OS thread id, or 0 if the handle was never
// started.
func (h ThreadHandle) TID() int32 { return h.tid }

// Started reports whether LockThread successfully resolved this handle.
func (h ThreadHandle) Started() bool { return h.started }

// LockThread locks the calling goroutine to its current OS thread (via
// runtime.LockOSThread, never undone -- workers created through this
// package run for the worker's lifetime) and resolves a ThreadHandle for
// it. It must be called from the goroutine that will own the handle.
func LockThread() (ThreadHandle, error) {
	tid, err := lockAndResolveTID()
	if err != nil {
		return ThreadHandle{}, err
	}

	if tid == 0 {
		return ThreadHandle{}, ErrThreadNotStarted
	}

	return ThreadHandle{tid: tid, started: true}, nil
}
