//go:build linux

package kernel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unsafe"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sys/unix"

	"github.com/atlas-rt/dispatch/workitem"
)

// linuxEDF issues the four per-job ATLAS kernel patch syscalls directly.
// The thread-pool quartet has no equivalent kernel primitive to shell out
// to, so it is served by the same in-process broker the simulated backend
// uses; only the per-job admission itself crosses into the kernel.
type linuxEDF struct {
	*broker

	logger  *slog.Logger
	metrics Metrics
	tracer  trace.Tracer
}

var errUnsupportedArch = errors.New("ATLAS kernel patch syscalls are not known for this architecture")

func newLinuxEDF(config *Config) (Scheduler, error) {
	if sysAtlasNext < 0 {
		return nil, errUnsupportedArch
	}

	k := &linuxEDF{
		logger:  slog.New(config.handler),
		metrics: config.metrics,
		tracer:  config.tracer,
	}

	k.broker = newBroker(k.Submit)

	return k, nil
}

// Submit implements Scheduler.
func (k *linuxEDF) Submit(_ context.Context, thread ThreadHandle, id workitem.JobID, exec time.Duration, deadline time.Time) error {
	if !thread.Started() {
		return ErrThreadNotStarted
	}

	execTV := unix.NsecToTimeval(exec.Nanoseconds())
	deadlineTV := unix.NsecToTimeval(deadline.UnixNano())

	k.metrics.IncSchedulerSubmitCalls()

	_, _, errno := unix.Syscall6(sysAtlasSubmit,
		uintptr(thread.TID()), uintptr(id),
		uintptr(unsafe.Pointer(&execTV)), uintptr(unsafe.Pointer(&deadlineTV)),
		0, 0)

	if errno != 0 {
		k.metrics.IncSchedulerRejections()

		return newKernelRejected(fmt.Errorf("atlas_submit: %w", errno))
	}

	return nil
}

// Update implements Scheduler.
func (k *linuxEDF) Update(_ context.Context, thread ThreadHandle, id workitem.JobID, exec *time.Duration, deadline *time.Time) error {
	if !thread.Started() {
		return ErrThreadNotStarted
	}

	var execPtr, deadlinePtr uintptr

	if exec != nil {
		tv := unix.NsecToTimeval(exec.Nanoseconds())
		execPtr = uintptr(unsafe.Pointer(&tv))
	}

	if deadline != nil {
		tv := unix.NsecToTimeval(deadline.UnixNano())
		deadlinePtr = uintptr(unsafe.Pointer(&tv))
	}

	_, _, errno := unix.Syscall6(sysAtlasUpdate, uintptr(thread.TID()), uintptr(id), execPtr, deadlinePtr, 0, 0)
	if errno != 0 {
		if errno == unix.ESRCH {
			return ErrJobUnknown
		}

		return newKernelRejected(fmt.Errorf("atlas_update: %w", errno))
	}

	return nil
}

// Remove implements Scheduler.
func (k *linuxEDF) Remove(_ context.Context, thread ThreadHandle, id workitem.JobID) error {
	if !thread.Started() {
		return ErrThreadNotStarted
	}

	_, _, errno := unix.Syscall(sysAtlasRemove, uintptr(thread.TID()), uintptr(id), 0)
	if errno != 0 {
		if errno == unix.ESRCH {
			return ErrJobUnknown
		}

		return newKernelRejected(fmt.Errorf("atlas_remove: %w", errno))
	}

	return nil
}

// Next implements Scheduler: blocks in the calling OS thread until the
// kernel admits a job for it, retrying on EINTR exactly as the original
// syscall wrapper's next() loop does. A return value of 0 means the
// scheduler woke the thread with no job currently pending -- a spurious
// wakeup, not a job id (id 0 is never a valid award) -- and is retried the
// same way EINTR is.
func (k *linuxEDF) Next(ctx context.Context, thread ThreadHandle) (workitem.JobID, error) {
	if !thread.Started() {
		return 0, ErrThreadNotStarted
	}

	k.metrics.IncSchedulerNextCalls()

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		ret, _, errno := unix.Syscall(sysAtlasNext, 0, 0, 0)
		if errno == unix.EINTR {
			continue
		}

		if errno != 0 {
			return 0, newKernelRejected(fmt.Errorf("atlas_next: %w", errno))
		}

		if ret == 0 {
			continue
		}

		return workitem.JobID(ret), nil
	}
}
