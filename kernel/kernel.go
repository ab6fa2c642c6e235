// Package kernel is a thin typed wrapper around the EDF scheduler's eight
// primitives: the four per-job syscalls (submit, update, remove, next) and
// the thread-pool quartet (create, destroy, join, submit). It is not a
// scheduler implementation -- the actual deadline-admission control logic
// lives outside this module, either in a real kernel patch (linuxEDF) or is
// approximated in-process for development and non-Linux platforms
// (simulated).
package kernel

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/zalgonoise/cfg"
	"github.com/zalgonoise/x/errs"

	"github.com/atlas-rt/dispatch/workitem"
)

const (
	errDomain = errs.Domain("kernel")

	ErrInvalid  = errs.Kind("invalid")
	ErrUnknown  = errs.Kind("not found")
	ErrNotReady = errs.Kind("not ready")
	ErrRejected = errs.Kind("rejected")

	ErrEntityArgument = errs.Entity("argument")
	ErrEntityJob      = errs.Entity("job")
	ErrEntityThread   = errs.Entity("thread")
	ErrEntityPool     = errs.Entity("pool")
	ErrEntityKernel   = errs.Entity("kernel")
	ErrEntityPolicy   = errs.Entity("policy")
)

var (
	// ErrInvalidArgument is returned for malformed input (negative worker
	// counts, unknown policy attributes, and the like).
	ErrInvalidArgument = errs.WithDomain(errDomain, ErrInvalid, ErrEntityArgument)
	// ErrJobUnknown is returned by Update/Remove when the kernel has no
	// record of the given job id for the given thread.
	ErrJobUnknown = errs.WithDomain(errDomain, ErrUnknown, ErrEntityJob)
	// ErrThreadNotStarted is returned when resolving a ThreadHandle before
	// the owning goroutine has locked its OS thread and recorded an id.
	ErrThreadNotStarted = errs.WithDomain(errDomain, ErrNotReady, ErrEntityThread)
	// ErrPoolUnknown is returned for operations against a PoolHandle the
	// broker has no record of (already destroyed, or never created).
	ErrPoolUnknown = errs.WithDomain(errDomain, ErrUnknown, ErrEntityPool)
)

// KernelRejected wraps a non-zero errno the kernel scheduler returned from
// one of the four per-job syscalls.
type KernelRejected struct {
	Errno error
}

func (e KernelRejected) Error() string {
	return "kernel rejected request: " + e.Errno.Error()
}

func (e KernelRejected) Unwrap() error { return e.Errno }

// newKernelRejected builds a KernelRejected wrapping errno, tagged with
// errs.WithDomain so callers can still errors.Is against the kernel domain.
func newKernelRejected(errno error) error {
	return errs.Join(errs.WithDomain(errDomain, ErrRejected, ErrEntityKernel), KernelRejected{Errno: errno})
}

// PoolHandle identifies a thread pool created by PoolCreate. It is opaque
// to callers; construct PoolHandle values only via PoolCreate.
type PoolHandle uint64

// Scheduler is the typed surface over the EDF kernel's eight primitives.
//
// Submit, Update and Remove operate on a specific ThreadHandle's private
// admission queue. Next blocks the calling goroutine -- which must be the
// one that owns thread, i.e. have called LockThread and be running on the
// OS thread thread was resolved from -- until the kernel (or its in-process
// simulation) admits a job for that thread, internally retrying on
// interruption exactly as the original syscall wrapper's next() loop does.
//
// PoolCreate/PoolJoin/PoolDestroy/PoolSubmit implement the thread-pool
// quartet: workers join a pool to become eligible recipients of
// PoolSubmit'd jobs; the broker picks a member and performs the equivalent
// of Submit on the caller's behalf.
type Scheduler interface {
	Submit(ctx context.Context, thread ThreadHandle, id workitem.JobID, exec time.Duration, deadline time.Time) error
	Update(ctx context.Context, thread ThreadHandle, id workitem.JobID, exec *time.Duration, deadline *time.Time) error
	Remove(ctx context.Context, thread ThreadHandle, id workitem.JobID) error
	Next(ctx context.Context, thread ThreadHandle) (workitem.JobID, error)

	PoolCreate(workers int) (PoolHandle, error)
	PoolDestroy(pool PoolHandle) error
	PoolJoin(pool PoolHandle) (ThreadHandle, error)
	PoolSubmit(ctx context.Context, pool PoolHandle, id workitem.JobID, exec time.Duration, deadline time.Time) error
}

// Metrics describes the actions that register Scheduler-related metrics.
type Metrics interface {
	IncSchedulerSubmitCalls()
	IncSchedulerNextCalls()
	IncSchedulerRejections()
	IncDeadlineMiss()
}

// BackendEnvVar names the environment variable selecting the kernel
// backend: "ATLAS" (default, the real syscalls on Linux), "NONE" (force the
// in-process simulation), or "GCD" (accepted for compatibility with the
// original's comparison backend, but resolves to the simulation with a
// logged warning.
const BackendEnvVar = "ATLAS_BACKEND"

// New creates a Scheduler, selecting a backend from ATLAS_BACKEND (or
// config.backend, which takes precedence) and falling back to the
// in-process simulation whenever the real backend is unavailable.
func New(options ...cfg.Option[*Config]) (Scheduler, error) {
	config := cfg.Set(defaultConfig(), options...)

	logger := slog.New(config.handler)

	backend := config.backend
	if backend == "" {
		backend = os.Getenv(BackendEnvVar)
	}

	switch backend {
	case "", "ATLAS":
		if runtime.GOOS == "linux" {
			sched, err := newLinuxEDF(config)
			if err == nil {
				return sched, nil
			}

			logger.Warn("linux EDF backend unavailable, falling back to simulated backend", "error", err)
		} else {
			logger.Warn("non-linux platform, falling back to simulated backend")
		}
	case "GCD":
		logger.Warn("GCD backend is not implemented, falling back to simulated backend")
	case "NONE":
		// explicit opt-in to the simulation, no warning needed.
	default:
		logger.Warn("unknown ATLAS_BACKEND value, falling back to simulated backend", "backend", backend)
	}

	return newSimulated(config), nil
}

// NoOp returns a Scheduler whose methods are no-ops, useful as a default
// placeholder.
func NoOp() Scheduler { return noOpScheduler{} }

type noOpScheduler struct{}

func (noOpScheduler) Submit(context.Context, ThreadHandle, workitem.JobID, time.Duration, time.Time) error {
	return nil
}

func (noOpScheduler) Update(context.Context, ThreadHandle, workitem.JobID, *time.Duration, *time.Time) error {
	return nil
}

func (noOpScheduler) Remove(context.Context, ThreadHandle, workitem.JobID) error { return nil }

func (noOpScheduler) Next(context.Context, ThreadHandle) (workitem.JobID, error) {
	return 0, nil
}

func (noOpScheduler) PoolCreate(int) (PoolHandle, error)         { return 0, nil }
func (noOpScheduler) PoolDestroy(PoolHandle) error               { return nil }
func (noOpScheduler) PoolJoin(PoolHandle) (ThreadHandle, error)  { return ThreadHandle{}, nil }
func (noOpScheduler) PoolSubmit(context.Context, PoolHandle, workitem.JobID, time.Duration, time.Time) error {
	return nil
}
