//go:build linux

package clock

import (
	"time"

	"golang.org/x/sys/unix"
)

// ThreadCPUTime reads CLOCK_THREAD_CPUTIME_ID, mirroring the original
// runtime's cputime_clock: nanosecond resolution, scoped to the calling OS
// thread only.
type ThreadCPUTime struct{}

// Now returns the calling OS thread's consumed CPU time.
func (ThreadCPUTime) Now() (time.Duration, error) {
	var ts unix.Timespec

	if err := unix.ClockGettime(unix.CLOCK_THREAD_CPUTIME_ID, &ts); err != nil {
		return 0, err
	}

	return time.Duration(ts.Nano()), nil
}

// NewCPUTime returns the platform's thread-CPU-time clock.
func NewCPUTime() CPUTime { return ThreadCPUTime{} }
