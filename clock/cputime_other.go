//go:build !linux

package clock

import "time"

// ThreadCPUTime is the non-Linux fallback: there is no portable per-thread
// CPU clock outside of Linux's CLOCK_THREAD_CPUTIME_ID, so this degrades to
// wall-clock elapsed time. Samples fed to the predictor on these platforms
// will include scheduling noise; this is a documented approximation, not a
// silent one.
type ThreadCPUTime struct{}

// Now returns the current wall-clock time as a duration-since-epoch
// approximation of CPU time.
func (ThreadCPUTime) Now() (time.Duration, error) {
	return time.Duration(time.Now().UnixNano()), nil
}

// NewCPUTime returns the platform's thread-CPU-time clock.
func NewCPUTime() CPUTime { return ThreadCPUTime{} }
