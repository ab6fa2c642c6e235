//go:build linux

package kernel

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// lockAndResolveTID locks the calling goroutine to its OS thread and
// returns its kernel thread id via gettid(2), the same identity the real
// EDF syscalls key their per-thread admission queues on.
func lockAndResolveTID() (int32, error) {
	runtime.LockOSThread()

	return int32(unix.Gettid()), nil
}
