//go:build !linux

package kernel

import (
	"runtime"
	"sync/atomic"
)

// nextSimulatedTID hands out distinct thread ids on platforms without a
// gettid(2) equivalent. Only the simulated backend runs here, which only
// needs distinct handles, not real kernel thread identity.
var nextSimulatedTID int32

func lockAndResolveTID() (int32, error) {
	runtime.LockOSThread()

	return atomic.AddInt32(&nextSimulatedTID, 1), nil
}
