// Package profiling is an optional continuous-profiling hook: a thin
// wrapper over pyroscope-go, standing in for hardware-performance-counter
// logging (context switches, cache misses) that has no Go-reachable
// equivalent. A software sampling profiler is the closest substitute.
package profiling

import (
	"github.com/grafana/pyroscope-go"
)

// EnvVar names the environment variable enabling this hook: if set, its
// value is used as the Pyroscope server address.
const EnvVar = "ATLAS_PROFILE"

// Profiler stops the background profiler started by Start.
type Profiler interface {
	Stop() error
}

// Start launches continuous CPU and allocation profiling tagged with
// labels (typically the executor id and job type), pushing samples to
// serverAddress. Call Stop on the returned Profiler during shutdown.
func Start(applicationName, serverAddress string, labels map[string]string) (Profiler, error) {
	tags := make(map[string]string, len(labels))
	for k, v := range labels {
		tags[k] = v
	}

	return pyroscope.Start(pyroscope.Config{
		ApplicationName: applicationName,
		ServerAddress:   serverAddress,
		Tags:            tags,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
}

// NoOp returns a Profiler whose Stop has no effect, used when ATLAS_PROFILE
// is unset.
func NoOp() Profiler { return noOpProfiler{} }

type noOpProfiler struct{}

func (noOpProfiler) Stop() error { return nil }
