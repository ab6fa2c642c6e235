package profiling

import "os"

// FromEnv starts the profiler per ATLAS_PROFILE, returning a NoOp Profiler
// when the variable is unset so callers can unconditionally defer Stop.
func FromEnv(applicationName string, labels map[string]string) (Profiler, error) {
	serverAddress := os.Getenv(EnvVar)
	if serverAddress == "" {
		return NoOp(), nil
	}

	return Start(applicationName, serverAddress, labels)
}
