package kernel

import (
	"fmt"
	"os"
)

// policyAttrs is the closed set of procfs knobs the original kernel patch
// exposes under /proc/sys/kernel/sched_atlas_<attr>.
var policyAttrs = map[string]bool{
	"min_slack":      true,
	"preroll":        true,
	"job_stealing":   true,
	"overload_push":  true,
	"wakeup_balance": true,
}

// SetPolicy writes "1" or "0" to /proc/sys/kernel/sched_atlas_<attr>,
// toggling one of the kernel scheduler's ambient policy knobs. attr must be
// one of the closed set of names the original kernel patch exposes.
func SetPolicy(attr string, enabled bool) error {
	if !policyAttrs[attr] {
		return ErrInvalidArgument
	}

	value := "0"
	if enabled {
		value = "1"
	}

	path := fmt.Sprintf("/proc/sys/kernel/sched_atlas_%s", attr)

	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("writing policy %q: %w", path, err)
	}

	return nil
}
