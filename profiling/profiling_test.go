package profiling

import (
	"testing"

	"github.com/zalgonoise/x/is"
)

func TestFromEnvUnset(t *testing.T) {
	t.Setenv(EnvVar, "")

	p, err := FromEnv("atlas-rt-dispatch", nil)
	is.Empty(t, err)
	is.Equal(t, NoOp(), p)
}

func TestNoOpStop(t *testing.T) {
	is.Empty(t, NoOp().Stop())
}
