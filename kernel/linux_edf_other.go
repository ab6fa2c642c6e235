//go:build !linux

package kernel

import "errors"

var errLinuxOnly = errors.New("linux EDF backend is only available on linux")

func newLinuxEDF(*Config) (Scheduler, error) {
	return nil, errLinuxOnly
}
