//go:build !linux

package main

import (
	"fmt"

	"github.com/SaltyCap/asgc-avc/internal/config"
	"github.com/SaltyCap/asgc-avc/internal/robot"
)

// openDevicesSysfs has no implementation outside Linux; the sysfs/ioctl
// hardware boundary (spec §1, §6) is Linux-only. Non-Linux builds must
// pass -sim.
func openDevicesSysfs(cfg config.Config) (robot.Devices, error) {
	return robot.Devices{}, fmt.Errorf("sysfs hardware backend is only available on linux; run with -sim")
}
