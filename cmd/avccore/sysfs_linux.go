//go:build linux

package main

import (
	"fmt"

	"github.com/SaltyCap/asgc-avc/internal/config"
	"github.com/SaltyCap/asgc-avc/internal/hw/sysfs"
	"github.com/SaltyCap/asgc-avc/internal/robot"
)

// openDevicesSysfs opens the real Linux I2C/PWM hardware described in
// cfg (spec §6: /dev/i2c-<n>, /sys/class/pwm/pwmchip<N>/pwm<chan>).
func openDevicesSysfs(cfg config.Config) (robot.Devices, error) {
	leftBus, err := sysfs.OpenBus(cfg.Buses.LeftEncoder.Path, cfg.Buses.LeftEncoder.Address)
	if err != nil {
		return robot.Devices{}, fmt.Errorf("open left encoder bus: %w", err)
	}
	rightBus, err := sysfs.OpenBus(cfg.Buses.RightEncoder.Path, cfg.Buses.RightEncoder.Address)
	if err != nil {
		return robot.Devices{}, fmt.Errorf("open right encoder bus: %w", err)
	}
	imuBus, err := sysfs.OpenBus(cfg.Buses.IMU.Path, cfg.Buses.IMU.Address)
	if err != nil {
		return robot.Devices{}, fmt.Errorf("open imu bus: %w", err)
	}
	leftPWM, err := sysfs.OpenChannel(cfg.PWM.Chip, cfg.PWM.LeftChannel)
	if err != nil {
		return robot.Devices{}, fmt.Errorf("open left pwm channel: %w", err)
	}
	rightPWM, err := sysfs.OpenChannel(cfg.PWM.Chip, cfg.PWM.RightChannel)
	if err != nil {
		return robot.Devices{}, fmt.Errorf("open right pwm channel: %w", err)
	}

	return robot.Devices{
		LeftEncoderBus:  leftBus,
		RightEncoderBus: rightBus,
		IMUBus:          imuBus,
		LeftPWM:         leftPWM,
		RightPWM:        rightPWM,
	}, nil
}
