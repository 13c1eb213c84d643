//go:build linux

// Package sysfs is the real, Linux-only implementation of internal/hw:
// I2C transactions over periph.io/x/conn, PWM channels over the sysfs
// pwmchip interface. This is the external-collaborator layer named out
// of scope by the core spec (§1) — it exists only so the rest of the
// system has something concrete to run against on real hardware; none
// of the control, odometry or navigation logic lives here.
package sysfs

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Bus implements hw.I2CBus for a single device address on a named
// Linux I2C bus (e.g. "/dev/i2c-1").
type Bus struct {
	dev  *i2c.Dev
	conn i2c.BusCloser
}

var hostInitialized bool

// OpenBus opens busName and binds address as the slave for all
// subsequent transactions.
func OpenBus(busName string, address uint16) (*Bus, error) {
	if !hostInitialized {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("sysfs: periph host init: %w", err)
		}
		hostInitialized = true
	}

	conn, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("sysfs: open i2c bus %s: %w", busName, err)
	}

	return &Bus{
		dev:  &i2c.Dev{Bus: conn, Addr: address},
		conn: conn,
	}, nil
}

func (b *Bus) ReadReg(reg byte, n int) ([]byte, error) {
	out := make([]byte, n)
	if err := b.dev.Tx([]byte{reg}, out); err != nil {
		return nil, fmt.Errorf("sysfs: i2c read reg 0x%02x: %w", reg, err)
	}
	return out, nil
}

func (b *Bus) WriteReg(reg byte, data []byte) error {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, reg)
	buf = append(buf, data...)
	if err := b.dev.Tx(buf, nil); err != nil {
		return fmt.Errorf("sysfs: i2c write reg 0x%02x: %w", reg, err)
	}
	return nil
}

func (b *Bus) Close() error {
	return b.conn.Close()
}
