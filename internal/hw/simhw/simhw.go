// Package simhw provides in-memory fakes for internal/hw, used by unit
// tests and by cmd/avccore -sim. It plays the same role the teacher's
// MockSerialPort plays for dxl.Driver: a deterministic stand-in for a
// real transport that lets the rest of the system be exercised without
// hardware.
package simhw

import (
	"sync"

	"github.com/SaltyCap/asgc-avc/internal/hw"
)

// Bus is a fake I2CBus backed by a register file. Tests seed Regs
// directly or install a ReadFunc to simulate read failures; after
// Close every operation fails with hw.ErrClosed.
type Bus struct {
	mu   sync.Mutex
	Regs map[byte][]byte

	// ReadFunc, if set, overrides ReadReg entirely (e.g. to simulate a
	// moving angle sensor or a gyro rate that the test controls tick by
	// tick). Returning an error simulates a transient bus failure.
	ReadFunc func(reg byte, n int) ([]byte, error)

	closed bool
}

// NewBus returns an empty simulated bus.
func NewBus() *Bus {
	return &Bus{Regs: make(map[byte][]byte)}
}

func (b *Bus) ReadReg(reg byte, n int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, hw.ErrClosed
	}
	if b.ReadFunc != nil {
		return b.ReadFunc(reg, n)
	}
	data, ok := b.Regs[reg]
	if !ok {
		data = make([]byte, n)
	}
	out := make([]byte, n)
	copy(out, data)
	return out, nil
}

func (b *Bus) WriteReg(reg byte, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return hw.ErrClosed
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	b.Regs[reg] = cp
	return nil
}

func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Channel is a fake PWMChannel that just records the last commanded
// state, for assertions in motion package tests.
type Channel struct {
	mu         sync.Mutex
	PeriodNs   int64
	DutyNs     int64
	Enabled    bool
	closed     bool
}

func NewChannel() *Channel {
	return &Channel{}
}

func (c *Channel) SetPeriod(ns int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return hw.ErrClosed
	}
	c.PeriodNs = ns
	return nil
}

func (c *Channel) SetDutyCycle(ns int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return hw.ErrClosed
	}
	c.DutyNs = ns
	return nil
}

func (c *Channel) Enable() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return hw.ErrClosed
	}
	c.Enabled = true
	return nil
}

func (c *Channel) Disable() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return hw.ErrClosed
	}
	c.Enabled = false
	return nil
}

func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Snapshot returns the channel's current commanded state (thread-safe).
func (c *Channel) Snapshot() (periodNs, dutyNs int64, enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.PeriodNs, c.DutyNs, c.Enabled
}
