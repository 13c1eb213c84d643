// Package motion implements the PWM-Actuator (spec §4.6): the
// speed-percent-to-pulse-width mapping, the ramp-rate limiter, and the
// motor_state hint consumed by internal/odometry's rotation tracker.
package motion

import (
	"time"

	"github.com/SaltyCap/asgc-avc/internal/hw"
)

// PWM and physical timing constants, bit-exact per spec §6.
const (
	PeriodNs       = 2_500_000
	NeutralNs      = 1_500_000
	ForwardMaxNs   = 2_000_000
	ReverseMaxNs   = 1_000_000
	ForwardStartNs = 1_500_000
	ReverseStartNs = 1_500_000
	RampNsPerSec   = 166_667

	// neutralHysteresisNs is the ±10us deadband around NeutralNs used to
	// derive motor_state (spec §4.3).
	neutralHysteresisNs = 10_000
)

// Motor drives a single ESC through a hw.PWMChannel and tracks the
// fields spec §3 assigns it: last_pulse_ns, last_speed_update_time,
// current_speed. All fields are only ever touched while the owning
// wheel's lock (internal/nav.Wheel) is held; Motor itself does no
// locking.
type Motor struct {
	ch hw.PWMChannel

	lastPulseNs        int64
	lastSpeedUpdateSet bool
	lastSpeedUpdate    time.Time
	currentSpeed       float64
}

// NewMotor wires a Motor to its PWM channel, sets the channel's fixed
// period, and commands neutral before enabling output — this mirrors
// the teacher's pattern of never letting an ESC see an unconfigured
// duty cycle the instant it's armed.
func NewMotor(ch hw.PWMChannel) (*Motor, error) {
	if err := ch.SetPeriod(PeriodNs); err != nil {
		return nil, err
	}
	if err := ch.SetDutyCycle(NeutralNs); err != nil {
		return nil, err
	}
	if err := ch.Enable(); err != nil {
		return nil, err
	}
	return &Motor{ch: ch, lastPulseNs: NeutralNs, currentSpeed: 0}, nil
}

// clampPulse enforces invariant I2.
func clampPulse(ns int64) int64 {
	if ns < ReverseMaxNs {
		return ReverseMaxNs
	}
	if ns > ForwardMaxNs {
		return ForwardMaxNs
	}
	return ns
}

// speedToPulseNs implements the mapping in spec §4.6.
func speedToPulseNs(speedPercent float64) int64 {
	switch {
	case speedPercent > 0:
		return ForwardStartNs + int64(speedPercent*(ForwardMaxNs-ForwardStartNs)/100)
	case speedPercent < 0:
		return ReverseStartNs - int64(-speedPercent*(ReverseStartNs-ReverseMaxNs)/100)
	default:
		return NeutralNs
	}
}

// SetSpeed implements the PWM-Actuator contract (spec §4.6). speedPercent
// is clamped to [-100, 100] by the caller's intent but mapping already
// saturates at the pulse-width bounds regardless. now is the caller's
// wall-clock time for this command, used to compute the ramp budget;
// callers pass time.Now() in production and a fake clock in tests.
func (m *Motor) SetSpeed(speedPercent float64, immediate bool, now time.Time) error {
	m.currentSpeed = speedPercent
	target := clampPulse(speedToPulseNs(speedPercent))

	pulse := target
	if !immediate && m.lastSpeedUpdateSet {
		dt := now.Sub(m.lastSpeedUpdate).Seconds()
		if dt < 0 {
			dt = 0
		}
		maxDelta := int64(RampNsPerSec * dt)
		delta := target - m.lastPulseNs
		if delta > maxDelta {
			delta = maxDelta
		} else if delta < -maxDelta {
			delta = -maxDelta
		}
		pulse = clampPulse(m.lastPulseNs + delta)
	}

	if err := m.ch.SetDutyCycle(pulse); err != nil {
		return err
	}

	m.lastPulseNs = pulse
	m.lastSpeedUpdate = now
	m.lastSpeedUpdateSet = true
	return nil
}

// SetPulseNs commands a raw pulse width directly, clamped to
// [ReverseMaxNs, ForwardMaxNs], bypassing the speed-percent mapping
// and the ramp limiter. Used by the `pulse` command (spec §6).
func (m *Motor) SetPulseNs(ns int64, now time.Time) error {
	pulse := clampPulse(ns)
	if err := m.ch.SetDutyCycle(pulse); err != nil {
		return err
	}
	m.lastPulseNs = pulse
	m.lastSpeedUpdate = now
	m.lastSpeedUpdateSet = true
	m.currentSpeed = 0
	return nil
}

// LastPulseNs returns the most recently commanded pulse width.
func (m *Motor) LastPulseNs() int64 { return m.lastPulseNs }

// CurrentSpeed returns the last requested speed percentage.
func (m *Motor) CurrentSpeed() float64 { return m.currentSpeed }

// State derives motor_state ∈ {-1, 0, +1} from the last commanded
// pulse width using the ±10us hysteresis window around NeutralNs (spec
// §4.3), for consumption by the paired EncoderTracker.
func (m *Motor) State() int8 {
	switch {
	case m.lastPulseNs > NeutralNs+neutralHysteresisNs:
		return 1
	case m.lastPulseNs < NeutralNs-neutralHysteresisNs:
		return -1
	default:
		return 0
	}
}

// Disable commands neutral and turns the channel off, used during
// shutdown (spec §5).
func (m *Motor) Disable() error {
	if err := m.ch.SetDutyCycle(NeutralNs); err != nil {
		return err
	}
	return m.ch.Disable()
}
