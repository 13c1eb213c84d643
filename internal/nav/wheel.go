// Package nav implements the Navigation-Controller state machine (spec
// §4.5): turn/drive segment programming, bang-bang control with
// stall-boost, and the per-wheel lock that guards each Motor and its
// paired EncoderTracker (spec §5).
package nav

import (
	"sync"
	"time"

	"github.com/SaltyCap/asgc-avc/internal/motion"
	"github.com/SaltyCap/asgc-avc/internal/odometry"
)

// Wheel bundles one Motor with its paired EncoderTracker behind a
// single lock, per spec §5's "each Motor and its paired EncoderTracker
// share a lock" ownership rule. NavigationController never holds more
// than one Wheel lock at a time except during setpos, which always
// takes wheel 0 then wheel 1 (spec §9 open-question decision).
type Wheel struct {
	mu      sync.Mutex
	Tracker *odometry.EncoderTracker
	Motor   *motion.Motor
}

// NewWheel pairs a tracker with its motor.
func NewWheel(tracker *odometry.EncoderTracker, motor *motion.Motor) *Wheel {
	return &Wheel{Tracker: tracker, Motor: motor}
}

// Lock acquires the wheel's lock. Callers must Unlock.
func (w *Wheel) Lock() { w.mu.Lock() }

// Unlock releases the wheel's lock.
func (w *Wheel) Unlock() { w.mu.Unlock() }

// UpdateFromSample feeds one valid raw-angle reading into the tracker
// using this wheel's own current motor_state, under the wheel lock.
// Called from the feedback thread (T_feedback).
func (w *Wheel) UpdateFromSample(raw int16) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Tracker.Update(raw, w.Motor.State())
}

// segmentTick implements spec §4.5.3 for this wheel and returns true
// once the segment has completed (has_target cleared this call).
func (w *Wheel) segmentTick(maxPWM int, now time.Time, nowS float64) (done bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	const stopThreshold = 50
	const deadbandThreshold = 50

	errCounts := w.Tracker.Error()
	absErr := errCounts
	if absErr < 0 {
		absErr = -absErr
	}

	switch {
	case absErr < stopThreshold:
		w.Motor.SetSpeed(0, true, now)
		w.Tracker.ClearTarget()
		return true
	case absErr < deadbandThreshold && w.Tracker.StallCount() == 0:
		w.Motor.SetSpeed(0, true, now)
		w.Tracker.ClearTarget()
		return true
	}

	w.Tracker.StallCheck(nowS)

	pwm := maxPWM
	if errCounts < 0 {
		pwm = -pwm
	}
	boost := w.Tracker.StallCount() * 10
	if pwm >= 0 {
		pwm += boost
	} else {
		pwm -= boost
	}
	if pwm > 100 {
		pwm = 100
	}
	if pwm < -100 {
		pwm = -100
	}

	w.Motor.SetSpeed(float64(pwm), true, now)
	return false
}

// Stop commands neutral immediately and clears any active segment,
// used by the `stop` command and by shutdown (spec §4.5).
func (w *Wheel) Stop(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Motor.SetSpeed(0, true, now)
	w.Tracker.ClearTarget()
}

// StartSegment programs this wheel's target under its lock.
func (w *Wheel) StartSegment(targetCounts int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Tracker.StartSegment(targetCounts)
}

// TotalCounts returns the wheel's current total counts under lock.
func (w *Wheel) TotalCounts() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Tracker.TotalCounts()
}
