package nav

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaltyCap/asgc-avc/internal/hw/simhw"
	"github.com/SaltyCap/asgc-avc/internal/motion"
	"github.com/SaltyCap/asgc-avc/internal/odometry"
)

func newTestWheel(t *testing.T) *Wheel {
	t.Helper()
	m, err := motion.NewMotor(simhw.NewChannel())
	require.NoError(t, err)
	return NewWheel(odometry.NewEncoderTracker(), m)
}

// simDrive feeds raw to a wheel's tracker as its next absolute angle
// reading, as if the motor had moved the wheel there, to stand in for
// closing the hardware loop in tests that drive NavigationController.
func simDrive(w *Wheel, raw int16) {
	w.UpdateFromSample(raw)
}

// TestController_TurnBeforeDrive exercises law L5: with heading 0 and
// target at (0, 10), the first programmed segment is a TURN of +90.
func TestController_TurnBeforeDrive(t *testing.T) {
	pose := &odometry.Pose{}
	left, right := newTestWheel(t), newTestWheel(t)
	left.Tracker.Update(0, 0)
	right.Tracker.Update(0, 0)

	ctrl := NewController(pose, left, right)
	ctrl.Goto(0, 10)

	result := ctrl.Tick(time.Now(), 0)
	assert.True(t, result.Transitioned)
	assert.Equal(t, TURNING, ctrl.State())
	assert.InDelta(t, 90.0, ctrl.targetHeading, 1e-6)
}

// TestController_E1_NoTurnWhenAlreadyAligned mirrors end-to-end
// scenario E1: Pose=(0,15,90), goto 0 20 should skip straight to a
// DRIVING segment (heading_diff ~ 0).
func TestController_E1_NoTurnWhenAlreadyAligned(t *testing.T) {
	pose := &odometry.Pose{X: 0, Y: 15, Heading: 90}
	left, right := newTestWheel(t), newTestWheel(t)
	left.Tracker.Update(0, 0)
	right.Tracker.Update(0, 0)

	ctrl := NewController(pose, left, right)
	ctrl.Goto(0, 20)

	result := ctrl.Tick(time.Now(), 0)
	assert.True(t, result.Transitioned)
	assert.Equal(t, DRIVING, ctrl.State())
}

// TestController_E6_SetposReorientsTurnDirection mirrors scenario E6:
// after setpos 5 5 180, goto 5 10 first turns -90 (not +270).
func TestController_E6_SetposReorientsTurnDirection(t *testing.T) {
	pose := &odometry.Pose{}
	left, right := newTestWheel(t), newTestWheel(t)
	left.Tracker.Update(0, 0)
	right.Tracker.Update(0, 0)

	ctrl := NewController(pose, left, right)
	ctrl.SetPos(5, 5, 180)
	ctrl.Goto(5, 10)

	ctrl.Tick(time.Now(), 0)
	assert.Equal(t, TURNING, ctrl.State())
	assert.InDelta(t, -90.0, odometry.WrapPM180(ctrl.targetHeading-180), 1e-6)
}

func TestController_ArrivesWithinTolerance(t *testing.T) {
	pose := &odometry.Pose{X: 0, Y: 0, Heading: 0}
	left, right := newTestWheel(t), newTestWheel(t)
	left.Tracker.Update(0, 0)
	right.Tracker.Update(0, 0)

	ctrl := NewController(pose, left, right)
	ctrl.Goto(0.5, 0)

	result := ctrl.Tick(time.Now(), 0)
	assert.True(t, result.Arrived)
	assert.Equal(t, IDLE, ctrl.State())
}

func TestController_SegmentCompletesWhenWithinStopThreshold(t *testing.T) {
	pose := &odometry.Pose{}
	left, right := newTestWheel(t), newTestWheel(t)
	left.Tracker.Update(0, 0)
	right.Tracker.Update(0, 0)

	ctrl := NewController(pose, left, right)
	left.StartSegment(100)
	right.StartSegment(100)
	ctrl.mu.Lock()
	ctrl.state = DRIVING
	ctrl.mu.Unlock()

	simDrive(left, 90) // error = 10, within STOP_THRESHOLD(50)
	simDrive(right, 90)

	result := ctrl.Tick(time.Now(), 0)
	assert.True(t, result.Transitioned)
	assert.Equal(t, GOTO, ctrl.State())
	assert.False(t, left.Tracker.HasTarget())
	assert.False(t, right.Tracker.HasTarget())
}

// TestController_StallBoostsCommandedPWM exercises scenario E5: a
// frozen wheel with a large error gets an increasing PWM boost every
// 0.5s without ever aborting the move.
func TestController_StallBoostsCommandedPWM(t *testing.T) {
	pose := &odometry.Pose{}
	left, right := newTestWheel(t), newTestWheel(t)
	left.Tracker.Update(0, 0)
	right.Tracker.Update(0, 0)

	ctrl := NewController(pose, left, right)
	left.StartSegment(1000)
	right.StartSegment(1000)
	ctrl.mu.Lock()
	ctrl.state = DRIVING
	ctrl.mu.Unlock()

	base := time.Now()
	ctrl.Tick(base, 0.0)
	speed1 := math.Abs(left.Motor.CurrentSpeed())

	ctrl.Tick(base, 0.5) // no movement between calls -> stall tick
	speed2 := math.Abs(left.Motor.CurrentSpeed())

	assert.Greater(t, speed2, speed1)
}

func TestController_PulseDisablesTargetsAndStaysIdle(t *testing.T) {
	pose := &odometry.Pose{}
	left, right := newTestWheel(t), newTestWheel(t)
	left.Tracker.Update(0, 0)
	right.Tracker.Update(0, 0)
	left.StartSegment(500)
	right.StartSegment(500)

	ctrl := NewController(pose, left, right)
	ctrl.Pulse(2_000_000, 1_000_000, time.Now())

	assert.Equal(t, IDLE, ctrl.State())
	assert.False(t, left.Tracker.HasTarget())
	assert.False(t, right.Tracker.HasTarget())
	assert.EqualValues(t, motion.ForwardMaxNs, left.Motor.LastPulseNs())
	assert.EqualValues(t, motion.ReverseMaxNs, right.Motor.LastPulseNs())
}

func TestController_SetSpeedMultiplierClamp(t *testing.T) {
	ctrl := NewController(&odometry.Pose{}, newTestWheel(t), newTestWheel(t))
	assert.Equal(t, 1.0, ctrl.SetSpeedMultiplier(5))
	assert.Equal(t, 0.0, ctrl.SetSpeedMultiplier(-5))
	assert.Equal(t, 0.5, ctrl.SetSpeedMultiplier(0.5))
}

func TestController_SetPWMBoundsClampAndSwap(t *testing.T) {
	ctrl := NewController(&odometry.Pose{}, newTestWheel(t), newTestWheel(t))
	min, max := ctrl.SetPWMBounds(90, 30)
	assert.Equal(t, 30, min)
	assert.Equal(t, 90, max)

	min, max = ctrl.SetPWMBounds(0, 200)
	assert.Equal(t, 20, min)
	assert.Equal(t, 100, max)
}
