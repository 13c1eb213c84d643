// Package odometry implements the quadrature-less rotation tracker
// (spec §4.3), the Pose record, and the gyro/encoder fusion integrator
// (spec §4.4), plus the inert Kalman-shadow filter described there.
package odometry

// EncoderTracker turns a monotonic 0..4095 absolute-angle reading into
// signed multi-turn position using a motor-direction hint supplied by
// the caller (derived from commanded pulse width — see
// internal/motion.Motor.State). All fields are only ever touched while
// the owning wheel's lock is held (spec §5); EncoderTracker itself does
// no locking.
type EncoderTracker struct {
	currentRawAngle int16
	lastRawAngle    int16
	startRawAngle   int16
	initialized     bool

	rotationCount  int64
	motorState     int8
	lastMotorState int8
	// hysteresisUsed guards the one-tick coast window used to resolve
	// the "motor_state = 0 but the wheel coasts" open question (spec
	// §9): for exactly one tick after a transition to neutral, boundary
	// crossings are still evaluated using the direction the wheel was
	// last commanded in.
	hysteresisUsed bool

	totalCounts int64

	moveStartCounts int64
	targetCounts    int64
	hasTarget       bool

	stallLastPosition int64
	stallCheckTime    float64
	stallCount        int
}

// NewEncoderTracker returns a tracker with no raw-angle baseline yet;
// the first call to Update establishes it.
func NewEncoderTracker() *EncoderTracker {
	return &EncoderTracker{}
}

// Update applies one valid raw-angle reading for this wheel, using
// motorState (-1/0/+1, see spec §4.3) to resolve the direction of any
// 0/4095 boundary crossing.
func (t *EncoderTracker) Update(raw int16, motorState int8) {
	if !t.initialized {
		t.lastRawAngle = raw
		t.currentRawAngle = raw
		t.startRawAngle = raw
		t.initialized = true
		t.motorState = motorState
		t.lastMotorState = motorState
		return
	}

	t.lastMotorState, t.motorState = t.motorState, motorState

	effState := motorState
	if motorState != 0 {
		t.hysteresisUsed = false
	} else if t.lastMotorState != 0 && !t.hysteresisUsed {
		effState = t.lastMotorState
		t.hysteresisUsed = true
	}

	switch {
	case effState == 1 && t.lastRawAngle > 3000 && raw < 1000:
		t.rotationCount++
	case effState == -1 && t.lastRawAngle < 1000 && raw > 3000:
		t.rotationCount--
	}

	t.lastRawAngle = raw
	t.currentRawAngle = raw
	t.totalCounts = t.rotationCount*CountsPerRev + int64(raw-t.startRawAngle)
}

// TotalCounts returns the derived multi-turn position.
func (t *EncoderTracker) TotalCounts() int64 { return t.totalCounts }

// RotationCount returns the signed total-turn counter (spec I4).
func (t *EncoderTracker) RotationCount() int64 { return t.rotationCount }

// CurrentRawAngle returns the most recent raw reading.
func (t *EncoderTracker) CurrentRawAngle() int16 { return t.currentRawAngle }

// StartSegment programs a new TURN or DRIVE segment: snapshots the
// current total as move_start_counts, sets target_counts, clears stall
// state, and marks has_target (spec §4.5.1/§4.5.2).
func (t *EncoderTracker) StartSegment(targetCounts int64) {
	t.moveStartCounts = t.totalCounts
	t.targetCounts = targetCounts
	t.hasTarget = true
	t.stallCount = 0
	t.stallLastPosition = 0
	// A negative check time means the stall window has not started yet;
	// the segment's first StallCheck starts it.
	t.stallCheckTime = -1
}

// ClearTarget marks the segment complete for this wheel (spec I3: the
// caller must also command the motor to neutral on the same tick).
func (t *EncoderTracker) ClearTarget() {
	t.hasTarget = false
	t.stallCount = 0
}

// HasTarget reports whether a segment is active for this wheel.
func (t *EncoderTracker) HasTarget() bool { return t.hasTarget }

// RelativeCounts returns counts traveled since the segment began.
func (t *EncoderTracker) RelativeCounts() int64 {
	return t.totalCounts - t.moveStartCounts
}

// Error returns the signed counts remaining in the current segment.
func (t *EncoderTracker) Error() int64 {
	return t.targetCounts - t.RelativeCounts()
}

// StallCheck implements the 0.5s stall sampling window from spec
// §4.5.3: if the wheel hasn't moved more than 20 counts while the
// segment error still exceeds 100 counts, the stall counter grows.
// now is seconds (monotonic-ish; the caller supplies wall-clock time).
func (t *EncoderTracker) StallCheck(now float64) {
	const stallCheckPeriodS = 0.5
	const stallPositionThreshold = 20
	const stallErrorThreshold = 100

	if t.stallCheckTime < 0 {
		t.stallCheckTime = now
		return
	}
	if now-t.stallCheckTime < stallCheckPeriodS {
		return
	}

	relative := t.RelativeCounts()
	delta := relative - t.stallLastPosition
	if delta < 0 {
		delta = -delta
	}

	errAbs := t.Error()
	if errAbs < 0 {
		errAbs = -errAbs
	}

	if delta < stallPositionThreshold && errAbs > stallErrorThreshold {
		t.stallCount++
	} else {
		t.stallCount = 0
	}

	t.stallLastPosition = relative
	t.stallCheckTime = now
}

// StallCount returns the current stall counter.
func (t *EncoderTracker) StallCount() int { return t.stallCount }
