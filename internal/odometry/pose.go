package odometry

import "math"

// Pose is the process-global position/heading estimate (spec §3). It
// is mutated only by the Odometry-Integrator, except for an explicit
// `setpos` command which also re-baselines LastLeftTotal/LastRightTotal
// under the respective wheel locks.
type Pose struct {
	X, Y    float64 // feet
	Heading float64 // degrees, normalized to [0, 360)

	LastLeftTotal  int64
	LastRightTotal int64
}

// NormalizeHeading wraps deg into [0, 360), maintaining invariant I1.
func NormalizeHeading(deg float64) float64 {
	h := math.Mod(deg, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// WrapPM180 wraps deg into (-180, 180], used for heading-difference
// computations in the navigation state machine (spec §4.5).
func WrapPM180(deg float64) float64 {
	h := math.Mod(deg+180, 360)
	if h <= 0 {
		h += 360
	}
	return h - 180
}

// SetPos forces the pose to the given values (the `setpos` command,
// spec §6) and rebaselines the encoder totals so the next integration
// tick doesn't see a spurious jump.
func (p *Pose) SetPos(x, y, heading float64, leftTotal, rightTotal int64) {
	p.X = x
	p.Y = y
	p.Heading = NormalizeHeading(heading)
	p.LastLeftTotal = leftTotal
	p.LastRightTotal = rightTotal
}
