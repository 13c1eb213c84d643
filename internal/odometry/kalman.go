package odometry

import "gonum.org/v1/gonum/mat"

// Kalman-filter tuning constants named in spec §4.4.
const (
	qAngle   = 0.001
	qBias    = 0.003
	rMeasure = 0.03
)

// KalmanShadow is the "complementary / Kalman filter" state the spec
// says may be carried alongside the authoritative gyro-integration
// estimate (§4.4, §9): angle and gyro bias with a 2x2 error covariance.
// It is fed the same inputs as the authoritative Pose update on every
// tick so it "shadows" Pose.Heading, but its output is never read back
// into Pose — only exposed for diagnostics via Angle() — so it can be
// promoted to authoritative later without a position jump.
//
// The covariance bookkeeping uses gonum/mat rather than four bare
// float64s so the predict/update step reads as the textbook 2x2
// matrix recurrence it implements.
type KalmanShadow struct {
	angle float64
	bias  float64
	p     *mat.Dense // 2x2 error covariance
}

// NewKalmanShadow seeds the filter at the given initial heading with
// zero bias and zero covariance (the conventional start state).
func NewKalmanShadow(initialAngle float64) *KalmanShadow {
	return &KalmanShadow{
		angle: initialAngle,
		bias:  0,
		p:     mat.NewDense(2, 2, nil),
	}
}

// Predict advances the filter by dt seconds given the current gyro
// rate in degrees/second.
func (k *KalmanShadow) Predict(rateDps, dt float64) {
	rate := rateDps - k.bias
	k.angle += dt * rate

	p00, p01 := k.p.At(0, 0), k.p.At(0, 1)
	p10, p11 := k.p.At(1, 0), k.p.At(1, 1)

	p00 += dt * (dt*p11 - p01 - p10 + qAngle)
	p01 -= dt * p11
	p10 -= dt * p11
	p11 += qBias * dt

	k.p.Set(0, 0, p00)
	k.p.Set(0, 1, p01)
	k.p.Set(1, 0, p10)
	k.p.Set(1, 1, p11)
}

// Update corrects the filter against an angle measurement. The
// integrator passes the authoritative Pose.Heading.
func (k *KalmanShadow) Update(measuredAngle float64) {
	p00, p01 := k.p.At(0, 0), k.p.At(0, 1)
	p10, p11 := k.p.At(1, 0), k.p.At(1, 1)

	s := p00 + rMeasure
	k0 := p00 / s
	k1 := p10 / s

	y := measuredAngle - k.angle
	k.angle += k0 * y
	k.bias += k1 * y

	k.p.Set(0, 0, p00-k0*p00)
	k.p.Set(0, 1, p01-k0*p01)
	k.p.Set(1, 0, p10-k1*p00)
	k.p.Set(1, 1, p11-k1*p01)
}

// Angle returns the filter's current shadow heading estimate.
func (k *KalmanShadow) Angle() float64 { return k.angle }

// Bias returns the filter's current gyro-bias estimate.
func (k *KalmanShadow) Bias() float64 { return k.bias }
