package sensors

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Acquisition owns the three device drivers and performs the
// concurrent 3-bus read described in spec §4.1.
type Acquisition struct {
	Left  *EncoderSensor
	Right *EncoderSensor
	IMU   *IMU
}

// NewAcquisition binds the three already-opened device drivers.
func NewAcquisition(left, right *EncoderSensor, imu *IMU) *Acquisition {
	return &Acquisition{Left: left, Right: right, IMU: imu}
}

// ReadAll samples the left encoder, right encoder, and IMU in parallel
// on separate goroutines and joins all three before returning, so
// their combined wait latency does not serialize (spec §4.1). The
// timestamp is captured once, before the fan-out. A sample is Valid
// iff all three sub-reads succeeded; callers drop invalid samples
// (spec §4.1: "skip this control tick").
func (a *Acquisition) ReadAll(ctx context.Context) Sample {
	ts := nowSeconds(time.Now())

	var leftRaw, rightRaw int16
	var gyroZ float64
	var leftOK, rightOK, gyroOK bool

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		leftRaw = a.Left.ReadAngle()
		leftOK = leftRaw >= 0
		return nil
	})
	g.Go(func() error {
		rightRaw = a.Right.ReadAngle()
		rightOK = rightRaw >= 0
		return nil
	})
	g.Go(func() error {
		var ok bool
		gyroZ, ok = a.IMU.ReadGyroZDps()
		gyroOK = ok
		return nil
	})

	// Sub-reads never return an error (failures are encoded as -1 /
	// ok=false) so g.Wait() can't fail; it only joins the goroutines.
	_ = g.Wait()

	return Sample{
		LeftRaw:    leftRaw,
		RightRaw:   rightRaw,
		GyroZDps:   gyroZ,
		TimestampS: ts,
		Valid:      leftOK && rightOK && gyroOK,
	}
}
