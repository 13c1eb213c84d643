// Package sensors implements the Sensor-Acquisition component (spec
// §4.1/§4.2): a concurrent 3-bus read of the left/right wheel encoders
// and the IMU gyroscope, fanned out the way
// Sioux-Steel-Solutions-raptor-core reads three VFDs in parallel, with
// errgroup joining the three reads. A failed read is recorded in the
// sample's validity and does not cancel the other two reads.
package sensors

import "time"

// Sample is one logical instant of sensor data. Timestamp is captured
// once before the three sub-reads fan out, so it reflects a single
// instant regardless of how long each transaction takes.
type Sample struct {
	LeftRaw     int16
	RightRaw    int16
	GyroZDps    float64
	TimestampS  float64
	Valid       bool
}

func nowSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
