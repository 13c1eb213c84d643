package odometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKalmanShadow_PredictIntegratesRate(t *testing.T) {
	k := NewKalmanShadow(0)
	k.Predict(10, 1.0) // 10 dps for 1s
	assert.InDelta(t, 10.0, k.Angle(), 1e-9)
}

func TestKalmanShadow_UpdatePullsTowardMeasurement(t *testing.T) {
	k := NewKalmanShadow(0)
	k.Predict(0, 1.0) // angle stays 0, covariance grows
	before := k.Angle()
	k.Update(5.0)
	assert.Greater(t, k.Angle(), before)
	assert.Less(t, k.Angle(), 5.0)
}

func TestKalmanShadow_ConvergesOverRepeatedUpdates(t *testing.T) {
	k := NewKalmanShadow(0)
	for i := 0; i < 200; i++ {
		k.Predict(0, 0.005)
		k.Update(20.0)
	}
	assert.InDelta(t, 20.0, k.Angle(), 0.5)
}
