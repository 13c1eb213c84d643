package odometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeading(t *testing.T) {
	assert.Equal(t, 0.0, NormalizeHeading(360))
	assert.Equal(t, 10.0, NormalizeHeading(370))
	assert.Equal(t, 350.0, NormalizeHeading(-10))
	assert.Equal(t, 0.0, NormalizeHeading(0))
}

func TestWrapPM180(t *testing.T) {
	assert.InDelta(t, -90.0, WrapPM180(270), 1e-9)
	assert.InDelta(t, 90.0, WrapPM180(90), 1e-9)
	assert.InDelta(t, -170.0, WrapPM180(190), 1e-9)
	assert.InDelta(t, 180.0, WrapPM180(-180), 1e-9)
}

func TestPose_SetPos(t *testing.T) {
	p := &Pose{X: 1, Y: 2, Heading: 45, LastLeftTotal: 10, LastRightTotal: 20}
	p.SetPos(5, 5, 370, 100, 200)
	assert.Equal(t, 5.0, p.X)
	assert.Equal(t, 5.0, p.Y)
	assert.Equal(t, 10.0, p.Heading)
	assert.EqualValues(t, 100, p.LastLeftTotal)
	assert.EqualValues(t, 200, p.LastRightTotal)
}
