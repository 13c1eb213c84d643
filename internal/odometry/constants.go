package odometry

import "math"

// Physical constants, bit-exact per spec §6.
const (
	CountsPerRev        = 4096
	WheelDiameterInches = 5.3
	WheelbaseInches     = 16.0
)

// CountsPerInch and CountsPerFoot derive from the wheel geometry and
// are shared by the rotation tracker, the odometry integrator, and
// internal/nav's turn/drive segment programming.
var (
	CountsPerInch = float64(CountsPerRev) / (math.Pi * WheelDiameterInches)
	CountsPerFoot = 12 * CountsPerInch
)
