package sensors

import (
	"fmt"
	"time"
)

const (
	gyroSettleDelay  = 500 * time.Millisecond
	gyroWarmupReads  = 200
	gyroWarmupPeriod = 5 * time.Millisecond // 200 Hz
)

// sleepFn is overridden by tests to avoid the real ~1-4s calibration
// delay while still exercising every loop iteration.
var sleepFn = time.Sleep

// CalibrateGyroZ runs the boot sequence from spec §4.2: settle, discard
// warmup readings, then average n consecutive readings with the
// device's offset temporarily zeroed. The caller is responsible for
// treating a non-nil error as non-fatal (continue with gyro_z forced to
// zero), per spec §7.
func CalibrateGyroZ(m *IMU, n int) (float64, error) {
	if err := m.Init(); err != nil {
		return 0, fmt.Errorf("imu calibration: init failed: %w", err)
	}

	sleepFn(gyroSettleDelay)

	m.SetOffset(0)

	for i := 0; i < gyroWarmupReads; i++ {
		if _, ok := m.rawDps(); !ok {
			return 0, fmt.Errorf("imu calibration: warmup read %d failed", i)
		}
		sleepFn(gyroWarmupPeriod)
	}

	var sum float64
	for i := 0; i < n; i++ {
		dps, ok := m.rawDps()
		if !ok {
			return 0, fmt.Errorf("imu calibration: sample %d failed", i)
		}
		sum += dps
		sleepFn(gyroWarmupPeriod)
	}

	offset := sum / float64(n)
	m.SetOffset(offset)
	return offset, nil
}
