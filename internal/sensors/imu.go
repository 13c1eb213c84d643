package sensors

import (
	"fmt"

	"github.com/SaltyCap/asgc-avc/internal/hw"
)

// MPU-6050-class register map (spec §4.1).
const (
	regPwrMgmt1  = 0x6B
	regSmplrtDiv = 0x19
	regConfig    = 0x1A
	regGyroCfg   = 0x1B
	regGyroZOutH = 0x47

	sampleRateDivider = 7
	dlpfConfig        = 3
	gyroFullScale250  = 0x00 // FS_SEL = 0 -> +/-250 dps
	gyroSensitivityLSB = 131.0
)

// IMU reads the Z-axis gyroscope rate off an MPU-6050-class device.
type IMU struct {
	bus    hw.I2CBus
	offset float64
}

// NewIMU binds an IMU driver to an already-addressed bus.
func NewIMU(bus hw.I2CBus) *IMU {
	return &IMU{bus: bus}
}

// Init wakes the device from sleep and programs the sample-rate
// divider, DLPF, and gyro full-scale range per spec §4.1.
func (m *IMU) Init() error {
	if err := m.bus.WriteReg(regPwrMgmt1, []byte{0x00}); err != nil {
		return fmt.Errorf("imu: wake from sleep: %w", err)
	}
	if err := m.bus.WriteReg(regSmplrtDiv, []byte{sampleRateDivider}); err != nil {
		return fmt.Errorf("imu: set sample rate divider: %w", err)
	}
	if err := m.bus.WriteReg(regConfig, []byte{dlpfConfig}); err != nil {
		return fmt.Errorf("imu: set DLPF config: %w", err)
	}
	if err := m.bus.WriteReg(regGyroCfg, []byte{gyroFullScale250}); err != nil {
		return fmt.Errorf("imu: set gyro full scale: %w", err)
	}
	return nil
}

// SetOffset installs the persistent calibration offset computed by
// CalibrateGyroZ.
func (m *IMU) SetOffset(offset float64) {
	m.offset = offset
}

// rawDps reads the Z-axis rate straight off the device, with no sign
// flip or offset applied. Calibration averages this value.
func (m *IMU) rawDps() (dps float64, ok bool) {
	buf, err := m.bus.ReadReg(regGyroZOutH, 2)
	if err != nil || len(buf) != 2 {
		return 0, false
	}
	raw := int16(uint16(buf[0])<<8 | uint16(buf[1]))
	return float64(raw) / gyroSensitivityLSB, true
}

// ReadGyroZDps returns -(dps - offset) so that positive rate means
// counter-clockwise in the robot frame (spec §4.1). ok is false on any
// transaction failure.
func (m *IMU) ReadGyroZDps() (dps float64, ok bool) {
	raw, ok := m.rawDps()
	if !ok {
		return 0, false
	}
	return -(raw - m.offset), true
}
