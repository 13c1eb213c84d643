package sensors

import "github.com/SaltyCap/asgc-avc/internal/hw"

// encoderAngleRegister is the register holding the 12-bit absolute
// angle on the on-axis magnetic sensor (spec §4.1).
const encoderAngleRegister = 0x0C

// EncoderSensor reads the raw 0..4095 absolute angle off one wheel's
// I2C bus.
type EncoderSensor struct {
	bus hw.I2CBus
}

// NewEncoderSensor binds a sensor to an already-addressed bus.
func NewEncoderSensor(bus hw.I2CBus) *EncoderSensor {
	return &EncoderSensor{bus: bus}
}

// ReadAngle returns the raw angle in 0..4095, or -1 on any transaction
// failure (spec §4.1: "Failure -> angle = -1").
func (e *EncoderSensor) ReadAngle() int16 {
	buf, err := e.bus.ReadReg(encoderAngleRegister, 2)
	if err != nil || len(buf) != 2 {
		return -1
	}
	value := (int16(buf[0]&0x0F) << 8) | int16(buf[1])
	return value
}
