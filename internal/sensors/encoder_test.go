package sensors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SaltyCap/asgc-avc/internal/hw/simhw"
)

func TestEncoderSensor_ReadAngleMasksUpperNibble(t *testing.T) {
	bus := simhw.NewBus()
	bus.Regs[encoderAngleRegister] = []byte{0xFF, 0xFF} // high nibble must be masked off
	s := NewEncoderSensor(bus)
	assert.EqualValues(t, 4095, s.ReadAngle())
}

func TestEncoderSensor_ReadAngleZero(t *testing.T) {
	bus := simhw.NewBus()
	bus.Regs[encoderAngleRegister] = []byte{0x00, 0x00}
	s := NewEncoderSensor(bus)
	assert.EqualValues(t, 0, s.ReadAngle())
}

func TestEncoderSensor_FailureReturnsNegativeOne(t *testing.T) {
	bus := simhw.NewBus()
	bus.ReadFunc = func(reg byte, n int) ([]byte, error) {
		return nil, errors.New("bus timeout")
	}
	s := NewEncoderSensor(bus)
	assert.EqualValues(t, -1, s.ReadAngle())
}
