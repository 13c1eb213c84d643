package sensors

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaltyCap/asgc-avc/internal/hw/simhw"
)

func setGyroRaw(bus *simhw.Bus, raw int16) {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, uint16(raw))
	bus.Regs[regGyroZOutH] = buf
}

func TestIMU_Init_WritesExpectedRegisters(t *testing.T) {
	bus := simhw.NewBus()
	imu := NewIMU(bus)
	require.NoError(t, imu.Init())

	assert.Equal(t, []byte{0x00}, bus.Regs[regPwrMgmt1])
	assert.Equal(t, []byte{sampleRateDivider}, bus.Regs[regSmplrtDiv])
	assert.Equal(t, []byte{dlpfConfig}, bus.Regs[regConfig])
	assert.Equal(t, []byte{gyroFullScale250}, bus.Regs[regGyroCfg])
}

func TestIMU_ReadGyroZDps_AppliesSignFlipAndOffset(t *testing.T) {
	bus := simhw.NewBus()
	setGyroRaw(bus, 131) // 131/131.0 = 1.0 dps raw
	imu := NewIMU(bus)

	dps, ok := imu.ReadGyroZDps()
	require.True(t, ok)
	assert.InDelta(t, -1.0, dps, 1e-9)

	imu.SetOffset(0.5)
	dps, ok = imu.ReadGyroZDps()
	require.True(t, ok)
	assert.InDelta(t, -0.5, dps, 1e-9) // -(1.0 - 0.5)
}

func TestIMU_ReadGyroZDps_FailureReturnsNotOK(t *testing.T) {
	bus := simhw.NewBus()
	bus.ReadFunc = func(reg byte, n int) ([]byte, error) {
		return nil, errors.New("nack")
	}
	imu := NewIMU(bus)
	_, ok := imu.ReadGyroZDps()
	assert.False(t, ok)
}
