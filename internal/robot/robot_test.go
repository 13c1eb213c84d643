package robot

import (
	"bytes"
	"context"
	"encoding/binary"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaltyCap/asgc-avc/internal/hw/simhw"
)

func newTestDevices() (Devices, *simhw.Bus, *simhw.Bus, *simhw.Bus) {
	leftBus, rightBus, imuBus := simhw.NewBus(), simhw.NewBus(), simhw.NewBus()
	leftBus.Regs[0x0C] = []byte{0x00, 0x00}
	rightBus.Regs[0x0C] = []byte{0x00, 0x00}
	gyroBuf := make([]byte, 2)
	binary.BigEndian.PutUint16(gyroBuf, 0)
	imuBus.Regs[0x47] = gyroBuf

	return Devices{
		LeftEncoderBus:  leftBus,
		RightEncoderBus: rightBus,
		IMUBus:          imuBus,
		LeftPWM:         simhw.NewChannel(),
		RightPWM:        simhw.NewChannel(),
	}, leftBus, rightBus, imuBus
}

func withNoSleep(t *testing.T) {
	t.Helper()
	prev := sleepFn
	sleepFn = func(time.Duration) {}
	t.Cleanup(func() { sleepFn = prev })
}

func TestRobot_RunEmitsReadyAndRespondsToCommands(t *testing.T) {
	withNoSleep(t)

	devices, _, _, _ := newTestDevices()
	var stdout bytes.Buffer
	r := New(devices, &stdout, zerolog.Nop(), 5, t.TempDir())

	stdin := strings.NewReader("goto 1 1\nq\n")
	done := make(chan struct{})
	go func() {
		r.Run(context.Background(), stdin)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after q")
	}

	out := stdout.String()
	assert.Contains(t, out, "READY coordinated")
	assert.Contains(t, out, "OK goto 1 1")
	assert.Contains(t, out, "OK quit")
}

func TestRobot_RunStopsOnContextCancel(t *testing.T) {
	withNoSleep(t)

	devices, _, _, _ := newTestDevices()
	var stdout bytes.Buffer
	r := New(devices, &stdout, zerolog.Nop(), 5, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	stdin := strings.NewReader("") // EOF immediately, but ctx cancel should also terminate Run

	done := make(chan struct{})
	go func() {
		r.Run(ctx, stdin)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}

func TestRobot_IMUCalibrationFailureIsNonFatal(t *testing.T) {
	withNoSleep(t)

	devices, _, _, imuBus := newTestDevices()
	require.NoError(t, imuBus.Close()) // forces calibration (and Init) to fail

	var stdout bytes.Buffer
	r := New(devices, &stdout, zerolog.Nop(), 5, t.TempDir())

	assert.False(t, r.imuOK)
}
