package command

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SaltyCap/asgc-avc/internal/nav"
	"github.com/SaltyCap/asgc-avc/internal/odometry"
)

func TestWriter_LinesAreNewlineTerminatedAndAtomic(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.Ready()
	w.OK("goto 1 2")
	w.Status(&odometry.Pose{X: 1, Y: 2, Heading: 90}, nav.DRIVING)
	w.Arrived()

	lines := buf.String()
	assert.Contains(t, lines, "READY coordinated\n")
	assert.Contains(t, lines, "OK goto 1 2\n")
	assert.Contains(t, lines, "STATUS 1 2 90 2\n")
	assert.Contains(t, lines, "ARRIVED\n")
}
