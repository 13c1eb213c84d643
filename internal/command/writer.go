package command

import (
	"fmt"
	"io"
	"sync"

	"github.com/SaltyCap/asgc-avc/internal/nav"
	"github.com/SaltyCap/asgc-avc/internal/odometry"
)

// Writer serializes the Status-Emitter's unsolicited STATUS/ARRIVED/
// READY lines and the Dispatcher's OK replies onto a single io.Writer
// (stdout in production) so concurrent writers from T_control and
// T_input never interleave partial lines (spec §5: "each line is
// atomic; the operator parses by prefix").
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter wraps the destination stream (typically os.Stdout).
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (s *Writer) writeLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, line)
}

// Ready emits the startup line once the ESC arm delay has elapsed.
func (s *Writer) Ready() {
	s.writeLine("READY coordinated")
}

// OK emits an `OK <rest>` reply to an accepted command.
func (s *Writer) OK(rest string) {
	s.writeLine("OK " + rest)
}

// Status emits `STATUS X Y H S` from the given pose and state code.
func (s *Writer) Status(pose *odometry.Pose, state nav.State) {
	s.writeLine(fmt.Sprintf("STATUS %v %v %v %d", pose.X, pose.Y, pose.Heading, state.Code()))
}

// Arrived emits the goal-reached line.
func (s *Writer) Arrived() {
	s.writeLine("ARRIVED")
}
