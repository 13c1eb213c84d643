// Package command implements the line-oriented Command-Dispatcher and
// Status-Emitter (spec §4.7, §6): parsing stdin commands into
// NavigationController/Motor mutations and formatting the unsolicited
// STATUS/ARRIVED/OK protocol lines written to stdout.
package command

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/SaltyCap/asgc-avc/internal/nav"
)

// Mode mirrors the CSV `mode` column (spec §6): IDLE, JOYSTICK, VOICE.
// This core only ever produces IDLE and JOYSTICK; VOICE is reserved
// for the upstream operator process (out of scope, spec §1).
type Mode string

const (
	ModeIdle     Mode = "IDLE"
	ModeJoystick Mode = "JOYSTICK"
	ModeVoice    Mode = "VOICE"
)

// QuitFunc is invoked by the `q` command to request shutdown; it is
// supplied by internal/robot so the dispatcher doesn't need to know
// about the process-wide cancellation mechanism.
type QuitFunc func()

// DumpLogFunc is invoked by `stop` to flush the telemetry buffer to disk
// immediately (spec §6: "dump log, reset log index").
type DumpLogFunc func() error

// Dispatcher reads one command per line from stdin and mutates the
// NavigationController and motors under their own locks (spec §5:
// T_input "mutates NavigationController targets or motor pulses under
// the relevant locks"). It never blocks the control loop.
type Dispatcher struct {
	ctrl    *nav.Controller
	out     *Writer
	log     zerolog.Logger
	quit    QuitFunc
	dumpLog DumpLogFunc

	mode Mode
}

// NewDispatcher wires a Dispatcher to the shared controller and output
// writer. The controller already owns both wheels, so the dispatcher
// only ever reaches them through nav.Controller's own locking methods
// (Goto/SetSpeedMultiplier/SetPWMBounds/SetPos/Pulse/Stop).
func NewDispatcher(ctrl *nav.Controller, out *Writer, log zerolog.Logger, quit QuitFunc, dumpLog DumpLogFunc) *Dispatcher {
	return &Dispatcher{
		ctrl:    ctrl,
		out:     out,
		log:     log,
		quit:    quit,
		dumpLog: dumpLog,
		mode:    ModeIdle,
	}
}

// Mode returns the dispatcher's current mode tag for telemetry rows.
func (d *Dispatcher) Mode() Mode { return d.mode }

// Run blocks reading lines from r until it hits EOF or the scanner
// errors, dispatching each line in turn. It is meant to run on its own
// goroutine (T_input, spec §5).
func (d *Dispatcher) Run(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		d.dispatch(scanner.Text())
	}
}

// dispatch parses and executes a single command line. Parse failures
// are silently ignored per spec §7 ("Command parse failure: silently
// ignored; no reply").
func (d *Dispatcher) dispatch(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	now := time.Now()

	switch fields[0] {
	case "goto":
		d.handleGoto(fields, now)
	case "speed":
		d.handleSpeed(fields)
	case "setpwm":
		d.handleSetpwm(fields)
	case "setpos":
		d.handleSetpos(fields)
	case "pulse":
		d.handlePulse(fields, now)
	case "stop":
		d.handleStop(now)
	case "q":
		d.out.OK("quit")
		if d.quit != nil {
			d.quit()
		}
	default:
		d.log.Debug().Str("line", line).Msg("unrecognized command")
	}
}

func (d *Dispatcher) handleGoto(fields []string, now time.Time) {
	if len(fields) != 3 {
		return
	}
	x, err1 := strconv.ParseFloat(fields[1], 64)
	y, err2 := strconv.ParseFloat(fields[2], 64)
	if err1 != nil || err2 != nil {
		return
	}
	d.ctrl.Goto(x, y)
	d.out.OK(fmt.Sprintf("goto %v %v", x, y))
}

func (d *Dispatcher) handleSpeed(fields []string) {
	if len(fields) != 2 {
		return
	}
	s, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return
	}
	applied := d.ctrl.SetSpeedMultiplier(s)
	d.out.OK(fmt.Sprintf("speed %v", applied))
}

func (d *Dispatcher) handleSetpwm(fields []string) {
	if len(fields) != 3 {
		return
	}
	min, err1 := strconv.Atoi(fields[1])
	max, err2 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil {
		return
	}
	appliedMin, appliedMax := d.ctrl.SetPWMBounds(min, max)
	d.out.OK(fmt.Sprintf("setpwm %d %d", appliedMin, appliedMax))
}

func (d *Dispatcher) handleSetpos(fields []string) {
	if len(fields) != 4 {
		return
	}
	x, err1 := strconv.ParseFloat(fields[1], 64)
	y, err2 := strconv.ParseFloat(fields[2], 64)
	h, err3 := strconv.ParseFloat(fields[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return
	}
	d.ctrl.SetPos(x, y, h)
	d.out.OK(fmt.Sprintf("setpos %v %v %v", x, y, h))
}

func (d *Dispatcher) handlePulse(fields []string, now time.Time) {
	if len(fields) != 3 {
		return
	}
	l, err1 := strconv.ParseInt(fields[1], 10, 64)
	r, err2 := strconv.ParseInt(fields[2], 10, 64)
	if err1 != nil || err2 != nil {
		return
	}
	d.ctrl.Pulse(l, r, now)
	d.mode = ModeJoystick
	d.out.OK(fmt.Sprintf("pulse L:%d R:%d", l, r))
}

func (d *Dispatcher) handleStop(now time.Time) {
	d.ctrl.Stop(now)
	d.mode = ModeIdle
	if d.dumpLog != nil {
		if err := d.dumpLog(); err != nil {
			d.log.Warn().Err(err).Msg("log dump failed")
		}
	}
	d.out.OK("stopall (log dumped)")
}
