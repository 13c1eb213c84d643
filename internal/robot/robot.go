// Package robot wires the Sensor-Acquisition, Odometry-Integrator,
// Navigation-Controller, PWM-Actuator, Command-Dispatcher, and
// Telemetry-Logger components into the three long-lived execution
// contexts described in spec §5: T_feedback, T_control, T_input.
package robot

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/SaltyCap/asgc-avc/internal/command"
	"github.com/SaltyCap/asgc-avc/internal/hw"
	"github.com/SaltyCap/asgc-avc/internal/motion"
	"github.com/SaltyCap/asgc-avc/internal/nav"
	"github.com/SaltyCap/asgc-avc/internal/odometry"
	"github.com/SaltyCap/asgc-avc/internal/sensors"
	"github.com/SaltyCap/asgc-avc/internal/telemetry"
)

// ControlHz is the fixed Navigation-Controller tick rate (spec §5).
const ControlHz = 200

// statusEveryNTicks implements "every 10 ticks (20 Hz when control
// loop is 200 Hz)" from spec §4.7.
const statusEveryNTicks = 10

// armDelay is the ESC arm delay the startup sequence waits out before
// emitting READY (spec §6: "READY coordinated at startup after ESC arm
// delay"). ESCs of the class this controller targets require a
// sustained neutral pulse before they'll accept commands.
const armDelay = 2 * time.Second

// sleepFn is overridden in tests to avoid the real arm delay while
// still exercising the startup sequencing around it.
var sleepFn = time.Sleep

// Devices bundles the opened hardware collaborators a Robot needs.
// internal/robot never opens these itself — cmd/avccore constructs
// them (from internal/hw/sysfs or internal/hw/simhw, per the -sim
// flag) and hands them in, keeping the hardware boundary at the
// interface described in spec §1/§6.
type Devices struct {
	LeftEncoderBus  hw.I2CBus
	RightEncoderBus hw.I2CBus
	IMUBus          hw.I2CBus
	LeftPWM         hw.PWMChannel
	RightPWM        hw.PWMChannel
}

// Robot owns every process-global singleton named in spec §3 (Pose,
// EncoderTrackers via nav.Wheel, Motors via nav.Wheel,
// NavigationController) plus the supporting components, and runs the
// three execution contexts from spec §5.
type Robot struct {
	log zerolog.Logger

	devices Devices

	pose        *odometry.Pose
	leftWheel   *nav.Wheel
	rightWheel  *nav.Wheel
	ctrl        *nav.Controller
	acq         *sensors.Acquisition
	integrator  *odometry.Integrator
	kalman      *odometry.KalmanShadow
	telemetry   *telemetry.Log
	writer      *command.Writer
	dispatcher  *command.Dispatcher

	// imuOK is false when IMU init/calibration failed; odometry then
	// runs encoder-only with gyro_z forced to zero (spec §7).
	imuMu    sync.Mutex
	imuOK    bool
	lastGyro float64

	tickCount int64
}

// New constructs a Robot from already-opened hardware collaborators.
// It performs IMU calibration inline (spec §4.2); a calibration
// failure is logged and treated as non-fatal per spec §7.
func New(devices Devices, stdout io.Writer, log zerolog.Logger, imuCalibrationSamples int, logDir string) *Robot {
	leftSensor := sensors.NewEncoderSensor(devices.LeftEncoderBus)
	rightSensor := sensors.NewEncoderSensor(devices.RightEncoderBus)
	imu := sensors.NewIMU(devices.IMUBus)

	r := &Robot{
		log:     log,
		devices: devices,
		pose:    &odometry.Pose{},
		kalman:  odometry.NewKalmanShadow(0),
	}

	leftMotor, err := motion.NewMotor(devices.LeftPWM)
	if err != nil {
		log.Error().Err(err).Msg("left motor init failed")
	}
	rightMotor, err := motion.NewMotor(devices.RightPWM)
	if err != nil {
		log.Error().Err(err).Msg("right motor init failed")
	}

	r.leftWheel = nav.NewWheel(odometry.NewEncoderTracker(), leftMotor)
	r.rightWheel = nav.NewWheel(odometry.NewEncoderTracker(), rightMotor)
	r.ctrl = nav.NewController(r.pose, r.leftWheel, r.rightWheel)
	r.acq = sensors.NewAcquisition(leftSensor, rightSensor, imu)
	r.integrator = odometry.NewIntegrator()
	if logDir == "" {
		logDir = "../logs"
	}
	r.telemetry = telemetry.NewLog(logDir)
	r.writer = command.NewWriter(stdout)

	if _, err := sensors.CalibrateGyroZ(imu, imuCalibrationSamples); err != nil {
		log.Warn().Err(err).Msg("imu calibration failed; continuing with gyro_z forced to zero")
		r.imuOK = false
	} else {
		r.imuOK = true
	}

	return r
}

// dumpLog implements the `stop` command's "dump log, reset log index"
// step (spec §6).
func (r *Robot) dumpLog() error {
	path, err := r.telemetry.Dump(string(r.dispatcher.Mode()), time.Now())
	if err != nil {
		return err
	}
	r.log.Info().Str("path", path).Msg("telemetry dumped")
	r.telemetry.Reset()
	return nil
}

// Run starts T_feedback, T_control, and T_input and blocks until ctx
// is cancelled (SIGINT/SIGTERM, or the `q` command via quit). stdin is
// the input stream for T_input (os.Stdin in production).
func (r *Robot) Run(ctx context.Context, stdin io.Reader) {
	ctx, cancel := context.WithCancel(ctx)
	r.dispatcher = command.NewDispatcher(r.ctrl, r.writer, r.log, cancel, r.dumpLog)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.feedbackLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		r.controlLoop(ctx)
	}()

	sleepFn(armDelay)
	r.writer.Ready()

	// T_input is not joined: a read on stdin can block past shutdown,
	// so cancellation must not wait for it.
	go func() {
		r.dispatcher.Run(stdin)
		// EOF on stdin is equivalent to `q`.
		cancel()
	}()

	<-ctx.Done()
	wg.Wait()
	r.shutdown()
}

// feedbackLoop implements T_feedback (spec §5): Sensor-Acquisition,
// Rotation-Tracker updates, and the Odometry-Integrator, run back to
// back with no explicit sleep.
func (r *Robot) feedbackLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		sample := r.acq.ReadAll(ctx)
		if !sample.Valid {
			continue
		}

		gyro := sample.GyroZDps
		r.imuMu.Lock()
		if !r.imuOK {
			gyro = 0
		}
		r.lastGyro = gyro
		r.imuMu.Unlock()

		r.leftWheel.UpdateFromSample(sample.LeftRaw)
		r.rightWheel.UpdateFromSample(sample.RightRaw)

		leftTotal := r.leftWheel.TotalCounts()
		rightTotal := r.rightWheel.TotalCounts()

		r.integrator.Step(r.pose, leftTotal, rightTotal, gyro, sample.TimestampS, r.kalman)
	}
}

// controlLoop implements T_control (spec §5): the Navigation-Controller
// tick at a fixed 200 Hz, scheduled on a monotonic deadline so a slow
// tick doesn't accumulate skew (spec §9 design note), plus the
// Status-Emitter and Telemetry-Logger append.
func (r *Robot) controlLoop(ctx context.Context) {
	period := time.Second / ControlHz
	nextTick := time.Now().Add(period)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		now := time.Now()
		result := r.ctrl.Tick(now, nowSeconds(now))
		r.tickCount++

		if result.Arrived {
			r.writer.Arrived()
		}
		if result.Transitioned || r.tickCount%statusEveryNTicks == 0 {
			r.writer.Status(r.pose, r.ctrl.State())
		}

		r.appendTelemetry(now)

		sleepUntil(ctx, nextTick)
		nextTick = nextTick.Add(period)
		if nextTick.Before(now) {
			// We fell behind by more than one period; resync instead of
			// firing a burst of immediate ticks.
			nextTick = now.Add(period)
		}
	}
}

func sleepUntil(ctx context.Context, t time.Time) {
	d := time.Until(t)
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func nowSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func (r *Robot) appendTelemetry(now time.Time) {
	r.leftWheel.Lock()
	leftTarget := r.leftWheel.Tracker.RelativeCounts() + r.leftWheel.Tracker.Error()
	leftActual := r.leftWheel.Tracker.RelativeCounts()
	leftPulse := r.leftWheel.Motor.LastPulseNs()
	leftRaw := r.leftWheel.Tracker.CurrentRawAngle()
	r.leftWheel.Unlock()

	r.rightWheel.Lock()
	rightTarget := r.rightWheel.Tracker.RelativeCounts() + r.rightWheel.Tracker.Error()
	rightActual := r.rightWheel.Tracker.RelativeCounts()
	rightPulse := r.rightWheel.Motor.LastPulseNs()
	rightRaw := r.rightWheel.Tracker.CurrentRawAngle()
	r.rightWheel.Unlock()

	r.imuMu.Lock()
	gyro := r.lastGyro
	r.imuMu.Unlock()

	r.telemetry.Append(telemetry.Record{
		TimeS:       nowSeconds(now),
		Mode:        string(r.dispatcher.Mode()),
		PWML:        leftPulse,
		I2CL:        leftRaw,
		PWMR:        rightPulse,
		I2CR:        rightRaw,
		TargetL:     leftTarget,
		ActualL:     leftActual,
		TargetR:     rightTarget,
		ActualR:     rightActual,
		GyroZ:       gyro,
		OdomX:       r.pose.X,
		OdomY:       r.pose.Y,
		OdomHeading: r.pose.Heading,
		NavState:    r.ctrl.State().String(),
	})
}

// shutdown implements spec §5's shutdown sequence: dump log, reset PWM
// to neutral, disable PWM channels, close I2C descriptors.
func (r *Robot) shutdown() {
	if err := r.dumpLog(); err != nil {
		r.log.Warn().Err(err).Msg("final telemetry dump failed")
	}

	now := time.Now()
	r.leftWheel.Stop(now)
	r.rightWheel.Stop(now)

	if err := r.leftWheel.Motor.Disable(); err != nil {
		r.log.Warn().Err(err).Msg("left motor disable failed")
	}
	if err := r.rightWheel.Motor.Disable(); err != nil {
		r.log.Warn().Err(err).Msg("right motor disable failed")
	}

	for name, bus := range map[string]hw.I2CBus{
		"left-encoder":  r.devices.LeftEncoderBus,
		"right-encoder": r.devices.RightEncoderBus,
		"imu":           r.devices.IMUBus,
	} {
		if bus == nil {
			continue
		}
		if err := bus.Close(); err != nil {
			r.log.Warn().Err(err).Str("bus", name).Msg("close failed")
		}
	}
}
