// Command avccore runs the robot controller core: sensor acquisition,
// odometry, goto-point navigation, and PWM actuation, coordinated at
// 200 Hz and driven by line commands on stdin (spec §1, §5, §6).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"flag"

	"github.com/rs/zerolog"

	"github.com/SaltyCap/asgc-avc/internal/config"
	"github.com/SaltyCap/asgc-avc/internal/hw"
	"github.com/SaltyCap/asgc-avc/internal/hw/simhw"
	"github.com/SaltyCap/asgc-avc/internal/robot"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults baked in if omitted)")
	sim := flag.Bool("sim", false, "use in-memory simulated I2C/PWM backends instead of sysfs")
	logLevel := flag.String("loglevel", "info", "zerolog level: debug, info, warn, error")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		log = log.Level(lvl)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "avccore: config load failed: %v\n", err)
		os.Exit(1)
	}

	devices, err := openDevices(cfg, *sim, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "avccore: hardware init failed: %v\n", err)
		os.Exit(1)
	}

	r := robot.New(devices, os.Stdout, log, cfg.IMUCalibrationSamples, cfg.LogPath)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	r.Run(ctx, os.Stdin)
}

// openDevices opens the three I2C buses and two PWM channels named in
// cfg, using the simulated in-memory backend when sim is true and the
// Linux sysfs backend otherwise. The sysfs backend lives behind a
// `linux` build tag (internal/hw/sysfs); openDevicesSysfs is provided
// per-platform in sysfs_linux.go / sysfs_other.go.
func openDevices(cfg config.Config, sim bool, log zerolog.Logger) (robot.Devices, error) {
	if sim {
		log.Info().Msg("using simulated hardware backend")
		return robot.Devices{
			LeftEncoderBus:  simhw.NewBus(),
			RightEncoderBus: simhw.NewBus(),
			IMUBus:          simhw.NewBus(),
			LeftPWM:         simhw.NewChannel(),
			RightPWM:        simhw.NewChannel(),
		}, nil
	}
	return openDevicesSysfs(cfg)
}

var _ hw.I2CBus = (*simhw.Bus)(nil)
var _ hw.PWMChannel = (*simhw.Channel)(nil)
