// Package config loads the startup configuration for asgc-avc: I2C bus
// paths/addresses and the PWM chip/channel mapping named as
// "configurable" in spec §6. Everything else (physical constants,
// control thresholds) is a package-level const elsewhere, matching the
// teacher's habit of hardcoding protocol constants directly in code.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BusConfig names one I2C device's bus path and slave address.
type BusConfig struct {
	Path    string `yaml:"path"`
	Address uint16 `yaml:"address"`
}

// PWMConfig names the sysfs chip and the two ESC channels.
type PWMConfig struct {
	Chip         int `yaml:"chip"`
	LeftChannel  int `yaml:"left_channel"`
	RightChannel int `yaml:"right_channel"`
}

// Buses groups the three sensor buses named in spec §4.1.
type Buses struct {
	LeftEncoder  BusConfig `yaml:"left_encoder"`
	RightEncoder BusConfig `yaml:"right_encoder"`
	IMU          BusConfig `yaml:"imu"`
}

// Config is the full startup configuration.
type Config struct {
	Buses                 Buses     `yaml:"buses"`
	PWM                   PWMConfig `yaml:"pwm"`
	ControlHz             int       `yaml:"control_hz"`
	LogPath               string    `yaml:"log_path"`
	IMUCalibrationSamples int       `yaml:"imu_calibration_samples"`
}

// Default returns the configuration used when no config file is
// supplied, matching the reference addresses named in spec §4.1/§6.
func Default() Config {
	return Config{
		Buses: Buses{
			LeftEncoder:  BusConfig{Path: "/dev/i2c-1", Address: 0x40},
			RightEncoder: BusConfig{Path: "/dev/i2c-2", Address: 0x41},
			IMU:          BusConfig{Path: "/dev/i2c-3", Address: 0x68},
		},
		PWM: PWMConfig{
			Chip:         0,
			LeftChannel:  0,
			RightChannel: 1,
		},
		ControlHz:             200,
		LogPath:               "",
		IMUCalibrationSamples: 500,
	}
}

// Load reads and parses a YAML config file at path, falling back to
// Default() field-by-field for anything the file leaves zero.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.ControlHz <= 0 {
		cfg.ControlHz = 200
	}
	if cfg.IMUCalibrationSamples <= 0 {
		cfg.IMUCalibrationSamples = 500
	}

	return cfg, nil
}
