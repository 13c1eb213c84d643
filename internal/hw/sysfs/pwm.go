//go:build linux

package sysfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Channel implements hw.PWMChannel over /sys/class/pwm/pwmchip<N>/pwm<chan>.
type Channel struct {
	dir string
}

// OpenChannel exports (if needed) and opens PWM channel chanNum on
// pwmchip chipNum.
func OpenChannel(chipNum, chanNum int) (*Channel, error) {
	chipDir := fmt.Sprintf("/sys/class/pwm/pwmchip%d", chipNum)
	dir := filepath.Join(chipDir, fmt.Sprintf("pwm%d", chanNum))

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		exportPath := filepath.Join(chipDir, "export")
		if werr := os.WriteFile(exportPath, []byte(strconv.Itoa(chanNum)), 0644); werr != nil {
			return nil, fmt.Errorf("sysfs: export pwm%d on chip%d: %w", chanNum, chipNum, werr)
		}
	}

	return &Channel{dir: dir}, nil
}

func (c *Channel) write(attr, val string) error {
	path := filepath.Join(c.dir, attr)
	if err := os.WriteFile(path, []byte(val), 0644); err != nil {
		return fmt.Errorf("sysfs: write %s: %w", path, err)
	}
	return nil
}

func (c *Channel) SetPeriod(ns int64) error {
	return c.write("period", strconv.FormatInt(ns, 10))
}

func (c *Channel) SetDutyCycle(ns int64) error {
	return c.write("duty_cycle", strconv.FormatInt(ns, 10))
}

func (c *Channel) Enable() error {
	return c.write("enable", "1")
}

func (c *Channel) Disable() error {
	return c.write("enable", "0")
}

func (c *Channel) Close() error {
	return c.Disable()
}
