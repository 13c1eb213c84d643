// Package telemetry implements the Telemetry-Logger (spec §4.8): a
// fixed-capacity in-memory buffer of per-tick records, dumped to CSV on
// shutdown. It does not wrap around: once full, new records are dropped. Logging is best-effort; loss never affects control.
package telemetry

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// LogSize is the fixed capacity from spec §4.8; once full, further
// entries are silently dropped.
const LogSize = 1_000_000

// Record is one control-tick telemetry row (spec §4.8, §6 CSV header).
type Record struct {
	TimeS         float64
	Mode          string
	PWML          int64
	I2CL          int16
	PWMR          int64
	I2CR          int16
	TargetL       int64
	ActualL       int64
	TargetR       int64
	ActualR       int64
	GyroZ         float64
	OdomX         float64
	OdomY         float64
	OdomHeading   float64
	NavState      string
}

// Log is the fixed-capacity, non-wrapping buffer described in spec
// §4.8. It is allocated once at start and never resized.
type Log struct {
	mu       sync.Mutex
	dir      string
	capacity int
	records  []Record
	dropped  int64
}

// NewLog preallocates the LogSize-capacity buffer. dir is the base
// directory CSV dumps are written under (spec §6: `../logs/...`).
func NewLog(dir string) *Log {
	return newLogWithCapacity(dir, LogSize)
}

// newLogWithCapacity underlies NewLog; it also lets tests exercise the
// drop-on-full behavior without allocating a million-record buffer.
func newLogWithCapacity(dir string, capacity int) *Log {
	return &Log{
		dir:      dir,
		capacity: capacity,
		records:  make([]Record, 0, capacity),
	}
}

// Append adds one record. If the buffer is at capacity the record is
// silently dropped (spec §4.8) and the drop is counted for diagnostics
// only — it is never surfaced to the control path.
func (l *Log) Append(r Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.records) < l.capacity {
		l.records = append(l.records, r)
		return
	}
	l.dropped++
}

// Dropped returns how many records have been silently discarded.
func (l *Log) Dropped() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Reset clears the buffer in place, used by `stop`'s "reset log index"
// step (spec §6) after a dump.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = l.records[:0]
	l.dropped = 0
}

// Dump writes the current buffer to a CSV file named per spec §6's
// pattern `../logs/motor_log_<mode>_<YYYYMMDD>_<HHMMSS>[_<n>].csv`,
// with a collision-avoiding numeric suffix, and returns the path
// written.
func (l *Log) Dump(mode string, now time.Time) (string, error) {
	l.mu.Lock()
	records := make([]Record, len(l.records))
	copy(records, l.records)
	l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("telemetry: mkdir %s: %w", l.dir, err)
	}

	base := fmt.Sprintf("motor_log_%s_%s", mode, now.Format("20060102_150405"))
	path, f, err := createNonColliding(l.dir, base)
	if err != nil {
		return "", fmt.Errorf("telemetry: open log file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"time", "mode", "pwm_l", "i2c_l", "pwm_r", "i2c_r",
		"target_l", "actual_l", "target_r", "actual_r",
		"gyro_z", "odom_x", "odom_y", "odom_heading", "nav_state",
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("telemetry: write header: %w", err)
	}

	for _, r := range records {
		row := []string{
			strconv.FormatFloat(r.TimeS, 'f', -1, 64),
			r.Mode,
			strconv.FormatInt(r.PWML, 10),
			strconv.FormatInt(int64(r.I2CL), 10),
			strconv.FormatInt(r.PWMR, 10),
			strconv.FormatInt(int64(r.I2CR), 10),
			strconv.FormatInt(r.TargetL, 10),
			strconv.FormatInt(r.ActualL, 10),
			strconv.FormatInt(r.TargetR, 10),
			strconv.FormatInt(r.ActualR, 10),
			strconv.FormatFloat(r.GyroZ, 'f', -1, 64),
			strconv.FormatFloat(r.OdomX, 'f', -1, 64),
			strconv.FormatFloat(r.OdomY, 'f', -1, 64),
			strconv.FormatFloat(r.OdomHeading, 'f', -1, 64),
			r.NavState,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("telemetry: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("telemetry: flush: %w", err)
	}

	return path, nil
}

// createNonColliding opens "<dir>/<base>.csv", or "<dir>/<base>_<n>.csv"
// for the smallest n that doesn't already exist.
func createNonColliding(dir, base string) (string, *os.File, error) {
	path := filepath.Join(dir, base+".csv")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err == nil {
		return path, f, nil
	}
	if !os.IsExist(err) {
		return "", nil, err
	}
	for n := 1; ; n++ {
		path = filepath.Join(dir, fmt.Sprintf("%s_%d.csv", base, n))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return path, f, nil
		}
		if !os.IsExist(err) {
			return "", nil, err
		}
	}
}
