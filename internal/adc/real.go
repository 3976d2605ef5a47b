//go:build linux

package adc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sweeney/dock-sensor/internal/logic"
)

// RealReader reads the sense lines from a Linux IIO converter via sysfs.
// The converter must already be configured for 12-bit one-shot reads; the
// reader does not touch resolution or attenuation.
type RealReader struct {
	files [4]*os.File // A3, A2, A1, A0
	buf   [16]byte
}

// NewRealReader opens the raw value attribute of each configured channel.
func NewRealReader(device string, ch Channels) (*RealReader, error) {
	r := &RealReader{}
	names := [4]string{"A3", "A2", "A1", "A0"}
	for i, n := range [4]int{ch.A3, ch.A2, ch.A1, ch.A0} {
		path := filepath.Join(device, fmt.Sprintf("in_voltage%d_raw", n))
		f, err := os.Open(path)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("open %s channel %d: %w", names[i], n, err)
		}
		r.files[i] = f
	}
	return r, nil
}

// Read captures one reading per line, in board order A3, A2, A1, A0.
func (r *RealReader) Read() (logic.Sample, error) {
	var raw [4]uint16
	for i, f := range r.files {
		v, err := r.readRaw(f)
		if err != nil {
			return logic.Sample{}, fmt.Errorf("read %s: %w", f.Name(), err)
		}
		raw[i] = v
	}
	return logic.Sample{A3: raw[0], A2: raw[1], A1: raw[2], A0: raw[3]}, nil
}

// readRaw re-reads a sysfs attribute from offset 0, which triggers a new conversion.
func (r *RealReader) readRaw(f *os.File) (uint16, error) {
	n, err := f.ReadAt(r.buf[:], 0)
	if n == 0 && err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(string(bytes.TrimSpace(r.buf[:n])), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("parse raw value: %w", err)
	}
	return uint16(v), nil
}

// Close releases the channel attribute files.
func (r *RealReader) Close() error {
	var errs []error
	for i, f := range r.files {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", f.Name(), err))
		}
		r.files[i] = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
