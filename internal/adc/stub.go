//go:build !linux

package adc

import (
	"errors"

	"github.com/sweeney/dock-sensor/internal/logic"
)

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(device string, ch Channels) (*RealReader, error) {
	return nil, errors.New("adc: not supported on this platform (requires Linux IIO)")
}

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read() (logic.Sample, error) {
	return logic.Sample{}, errors.New("adc: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}
