// Package adc provides analog sense-line sampling with hardware abstraction.
// The real implementation reads a Linux IIO converter through sysfs.
// The fake implementation allows testing without hardware.
package adc

import "github.com/sweeney/dock-sensor/internal/logic"

// Reader samples the four sense lines.
type Reader interface {
	// Read captures one snapshot of A3, A2, A1 and A0.
	Read() (logic.Sample, error)

	// Close releases ADC resources.
	Close() error
}

// DefaultDevice is the IIO device exposing the sense lines.
const DefaultDevice = "/sys/bus/iio/devices/iio:device0"

// Channels maps each sense line to an IIO voltage channel number.
type Channels struct {
	A3, A2, A1, A0 int
}

// DefaultChannels matches the base station wiring: A3..A0 on channels 0..3.
var DefaultChannels = Channels{A3: 0, A2: 1, A1: 2, A0: 3}
