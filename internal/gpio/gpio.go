// Package gpio drives the base station's digital output lines.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "fmt"

// Line identifies one of the two output lines.
type Line int

const (
	// LineRestart power-cycles the host board. Idle low.
	LineRestart Line = iota
	// LineDrive pulses the robot toward its charger. Idle high (active low).
	LineDrive
)

func (l Line) String() string {
	switch l {
	case LineRestart:
		return "restart"
	case LineDrive:
		return "drive"
	default:
		return fmt.Sprintf("line(%d)", int(l))
	}
}

// Idle returns the level a line rests at between sequences.
func (l Line) Idle() int {
	if l == LineDrive {
		return 1
	}
	return 0
}

// Outputs sets the levels of the output lines.
type Outputs interface {
	// Set drives line to value (0 or 1).
	Set(line Line, value int) error

	// Close returns the lines to their idle levels and releases them.
	Close() error
}

// Default pin definitions (BCM numbering)
const (
	DefaultChip       = "gpiochip0"
	DefaultPinRestart = 5
	DefaultPinDrive   = 6
)
