//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealOutputs drives the output lines through the Linux GPIO character device.
type RealOutputs struct {
	chip  *gpiocdev.Chip
	lines map[Line]*gpiocdev.Line
}

// NewRealOutputs requests both lines as outputs at their idle levels:
// restart low, drive high.
func NewRealOutputs(chipName string, pinRestart, pinDrive int) (*RealOutputs, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("dock-sensor"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	restart, err := chip.RequestLine(pinRestart, gpiocdev.AsOutput(LineRestart.Idle()))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request restart pin %d: %w", pinRestart, err)
	}

	drive, err := chip.RequestLine(pinDrive, gpiocdev.AsOutput(LineDrive.Idle()))
	if err != nil {
		restart.Close()
		chip.Close()
		return nil, fmt.Errorf("request drive pin %d: %w", pinDrive, err)
	}

	return &RealOutputs{
		chip: chip,
		lines: map[Line]*gpiocdev.Line{
			LineRestart: restart,
			LineDrive:   drive,
		},
	}, nil
}

// Set drives line to value.
func (o *RealOutputs) Set(line Line, value int) error {
	l, ok := o.lines[line]
	if !ok {
		return fmt.Errorf("unknown output %s", line)
	}
	if err := l.SetValue(value); err != nil {
		return fmt.Errorf("set %s pin: %w", line, err)
	}
	return nil
}

// Close returns both lines to their idle levels before releasing them, so
// the host board is not left mid power-cycle and the robot is not left
// driving.
func (o *RealOutputs) Close() error {
	var errs []error

	for _, line := range []Line{LineRestart, LineDrive} {
		l := o.lines[line]
		if l == nil {
			continue
		}
		if err := l.SetValue(line.Idle()); err != nil {
			errs = append(errs, fmt.Errorf("idle %s pin: %w", line, err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", line, err))
		}
	}
	if o.chip != nil {
		if err := o.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
