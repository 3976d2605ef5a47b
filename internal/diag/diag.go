// Package diag writes human-readable diagnostic dumps of the classifier state.
package diag

import (
	"fmt"
	"io"
	"strings"

	"go.bug.st/serial"

	"github.com/sweeney/dock-sensor/internal/logic"
)

// Dumper writes one block per cycle to an underlying writer.
type Dumper struct {
	w     io.Writer
	names [4]string
}

// New creates a Dumper. channels labels each raw line with its converter
// channel in board order A3, A2, A1, A0.
func New(w io.Writer, channels [4]int) *Dumper {
	d := &Dumper{w: w}
	for i, ch := range channels {
		d.names[i] = fmt.Sprintf("A%d (ch%d)", 3-i, ch)
	}
	return d
}

// Dump writes the latched flags followed by raw readings and voltages.
func (d *Dumper) Dump(flags logic.Flags, s logic.Sample) error {
	var b strings.Builder

	b.WriteString("------- DOCK SENSOR -------\n")
	fmt.Fprintf(&b, "Board State:      %s\n", pick(flags.Shutdown, "OFF", "ON"))
	fmt.Fprintf(&b, "WiFi:             %s\n", pick(flags.WiFi, "ACTIVE", "INACTIVE"))
	fmt.Fprintf(&b, "Charging:         %s\n", pick(flags.Charging, "YES", "NO"))
	fmt.Fprintf(&b, "SearchingCharge:  %s\n", pick(flags.Searching, "YES", "NO"))

	b.WriteString("Voltages:\n")
	for i, raw := range s.Raw() {
		fmt.Fprintf(&b, "%s: %4d (%.2f V)\n", d.names[i], raw, logic.Voltage(raw))
	}
	b.WriteString("---------------------------\n\n")

	_, err := io.WriteString(d.w, b.String())
	return err
}

func pick(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}

// OpenSerial opens a serial console for dumps at the given baud rate, 8N1.
func OpenSerial(port string, baud int) (io.WriteCloser, error) {
	p, err := serial.Open(port, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", port, err)
	}
	return p, nil
}
