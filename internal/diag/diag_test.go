package diag

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/dock-sensor/internal/logic"
)

func TestDumpLayout(t *testing.T) {
	var buf bytes.Buffer
	d := New(&buf, [4]int{0, 1, 2, 3})

	flags := logic.Flags{WiFi: true, Shutdown: false, Charging: true, Searching: false}
	require.NoError(t, d.Dump(flags, logic.Sample{A3: 100, A2: 2500, A1: 0, A0: 4095}))

	want := strings.Join([]string{
		"------- DOCK SENSOR -------",
		"Board State:      ON",
		"WiFi:             ACTIVE",
		"Charging:         YES",
		"SearchingCharge:  NO",
		"Voltages:",
		"A3 (ch0):  100 (0.08 V)",
		"A2 (ch1): 2500 (2.01 V)",
		"A1 (ch2):    0 (0.00 V)",
		"A0 (ch3): 4095 (3.30 V)",
		"---------------------------",
		"",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestDumpShutdownSearching(t *testing.T) {
	var buf bytes.Buffer
	d := New(&buf, [4]int{7, 6, 5, 4})

	require.NoError(t, d.Dump(logic.Flags{Shutdown: true, Searching: true}, logic.Sample{}))

	out := buf.String()
	assert.Contains(t, out, "Board State:      OFF")
	assert.Contains(t, out, "WiFi:             INACTIVE")
	assert.Contains(t, out, "Charging:         NO")
	assert.Contains(t, out, "SearchingCharge:  YES")
	assert.Contains(t, out, "A3 (ch7)")
	assert.Contains(t, out, "A0 (ch4)")
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("port gone") }

func TestDumpWriteError(t *testing.T) {
	d := New(failWriter{}, [4]int{})
	assert.EqualError(t, d.Dump(logic.Flags{}, logic.Sample{}), "port gone")
}

func TestOpenSerialMissingPort(t *testing.T) {
	_, err := OpenSerial("/dev/does-not-exist-dock", 115200)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open serial /dev/does-not-exist-dock")
}
