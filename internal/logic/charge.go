package logic

// Phase is the alternation state of the charge oscillation detector.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseExpectHigh
	PhaseExpectLow
)

func (p Phase) String() string {
	switch p {
	case PhaseExpectHigh:
		return "EXPECT_HIGH"
	case PhaseExpectLow:
		return "EXPECT_LOW"
	default:
		return "UNKNOWN"
	}
}

// ChargeOscillationDetector infers charging current from a high/low toggling
// pattern on the charge line, gated by the contact presence line.
// The zero value is ready to use.
type ChargeOscillationDetector struct {
	phase    Phase
	toggles  int
	charging bool
}

// Update feeds one sample and returns whether the device is charging.
//
// A presence reading that is not high vetoes charging and restarts the
// alternation count, regardless of history. Ambiguous primary readings
// (between the low and high thresholds) leave the phase untouched.
func (d *ChargeOscillationDetector) Update(primary, presence uint16) bool {
	if presence <= HighThreshold {
		d.charging = false
		d.toggles = 0
		d.phase = PhaseUnknown
		return false
	}

	high := primary > HighThreshold
	low := primary < ChargeLowMax

	switch d.phase {
	case PhaseUnknown:
		if high {
			d.phase = PhaseExpectLow
		} else if low {
			d.phase = PhaseExpectHigh
		}
	case PhaseExpectHigh:
		if high {
			d.toggle()
			d.phase = PhaseExpectLow
		}
	case PhaseExpectLow:
		if low {
			d.toggle()
			d.phase = PhaseExpectHigh
		}
	}

	d.charging = d.toggles >= ChargeTogglesMin
	return d.charging
}

// toggle counts one alternation. The count saturates at the confirmation
// threshold so a long charge never wraps it.
func (d *ChargeOscillationDetector) toggle() {
	if d.toggles < ChargeTogglesMin {
		d.toggles++
	}
}

// Charging returns the latched result of the last Update.
func (d *ChargeOscillationDetector) Charging() bool { return d.charging }

// Phase returns the current alternation phase.
func (d *ChargeOscillationDetector) Phase() Phase { return d.phase }

// Toggles returns the number of alternations counted since the last reset.
func (d *ChargeOscillationDetector) Toggles() int { return d.toggles }
