package logic

// Zone is the classification of a single reading on the wireless line.
type Zone int

const (
	ZoneNone Zone = iota
	ZoneLow
	ZoneHigh
	ZoneIndeterminate
)

func (z Zone) String() string {
	switch z {
	case ZoneLow:
		return "LOW"
	case ZoneHigh:
		return "HIGH"
	case ZoneIndeterminate:
		return "INDETERMINATE"
	default:
		return "NONE"
	}
}

// ClassifyZone maps a raw reading to its zone on the wireless line.
func ClassifyZone(v uint16) Zone {
	switch {
	case v < WiFiLowMax:
		return ZoneLow
	case v > HighThreshold:
		return ZoneHigh
	default:
		return ZoneIndeterminate
	}
}

// ZoneHysteresisDetector latches wireless presence once a reading stays in the
// low (present) or high (absent) zone for consecutive samples.
// The zero value is ready to use.
type ZoneHysteresisDetector struct {
	lastZone Zone
	streak   int
	latched  bool
}

// Update feeds one reading and returns the latched presence flag.
func (d *ZoneHysteresisDetector) Update(v uint16) bool {
	zone := ClassifyZone(v)

	if zone == d.lastZone && zone != ZoneIndeterminate {
		if d.streak < WiFiStableSamples {
			d.streak++
		}
	} else {
		d.streak = 1
		d.lastZone = zone
	}

	// Indeterminate readings never move the latch, even on a streak.
	if d.streak >= WiFiStableSamples {
		switch zone {
		case ZoneLow:
			d.latched = true
		case ZoneHigh:
			d.latched = false
		}
	}
	return d.latched
}

// Active returns the latched presence flag.
func (d *ZoneHysteresisDetector) Active() bool { return d.latched }

// LastZone returns the zone recorded by the last Update.
func (d *ZoneHysteresisDetector) LastZone() Zone { return d.lastZone }

// Streak returns the number of consecutive samples in LastZone.
func (d *ZoneHysteresisDetector) Streak() int { return d.streak }
