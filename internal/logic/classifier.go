package logic

import "time"

// WarmupCycles is the number of cycles after which every estimator has had
// the chance to confirm its state (the charge detector needs the most: one
// sample to find its phase plus one per alternation).
const WarmupCycles = ChargeTogglesMin + 1

// Classifier owns the four estimators and turns each sample into latched flags.
// It is not safe for concurrent use; callers serialize Process calls.
type Classifier struct {
	charge    ChargeOscillationDetector
	wifi      ZoneHysteresisDetector
	shutdown  *DebounceCounter
	searching *DebounceCounter

	flags         Flags
	cycles        uint64
	startTime     time.Time
	eventCounts   EventCounts
	lastHeartbeat time.Time
}

// NewClassifier creates a classifier with all estimators in their initial state.
// The startTime is used for calculating uptime in heartbeat events.
func NewClassifier(startTime time.Time) *Classifier {
	return &Classifier{
		shutdown:      NewDebounceCounter(ShutdownStreak),
		searching:     NewDebounceCounter(SearchingStreak),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Process feeds one sample to every estimator and returns an event for each
// latched flag that changed. Events are ordered charging, wifi, shutdown,
// searching, which is also the estimator evaluation order.
func (c *Classifier) Process(input Input) []Event {
	s := input.Sample
	prev := c.flags

	c.flags = Flags{
		Charging:  c.charge.Update(s.A1, s.A0),
		WiFi:      c.wifi.Update(s.A3),
		Shutdown:  c.shutdown.Update(ShutdownMatch(s)),
		Searching: c.searching.Update(SearchingMatch(s)),
	}
	if c.cycles < ^uint64(0) {
		c.cycles++
	}

	var events []Event
	emit := func(changed, on bool, onType, offType EventType) {
		if !changed {
			return
		}
		t := offType
		if on {
			t = onType
		}
		events = append(events, Event{
			Timestamp: input.Time,
			Type:      t,
			Flags:     c.flags,
		})
	}

	emit(prev.Charging != c.flags.Charging, c.flags.Charging, EventChargingStart, EventChargingStop)
	emit(prev.WiFi != c.flags.WiFi, c.flags.WiFi, EventWiFiActive, EventWiFiInactive)
	emit(prev.Shutdown != c.flags.Shutdown, c.flags.Shutdown, EventBoardOff, EventBoardOn)
	emit(prev.Searching != c.flags.Searching, c.flags.Searching, EventSearchingStart, EventSearchingStop)

	for _, e := range events {
		c.count(e.Type)
	}

	return events
}

func (c *Classifier) count(t EventType) {
	switch t {
	case EventWiFiActive:
		c.eventCounts.WiFiActive++
	case EventWiFiInactive:
		c.eventCounts.WiFiInactive++
	case EventBoardOff:
		c.eventCounts.BoardOff++
	case EventBoardOn:
		c.eventCounts.BoardOn++
	case EventSearchingStart:
		c.eventCounts.SearchingStart++
	case EventSearchingStop:
		c.eventCounts.SearchingStop++
	case EventChargingStart:
		c.eventCounts.ChargingStart++
	case EventChargingStop:
		c.eventCounts.ChargingStop++
	}
}

// WiFi reports whether the wireless signal is present.
func (c *Classifier) WiFi() bool { return c.flags.WiFi }

// Shutdown reports whether the host board should be considered shut down.
func (c *Classifier) Shutdown() bool { return c.flags.Shutdown }

// SearchingForCharger reports whether the robot is looking for its contact.
func (c *Classifier) SearchingForCharger() bool { return c.flags.Searching }

// Charging reports whether the robot is actively charging.
func (c *Classifier) Charging() bool { return c.flags.Charging }

// Flags returns all four latched flags.
func (c *Classifier) Flags() Flags { return c.flags }

// Cycles returns the number of samples processed.
func (c *Classifier) Cycles() uint64 { return c.cycles }

// IsReady returns whether enough cycles have run for every estimator to
// have confirmed its state.
func (c *Classifier) IsReady() bool {
	return c.cycles >= WarmupCycles
}

// EventCountsSnapshot returns a copy of the event counters.
func (c *Classifier) EventCountsSnapshot() EventCounts {
	return c.eventCounts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if not yet ready, if the
// interval has not elapsed, or if interval is <= 0 (disabled).
func (c *Classifier) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if !c.IsReady() {
		return nil
	}

	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Cycles:    c.cycles,
		Counts:    c.eventCounts,
	}
}
