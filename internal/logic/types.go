// Package logic contains pure signal-classification logic for the dock base station.
// This package has NO external dependencies (no ADC, GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Raw ADC thresholds. All values are 12-bit counts (0-4095).
const (
	HighThreshold     = 2000 // strictly above = high
	ChargeLowMax      = 100  // strictly below = low on the charge line
	WiFiLowMax        = 300  // strictly below = wireless signal present
	SearchingLowMax   = 500  // strictly below = contact line idle
	ShutdownRangeMax  = 900  // inclusive upper bound for a dead line
	MaxRaw            = 4095 // full scale of the 12-bit converter
	ReferenceVoltage  = 3.3
	ChargeTogglesMin  = 4 // alternations before charging is confirmed
	WiFiStableSamples = 2 // same-zone samples before the wifi latch moves
	ShutdownStreak    = 3
	SearchingStreak   = 3
)

// Sample is one snapshot of the four sense lines, named after the board labels.
type Sample struct {
	A3 uint16 // wireless module indicator
	A2 uint16 // host board supply
	A1 uint16 // charge oscillation line
	A0 uint16 // charger contact presence
}

// Raw returns the sample in board order A3, A2, A1, A0.
func (s Sample) Raw() [4]uint16 {
	return [4]uint16{s.A3, s.A2, s.A1, s.A0}
}

// Voltage converts a raw 12-bit reading to volts.
func Voltage(raw uint16) float64 {
	return float64(raw) * ReferenceVoltage / float64(MaxRaw)
}

// Input represents a single sample taken at a point in time.
type Input struct {
	Sample Sample
	Time   time.Time
}

// Flags is the latched output of one classification cycle.
// Every combination is representable; the classifier never arbitrates.
type Flags struct {
	WiFi      bool
	Shutdown  bool
	Searching bool
	Charging  bool
}

// EventType represents a latched flag transition.
type EventType string

const (
	EventWiFiActive     EventType = "WIFI_ACTIVE"
	EventWiFiInactive   EventType = "WIFI_INACTIVE"
	EventBoardOff       EventType = "BOARD_OFF"
	EventBoardOn        EventType = "BOARD_ON"
	EventSearchingStart EventType = "SEARCHING_START"
	EventSearchingStop  EventType = "SEARCHING_STOP"
	EventChargingStart  EventType = "CHARGING_START"
	EventChargingStop   EventType = "CHARGING_STOP"
)

// Event represents a flag transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Flags     Flags
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	WiFiActive     int
	WiFiInactive   int
	BoardOff       int
	BoardOn        int
	SearchingStart int
	SearchingStop  int
	ChargingStart  int
	ChargingStop   int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Cycles    uint64
	Counts    EventCounts
}
