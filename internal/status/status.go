// Package status provides a thread-safe status tracker for the dock-sensor daemon.
// It is read by the HTTP handlers and the MQTT status events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/dock-sensor/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	ADCDevice   string
	RedisAddr   string // empty = disabled
}

// ActionResult records the most recent output sequence.
type ActionResult struct {
	Name   string
	Time   time.Time
	Result string // "started", "ok", "busy", or an error message
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Flags         logic.Flags
	Raw           logic.Sample
	Cycles        uint64
	Ready         bool
	Counts        logic.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
	LastAction    *ActionResult
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the flags, last sample, cycle count, readiness and event counts.
// Called from runLoop on every tick.
func (t *Tracker) Update(flags logic.Flags, raw logic.Sample, cycles uint64, ready bool, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Flags = flags
	t.snap.Raw = raw
	t.snap.Cycles = cycles
	t.snap.Ready = ready
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// SetLastAction records the outcome of an output sequence.
func (t *Tracker) SetLastAction(name string, at time.Time, result string) {
	t.mu.Lock()
	t.snap.LastAction = &ActionResult{Name: name, Time: at, Result: result}
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	if s.LastAction != nil {
		a := *s.LastAction
		s.LastAction = &a
	}
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
