package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/dock-sensor/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Flags         FlagsJSON    `json:"flags"`
	Lines         []LineJSON   `json:"lines"`
	Ready         bool         `json:"ready"`
	Cycles        uint64       `json:"cycles"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	LastAction    *ActionJSON  `json:"last_action,omitempty"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// FlagsJSON is the JSON representation of the four dock flags.
type FlagsJSON struct {
	WiFi      bool `json:"wifi"`
	Shutdown  bool `json:"shutdown"`
	Searching bool `json:"searching"`
	Charging  bool `json:"charging"`
}

// LineJSON is one analog line with its raw count and converted voltage.
type LineJSON struct {
	Name    string  `json:"name"`
	Raw     uint16  `json:"raw"`
	Voltage float64 `json:"voltage"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	WiFiActive     int `json:"wifi_active"`
	WiFiInactive   int `json:"wifi_inactive"`
	BoardOff       int `json:"board_off"`
	BoardOn        int `json:"board_on"`
	SearchingStart int `json:"searching_start"`
	SearchingStop  int `json:"searching_stop"`
	ChargingStart  int `json:"charging_start"`
	ChargingStop   int `json:"charging_stop"`
}

// ActionJSON is the JSON representation of the last output sequence.
type ActionJSON struct {
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
	Result    string `json:"result"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	ADCDevice   string `json:"adc_device"`
	RedisAddr   string `json:"redis_addr,omitempty"`
}

// LineNames labels the entries of logic.Sample.Raw in order.
var LineNames = [4]string{"A3", "A2", "A1", "A0"}

// Lines converts a sample to its JSON line list.
func Lines(s logic.Sample) []LineJSON {
	raw := s.Raw()
	lines := make([]LineJSON, len(raw))
	for i, r := range raw {
		lines[i] = LineJSON{Name: LineNames[i], Raw: r, Voltage: logic.Voltage(r)}
	}
	return lines
}

func buildInner(snap Snapshot) StatusInner {
	c := snap.Counts
	inner := StatusInner{
		Flags: FlagsJSON{
			WiFi:      snap.Flags.WiFi,
			Shutdown:  snap.Flags.Shutdown,
			Searching: snap.Flags.Searching,
			Charging:  snap.Flags.Charging,
		},
		Lines:         Lines(snap.Raw),
		Ready:         snap.Ready,
		Cycles:        snap.Cycles,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			WiFiActive:     c.WiFiActive,
			WiFiInactive:   c.WiFiInactive,
			BoardOff:       c.BoardOff,
			BoardOn:        c.BoardOn,
			SearchingStart: c.SearchingStart,
			SearchingStop:  c.SearchingStop,
			ChargingStart:  c.ChargingStart,
			ChargingStop:   c.ChargingStop,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			ADCDevice:   snap.Config.ADCDevice,
			RedisAddr:   snap.Config.RedisAddr,
		},
	}
	if a := snap.LastAction; a != nil {
		inner.LastAction = &ActionJSON{
			Name:      a.Name,
			Timestamp: a.Time.UTC().Format(time.RFC3339),
			Result:    a.Result,
		}
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
