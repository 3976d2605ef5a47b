// Package mqtt provides MQTT publishing and command intake with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sweeney/dock-sensor/internal/logic"
)

// Topic is the MQTT topic for dock flag events.
const Topic = "robot/dock/sensor/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "robot/dock/sensor/system"

// TopicCommand is the MQTT topic the daemon listens on for output commands.
const TopicCommand = "robot/dock/sensor/command"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a flag event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommandSource delivers commands received from the broker.
type CommandSource interface {
	// Subscribe registers handler for commands on TopicCommand.
	// The handler runs on the client's callback goroutine and must not block.
	Subscribe(handler func(Command)) error
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Dock DockPayload `json:"dock"`
}

// DockPayload contains the flag event details.
type DockPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	WiFi      bool   `json:"wifi"`
	Shutdown  bool   `json:"shutdown"`
	Searching bool   `json:"searching"`
	Charging  bool   `json:"charging"`
}

// FormatPayload creates the JSON payload for a flag event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Dock: DockPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			WiFi:      event.Flags.WiFi,
			Shutdown:  event.Flags.Shutdown,
			Searching: event.Flags.Searching,
			Charging:  event.Flags.Charging,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// willPayload is published by the broker if the connection drops uncleanly.
// It has no timestamp: the broker sends it verbatim at an unknown time.
func willPayload() []byte {
	data, _ := json.Marshal(SystemPayload{System: SystemPayloadInner{Event: "OFFLINE", Reason: "LWT"}})
	return data
}

// Command is a request to run an output sequence.
type Command struct {
	Name string `json:"command"`
}

// ErrUnknownCommand is returned by ParseCommand for unrecognized commands.
var ErrUnknownCommand = errors.New("mqtt: unknown command")

// Known command names.
const (
	CommandRestart     = "restart"
	CommandGoToCharger = "go_to_charger"
)

// ParseCommand decodes a command payload. Both {"command":"restart"} and the
// bare word restart are accepted.
func ParseCommand(payload []byte) (Command, error) {
	var cmd Command
	text := strings.TrimSpace(string(payload))
	if strings.HasPrefix(text, "{") {
		if err := json.Unmarshal([]byte(text), &cmd); err != nil {
			return Command{}, fmt.Errorf("decode command: %w", err)
		}
	} else {
		cmd.Name = text
	}

	switch cmd.Name {
	case CommandRestart, CommandGoToCharger:
		return cmd, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
}
