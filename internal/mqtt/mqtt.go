// Package mqtt publishes fan state and lifecycle telemetry with an
// abstraction for testing. Publishing is strictly outbound: commands never
// arrive over MQTT, only over HomeKit, the buttons, and the remote.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/fan"
)

// TopicState is the MQTT topic for fan state changes.
const TopicState = "home/fan/state"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/fan/system"

// StateEvent is one published fan state change.
type StateEvent struct {
	Timestamp   time.Time
	State       fan.State
	LedsEnabled bool
}

// SystemEvent represents a system lifecycle event (startup, shutdown,
// heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g. "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g. "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // pre-formatted JSON payload; overrides the default format
	Retained   bool   // whether the broker should retain the message
}

// Publisher publishes fan telemetry.
type Publisher interface {
	// PublishState sends a fan state change. Errors never crash the
	// control loop.
	PublishState(event StateEvent) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// StatePayload is the MQTT message payload for a state change.
type StatePayload struct {
	Fan FanPayload `json:"fan"`
}

// FanPayload carries the externally visible fan values: the same three the
// smart-home service sees, plus the indicator latch.
type FanPayload struct {
	Timestamp    string `json:"timestamp"`
	On           bool   `json:"on"`
	Swing        bool   `json:"swing"`
	Speed        string `json:"speed"`
	SpeedPercent int    `json:"speed_percent"`
	LedsEnabled  bool   `json:"leds_enabled"`
}

// FormatStatePayload creates the JSON payload for a state change.
func FormatStatePayload(event StateEvent) ([]byte, error) {
	payload := StatePayload{
		Fan: FanPayload{
			Timestamp:    event.Timestamp.UTC().Format(time.RFC3339),
			On:           event.State.On,
			Swing:        event.State.Oscillate,
			Speed:        event.State.Speed.String(),
			SpeedPercent: event.State.Speed.Percent(),
			LedsEnabled:  event.LedsEnabled,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the MQTT message payload for simple system events that
// carry no status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event. If
// event.RawPayload is set it is returned directly (used for full status
// snapshots).
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
