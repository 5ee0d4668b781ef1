package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/fan"
)

func TestFormatStatePayload(t *testing.T) {
	event := StateEvent{
		Timestamp:   time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		State:       fan.State{On: true, Oscillate: true, Speed: fan.Speed3},
		LedsEnabled: true,
	}

	payload, err := FormatStatePayload(event)
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	var parsed StatePayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.Fan.Timestamp != "2026-03-14T09:26:53Z" {
		t.Errorf("timestamp = %q", parsed.Fan.Timestamp)
	}
	if !parsed.Fan.On || !parsed.Fan.Swing {
		t.Errorf("on=%v swing=%v, want both true", parsed.Fan.On, parsed.Fan.Swing)
	}
	if parsed.Fan.Speed != "3" || parsed.Fan.SpeedPercent != 75 {
		t.Errorf("speed = %q/%d, want 3/75", parsed.Fan.Speed, parsed.Fan.SpeedPercent)
	}
	if !parsed.Fan.LedsEnabled {
		t.Error("leds_enabled should be true")
	}
}

func TestFormatStatePayloadOff(t *testing.T) {
	payload, err := FormatStatePayload(StateEvent{
		Timestamp: time.Now(),
		State:     fan.State{Speed: fan.Speed4},
	})
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	var parsed StatePayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.Fan.On {
		t.Error("on should be false")
	}
	// The stored speed is still reported, matching what a power-on resumes.
	if parsed.Fan.Speed != "4" {
		t.Errorf("speed = %q, want 4", parsed.Fan.Speed)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	var parsed SystemPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.System.Event != "SHUTDOWN" || parsed.System.Reason != "SIGTERM" {
		t.Errorf("system = %+v", parsed.System)
	}
	if parsed.System.Timestamp != "2026-03-14T09:26:53Z" {
		t.Errorf("timestamp = %q", parsed.System.Timestamp)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "STARTUP"})
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	var raw map[string]map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := raw["system"]["reason"]; ok {
		t.Error("empty reason should be omitted")
	}
}

func TestFormatSystemPayloadRawOverride(t *testing.T) {
	raw := []byte(`{"status":{"event":"HEARTBEAT"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "HEARTBEAT", RawPayload: raw})
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("payload = %s, want the raw override", payload)
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()

	err := f.PublishState(StateEvent{Timestamp: time.Now(), State: fan.State{On: true, Speed: fan.Speed1}})
	if err != nil {
		t.Fatalf("publish state: %v", err)
	}
	if err := f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP"}); err != nil {
		t.Fatalf("publish system: %v", err)
	}

	if len(f.States) != 1 || len(f.StatePayloads) != 1 {
		t.Errorf("states = %d/%d payloads, want 1/1", len(f.States), len(f.StatePayloads))
	}
	if len(f.SystemEvents) != 1 {
		t.Errorf("system events = %d, want 1", len(f.SystemEvents))
	}

	f.Reset()
	if len(f.States) != 0 || len(f.SystemEvents) != 0 {
		t.Error("reset should clear recorded events")
	}
}
