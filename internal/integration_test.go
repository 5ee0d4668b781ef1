package internal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/button"
	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/fan"
	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/gpio"
	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/mqtt"
	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/status"
)

// drain applies every queued command and publishes the resulting state
// changes, imitating the daemon's run loop.
func drain(t *testing.T, q *fan.Queue, ctrl *fan.Controller, pub *mqtt.FakePublisher, tracker *status.Tracker, counts *status.CommandCounts, now time.Time) {
	t.Helper()

	for {
		select {
		case cmd := <-q.C():
			res := ctrl.Apply(cmd)
			switch cmd.Source {
			case fan.SourceSmartHome:
				counts.SmartHome++
			case fan.SourceButton:
				counts.Button++
			case fan.SourceRemote:
				counts.Remote++
			}
			counts.Dropped = q.Dropped()
			if res.Changed {
				err := pub.PublishState(mqtt.StateEvent{
					Timestamp:   now,
					State:       res.State,
					LedsEnabled: ctrl.IndicatorsEnabled(),
				})
				if err != nil {
					t.Fatalf("publish: %v", err)
				}
			}
			tracker.Update(res.State, ctrl.IndicatorsEnabled(), *counts)
		default:
			return
		}
	}
}

// TestIntegrationFullFlow drives all three command sources through the real
// queue, controller, and telemetry path using fakes for the hardware edges.
func TestIntegrationFullFlow(t *testing.T) {
	q := fan.NewQueue(fan.DefaultQueueCapacity)
	act := gpio.NewFakeActuator()
	ctrl := fan.NewController(act)
	pub := mqtt.NewFakePublisher()
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	tracker := status.NewTracker(start, status.Config{QueueCapacity: fan.DefaultQueueCapacity})
	var counts status.CommandCounts

	clock := button.NewClock()
	powerBtn := button.NewDebouncer(clock, button.DefaultWindow, fan.KindPower, q)
	oscBtn := button.NewDebouncer(clock, button.DefaultWindow, fan.KindOscillate, q)

	// Power press with a bounce burst behind it: exactly one command.
	powerBtn.Trigger(time.Second)
	powerBtn.Trigger(time.Second + 3*time.Millisecond)
	powerBtn.Trigger(time.Second + 40*time.Millisecond)
	drain(t, q, ctrl, pub, tracker, &counts, start)

	if s := ctrl.State(); !s.On || s.Speed != fan.Speed4 {
		t.Fatalf("state after power press = %+v, want on at speed 4", s)
	}
	if counts.Button != 1 {
		t.Fatalf("button count = %d, want 1 after the bounce burst", counts.Button)
	}

	// Oscillate on the shared clock past the debounce window.
	oscBtn.Trigger(2 * time.Second)
	drain(t, q, ctrl, pub, tracker, &counts, start)
	if s := ctrl.State(); !s.Oscillate {
		t.Fatalf("state = %+v, want oscillating", s)
	}

	// Remote speed press steps 4 -> 3.
	q.TryEnqueue(fan.Command{Source: fan.SourceRemote, Kind: fan.KindSpeed})
	drain(t, q, ctrl, pub, tracker, &counts, start)
	if s := ctrl.State(); s.Speed != fan.Speed3 {
		t.Fatalf("speed = %v, want 3", s.Speed)
	}

	// Smart-home write turns the fan off; oscillation is remembered.
	q.TryEnqueue(fan.Command{Source: fan.SourceSmartHome, Kind: fan.KindPower, On: false})
	drain(t, q, ctrl, pub, tracker, &counts, start)
	if s := ctrl.State(); s.On || !s.Oscillate || s.Speed != fan.Speed3 {
		t.Fatalf("state = %+v, want off with speed 3 and oscillation stored", s)
	}

	// Every published payload is well-formed.
	if len(pub.States) != 4 {
		t.Fatalf("published states = %d, want 4", len(pub.States))
	}
	for i, payload := range pub.StatePayloads {
		var parsed mqtt.StatePayload
		if err := json.Unmarshal(payload, &parsed); err != nil {
			t.Fatalf("payload %d: %v", i, err)
		}
		if parsed.Fan.Timestamp == "" {
			t.Errorf("payload %d: missing timestamp", i)
		}
	}
	last := pub.States[len(pub.States)-1]
	if last.State.On || !last.State.Oscillate {
		t.Errorf("final published state = %+v", last.State)
	}

	snap := tracker.Snapshot()
	if snap.Counts != (status.CommandCounts{SmartHome: 1, Button: 2, Remote: 1}) {
		t.Errorf("counts = %+v", snap.Counts)
	}
	if snap.Fan != ctrl.State() {
		t.Errorf("tracker fan = %+v, controller = %+v", snap.Fan, ctrl.State())
	}

	// The final speed relay write must match the off state.
	var lastSpeed fan.Speed
	for _, call := range act.RelayCalls() {
		if call.Op == "speed" {
			lastSpeed = call.Speed
		}
	}
	if lastSpeed != fan.SpeedOff {
		t.Errorf("last speed relay write = %v, want off", lastSpeed)
	}
}

// TestIntegrationQueueOverflow checks that a full queue drops the newest
// commands and keeps counting while the consumer catches up.
func TestIntegrationQueueOverflow(t *testing.T) {
	q := fan.NewQueue(3)
	ctrl := fan.NewController(gpio.NewFakeActuator())
	pub := mqtt.NewFakePublisher()
	tracker := status.NewTracker(time.Now(), status.Config{QueueCapacity: 3})
	var counts status.CommandCounts

	for i := 0; i < 5; i++ {
		q.TryEnqueue(fan.Command{Source: fan.SourceRemote, Kind: fan.KindPower})
	}
	drain(t, q, ctrl, pub, tracker, &counts, time.Now())

	if counts.Remote != 3 {
		t.Errorf("remote count = %d, want 3 accepted", counts.Remote)
	}
	if counts.Dropped != 2 {
		t.Errorf("dropped = %d, want 2", counts.Dropped)
	}
	// Three toggles from off leaves the fan on.
	if s := ctrl.State(); !s.On {
		t.Errorf("state = %+v, want on after three toggles", s)
	}
}

// TestIntegrationLedToggleSuppressesIndicators checks the remote's
// time/temperature buttons gate the indicator LEDs end to end.
func TestIntegrationLedToggleSuppressesIndicators(t *testing.T) {
	q := fan.NewQueue(fan.DefaultQueueCapacity)
	act := gpio.NewFakeActuator()
	ctrl := fan.NewController(act)
	pub := mqtt.NewFakePublisher()
	tracker := status.NewTracker(time.Now(), status.Config{})
	var counts status.CommandCounts

	q.TryEnqueue(fan.Command{Source: fan.SourceRemote, Kind: fan.KindTimeButton})
	q.TryEnqueue(fan.Command{Source: fan.SourceRemote, Kind: fan.KindPower})
	drain(t, q, ctrl, pub, tracker, &counts, time.Now())

	// After the latch opened, the power-on resync must not have produced an
	// indicator write.
	for _, call := range act.Calls() {
		if call.Op == "indicator" {
			t.Errorf("indicator write %+v with the latch disabled", call)
		}
	}
	if tracker.Snapshot().LedsEnabled {
		t.Error("tracker should report leds disabled")
	}
}
