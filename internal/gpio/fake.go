package gpio

import (
	"sync"

	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/fan"
)

// Call records a single actuator operation for test assertions.
type Call struct {
	Op    string // "speed", "oscillate", "indicator", "indicator-enable", "status"
	Speed fan.Speed
	On    bool
}

// FakeActuator is a test double that records every actuator call in order.
type FakeActuator struct {
	mu    sync.Mutex
	calls []Call

	// Enabled mirrors the indicator-enable latch, like the real gateway.
	Enabled bool
}

// NewFakeActuator creates a FakeActuator with indicators enabled, matching
// the hardware boot state.
func NewFakeActuator() *FakeActuator {
	return &FakeActuator{Enabled: true}
}

func (f *FakeActuator) record(c Call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

// SetSpeed records a speed relay write.
func (f *FakeActuator) SetSpeed(speed fan.Speed) {
	f.record(Call{Op: "speed", Speed: speed})
}

// SetOscillate records an oscillation relay write.
func (f *FakeActuator) SetOscillate(on bool) {
	f.record(Call{Op: "oscillate", On: on})
}

// SetIndicatorSpeed records an indicator write. Like the real gateway it is
// gated by the enable latch.
func (f *FakeActuator) SetIndicatorSpeed(speed fan.Speed) {
	f.mu.Lock()
	enabled := f.Enabled
	f.mu.Unlock()
	if !enabled {
		return
	}
	f.record(Call{Op: "indicator", Speed: speed})
}

// SetIndicatorEnabled records the latch change.
func (f *FakeActuator) SetIndicatorEnabled(enabled bool) {
	f.mu.Lock()
	f.Enabled = enabled
	f.mu.Unlock()
	f.record(Call{Op: "indicator-enable", On: enabled})
}

// SetStatusLed records a status LED write.
func (f *FakeActuator) SetStatusLed(on bool) {
	f.record(Call{Op: "status", On: on})
}

// Calls returns a copy of the recorded call sequence.
func (f *FakeActuator) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// RelayCalls returns only the motor relay writes (speed and oscillation),
// in order. Useful for asserting on physical changes without the status LED
// and indicator traffic.
func (f *FakeActuator) RelayCalls() []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Op == "speed" || c.Op == "oscillate" {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears the recorded calls.
func (f *FakeActuator) Reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}
