// Package button turns raw push-button edges into fan commands. The trigger
// path runs in interrupt context (a gpio edge-event callback), so it is
// allocation-free, never blocks, and guards its debounce timestamp with an
// atomic compare-and-swap instead of a lock.
package button

import (
	"sync/atomic"
	"time"

	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/fan"
)

// DefaultWindow is the minimum spacing between accepted presses.
const DefaultWindow = 250 * time.Millisecond

// Clock records the monotonic timestamp of the last accepted edge. The
// original control board used one timestamp for both buttons, so pressing
// power and oscillate within the window suppressed the second press; whether
// the two buttons share a Clock or get one each is the caller's policy
// choice.
type Clock struct {
	last atomic.Int64
}

// NewClock creates a clock with no accepted edges. The first edge at or past
// the window from the zero timestamp is accepted.
func NewClock() *Clock {
	return &Clock{}
}

// Accept reports whether an edge at the given monotonic timestamp clears the
// debounce window, and records it if so. A failed compare-and-swap means a
// concurrent edge was just accepted, which makes this one a bounce by
// definition.
func (c *Clock) Accept(now, window time.Duration) bool {
	last := c.last.Load()
	if int64(now)-last < int64(window) {
		return false
	}
	return c.last.CompareAndSwap(last, int64(now))
}

// Debouncer is one edge source: a button bound to a clock, a debounce
// window, a prebuilt command, and the queue.
type Debouncer struct {
	clock  *Clock
	window time.Duration
	cmd    fan.Command
	queue  *fan.Queue
}

// NewDebouncer builds an edge source emitting the given command kind. Both
// fascia buttons are command sources with no argument; the controller works
// out the effect from current state.
func NewDebouncer(clock *Clock, window time.Duration, kind fan.Kind, queue *fan.Queue) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{
		clock:  clock,
		window: window,
		cmd:    fan.Command{Source: fan.SourceButton, Kind: kind},
		queue:  queue,
	}
}

// Trigger handles one rising edge with the given monotonic timestamp
// (kernel event timestamps on real hardware). Edges inside the debounce
// window are bounces and are discarded. A full queue silently drops the
// press; that is never fatal and the clock still advances, so a dropped
// press does not re-fire on the next bounce.
func (d *Debouncer) Trigger(now time.Duration) bool {
	if !d.clock.Accept(now, d.window) {
		return false
	}
	return d.queue.TryEnqueue(d.cmd)
}
