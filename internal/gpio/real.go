//go:build linux

package gpio

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/fan"
)

// Relay boards are active-low.
const (
	relayOn  = 0
	relayOff = 1
)

// LEDs are wired active-high.
const (
	ledOn  = 1
	ledOff = 0
)

// Real drives the relays, LEDs, and buttons on actual hardware.
//
// SetIndicatorEnabled may be called from the consumer goroutine while a test
// or future caller reads the flag elsewhere, so the latch is atomic. All
// output writes come from the single consumer goroutine.
type Real struct {
	chip *gpiocdev.Chip

	speedRelays [4]*gpiocdev.Line
	oscRelay    *gpiocdev.Line
	speedLeds   [4]*gpiocdev.Line
	statusLed   *gpiocdev.Line
	buttons     []*gpiocdev.Line

	pins       Pins
	ledEnabled atomic.Bool
}

// NewReal opens the GPIO chip and claims every output line, all initially
// inactive: relays released, LEDs dark. Indicators start enabled.
func NewReal(chipName string, pins Pins) (*Real, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &Real{chip: chip, pins: pins}
	r.ledEnabled.Store(true)

	claim := func(dst **gpiocdev.Line, pin, initial int, what string) error {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(initial))
		if err != nil {
			return fmt.Errorf("request %s pin %d: %w", what, pin, err)
		}
		*dst = line
		return nil
	}

	for i, pin := range pins.SpeedRelays {
		if err := claim(&r.speedRelays[i], pin, relayOff, fmt.Sprintf("speed %d relay", i+1)); err != nil {
			r.Close()
			return nil, err
		}
	}
	if err := claim(&r.oscRelay, pins.OscRelay, relayOff, "oscillation relay"); err != nil {
		r.Close()
		return nil, err
	}
	for i, pin := range pins.SpeedLeds {
		if err := claim(&r.speedLeds[i], pin, ledOff, fmt.Sprintf("speed %d led", i+1)); err != nil {
			r.Close()
			return nil, err
		}
	}
	if err := claim(&r.statusLed, pins.StatusLed, ledOff, "status led"); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

// WatchButtons claims the two button lines as inputs with pull-down and
// rising-edge events. Each edge is forwarded to the matching trigger with
// the kernel's monotonic event timestamp; the triggers run in gpiocdev's
// event goroutine and must not block.
func (r *Real) WatchButtons(onPower, onOscillate func(time.Duration)) error {
	watch := func(pin int, trigger func(time.Duration), what string) error {
		line, err := r.chip.RequestLine(pin,
			gpiocdev.AsInput,
			gpiocdev.WithPullDown,
			gpiocdev.WithRisingEdge,
			gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
				trigger(evt.Timestamp)
			}))
		if err != nil {
			return fmt.Errorf("request %s button pin %d: %w", what, pin, err)
		}
		r.buttons = append(r.buttons, line)
		return nil
	}

	if err := watch(r.pins.PowerButton, onPower, "power"); err != nil {
		return err
	}
	return watch(r.pins.OscButton, onOscillate, "oscillate")
}

func (r *Real) set(line *gpiocdev.Line, value int, what string) {
	if line == nil {
		return
	}
	if err := line.SetValue(value); err != nil {
		// Fire-and-forget contract: log and move on.
		log.Printf("gpio: set %s: %v", what, err)
	}
}

// SetSpeed releases all four speed relays, then energizes the one for the
// given speed. The clear-before-set order is a hardware safety requirement:
// two energized windings would fight each other.
func (r *Real) SetSpeed(speed fan.Speed) {
	for i, line := range r.speedRelays {
		r.set(line, relayOff, fmt.Sprintf("speed %d relay", i+1))
	}
	if speed < fan.Speed1 || speed > fan.Speed4 {
		return
	}
	r.set(r.speedRelays[speed-1], relayOn, fmt.Sprintf("speed %d relay", speed))
}

// SetOscillate switches the oscillation motor relay.
func (r *Real) SetOscillate(on bool) {
	v := relayOff
	if on {
		v = relayOn
	}
	r.set(r.oscRelay, v, "oscillation relay")
}

// SetIndicatorSpeed lights the indicator LED for the given speed, clearing
// the others first. No-op while indicators are disabled.
func (r *Real) SetIndicatorSpeed(speed fan.Speed) {
	if !r.ledEnabled.Load() {
		return
	}
	for i, line := range r.speedLeds {
		r.set(line, ledOff, fmt.Sprintf("speed %d led", i+1))
	}
	if speed < fan.Speed1 || speed > fan.Speed4 {
		return
	}
	r.set(r.speedLeds[speed-1], ledOn, fmt.Sprintf("speed %d led", speed))
}

// SetIndicatorEnabled latches the indicator LEDs on or off. Disabling clears
// them immediately; re-enabling leaves them dark until the next indicator
// resync lights the right one.
func (r *Real) SetIndicatorEnabled(enabled bool) {
	r.ledEnabled.Store(enabled)
	if !enabled {
		for i, line := range r.speedLeds {
			r.set(line, ledOff, fmt.Sprintf("speed %d led", i+1))
		}
	}
}

// SetStatusLed drives the built-in activity LED.
func (r *Real) SetStatusLed(on bool) {
	v := ledOff
	if on {
		v = ledOn
	}
	r.set(r.statusLed, v, "status led")
}

// Close releases every claimed line and the chip. Outputs are reconfigured
// to inputs first so the relays drop out and the pins sit in their boot-safe
// state for the next start.
func (r *Real) Close() error {
	var errs []error

	release := func(line *gpiocdev.Line, what string) {
		if line == nil {
			return
		}
		if err := line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s: %w", what, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", what, err))
		}
	}

	for i, line := range r.speedRelays {
		release(line, fmt.Sprintf("speed %d relay", i+1))
	}
	release(r.oscRelay, "oscillation relay")
	for i, line := range r.speedLeds {
		release(line, fmt.Sprintf("speed %d led", i+1))
	}
	release(r.statusLed, "status led")
	for _, line := range r.buttons {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button line: %w", err))
		}
	}

	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
