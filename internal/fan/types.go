// Package fan contains the control core of the fan: the command model, the
// bounded command queue, and the state machine that turns commands into
// actuator writes. This package has NO hardware dependencies (no GPIO, LIRC,
// MQTT, or HomeKit imports); producers hand it Commands and it talks to the
// hardware only through the Actuator interface.
package fan

// Speed represents one of the fan's discrete speed levels.
type Speed int

// Speed levels. Off doubles as "no relay energized".
const (
	SpeedOff Speed = iota
	Speed1
	Speed2
	Speed3
	Speed4

	// NumSpeed is used for cycle arithmetic, never as a real level.
	NumSpeed
)

// String returns a human-readable speed label for logs and status pages.
func (s Speed) String() string {
	switch s {
	case SpeedOff:
		return "OFF"
	case Speed1:
		return "1"
	case Speed2:
		return "2"
	case Speed3:
		return "3"
	case Speed4:
		return "4"
	}
	return "INVALID"
}

// Percent maps a speed level onto the 0-100 scale used by the smart-home
// service (25 per level, four levels).
func (s Speed) Percent() int {
	if s < SpeedOff || s > Speed4 {
		return 0
	}
	return 25 * int(s)
}

// Source identifies which producer created a command.
type Source int

const (
	SourceSmartHome Source = iota // smart-home service write
	SourceButton                  // front-fascia push button
	SourceRemote                  // infrared remote
)

func (s Source) String() string {
	switch s {
	case SourceSmartHome:
		return "smarthome"
	case SourceButton:
		return "button"
	case SourceRemote:
		return "remote"
	}
	return "unknown"
}

// Kind identifies what a command asks for.
type Kind int

const (
	KindPower      Kind = iota // power state change
	KindOscillate              // oscillation change
	KindSpeed                  // speed change
	KindTimeButton             // remote clock button (remote only)
	KindTempButton             // remote temperature button (remote only)
)

func (k Kind) String() string {
	switch k {
	case KindPower:
		return "power"
	case KindOscillate:
		return "oscillate"
	case KindSpeed:
		return "speed"
	case KindTimeButton:
		return "time"
	case KindTempButton:
		return "temperature"
	}
	return "unknown"
}

// Command is a discrete control intent from one of the three producers.
// Commands are immutable values: created by a producer, enqueued once,
// consumed once by the controller.
//
// On carries the argument for smart-home Power/Oscillate commands and Speed
// carries it for smart-home Speed commands. Button and remote commands carry
// no argument; their effect depends on current state.
type Command struct {
	Source Source
	Kind   Kind
	On     bool
	Speed  Speed
}

// State is the authoritative in-memory representation of the fan.
// When On is false the physical outputs reflect off/no-oscillation; Speed and
// Oscillate then act as memory for the next power-on.
//
// Exactly one State instance exists per process, owned by the Controller.
// Everyone else sees copies.
type State struct {
	On        bool
	Oscillate bool
	Speed     Speed
}

// Actuator abstracts the relay and LED hardware. Implementations own no fan
// state beyond the indicator-enable latch, must tolerate redundant calls, and
// must clear all speed outputs before asserting a new one so that two motor
// windings are never energized at once. Calls are fire-and-forget; hardware
// errors are logged by the implementation, never returned to the core.
type Actuator interface {
	// SetSpeed energizes the relay for the given speed (none for SpeedOff).
	SetSpeed(Speed)
	// SetOscillate switches the oscillation motor relay.
	SetOscillate(bool)
	// SetIndicatorSpeed lights the indicator LED for the given speed.
	// No-op while indicators are disabled.
	SetIndicatorSpeed(Speed)
	// SetIndicatorEnabled latches the indicator LEDs on or off. Disabling
	// clears all indicator LEDs immediately.
	SetIndicatorEnabled(bool)
	// SetStatusLed drives the board's built-in activity LED.
	SetStatusLed(bool)
}
