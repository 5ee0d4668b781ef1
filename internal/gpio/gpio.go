// Package gpio drives the fan's output hardware and button inputs through
// the Linux GPIO character device. The real implementation satisfies
// fan.Actuator; the fake records every call for test assertions.
//
// The relay modules are active-low: a logic low energizes the relay. The
// speed relays switch the four motor windings, so writes always clear all
// four before asserting at most one.
package gpio

// Default pin assignments (BCM numbering).
const (
	DefaultPinPowerButton = 5
	DefaultPinOscButton   = 6

	DefaultPinSpeed1Relay = 17
	DefaultPinSpeed2Relay = 27
	DefaultPinSpeed3Relay = 22
	DefaultPinSpeed4Relay = 23
	DefaultPinOscRelay    = 24

	DefaultPinSpeed1Led = 12
	DefaultPinSpeed2Led = 16
	DefaultPinSpeed3Led = 20
	DefaultPinSpeed4Led = 21
	DefaultPinStatusLed = 26
)

// DefaultChip is the GPIO character device name.
const DefaultChip = "gpiochip0"

// Pins collects every pin the controller uses.
type Pins struct {
	PowerButton int
	OscButton   int

	SpeedRelays [4]int
	OscRelay    int

	SpeedLeds [4]int
	StatusLed int
}

// DefaultPins returns the stock wiring.
func DefaultPins() Pins {
	return Pins{
		PowerButton: DefaultPinPowerButton,
		OscButton:   DefaultPinOscButton,
		SpeedRelays: [4]int{DefaultPinSpeed1Relay, DefaultPinSpeed2Relay, DefaultPinSpeed3Relay, DefaultPinSpeed4Relay},
		OscRelay:    DefaultPinOscRelay,
		SpeedLeds:   [4]int{DefaultPinSpeed1Led, DefaultPinSpeed2Led, DefaultPinSpeed3Led, DefaultPinSpeed4Led},
		StatusLed:   DefaultPinStatusLed,
	}
}
