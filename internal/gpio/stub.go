//go:build !linux

package gpio

import (
	"errors"
	"time"

	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/fan"
)

// Real is not available on non-Linux platforms.
type Real struct{}

// NewReal returns an error on non-Linux platforms.
func NewReal(chipName string, pins Pins) (*Real, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// WatchButtons is not implemented on non-Linux platforms.
func (r *Real) WatchButtons(onPower, onOscillate func(time.Duration)) error {
	return errors.New("gpio: not supported")
}

// SetSpeed is not implemented on non-Linux platforms.
func (r *Real) SetSpeed(fan.Speed) {}

// SetOscillate is not implemented on non-Linux platforms.
func (r *Real) SetOscillate(bool) {}

// SetIndicatorSpeed is not implemented on non-Linux platforms.
func (r *Real) SetIndicatorSpeed(fan.Speed) {}

// SetIndicatorEnabled is not implemented on non-Linux platforms.
func (r *Real) SetIndicatorEnabled(bool) {}

// SetStatusLed is not implemented on non-Linux platforms.
func (r *Real) SetStatusLed(bool) {}

// Close is not implemented on non-Linux platforms.
func (r *Real) Close() error { return nil }
