//go:build !linux

package ir

import (
	"context"
	"errors"

	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/fan"
)

// DefaultDevice is the LIRC receiver character device.
const DefaultDevice = "/dev/lirc0"

// Receiver is not available on non-Linux platforms.
type Receiver struct{}

// NewReceiver returns an error on non-Linux platforms.
func NewReceiver(device string, dec Decoder, queue *fan.Queue) (*Receiver, error) {
	return nil, errors.New("ir: lirc capture not supported on this platform (requires Linux)")
}

// Run is not implemented on non-Linux platforms.
func (r *Receiver) Run(ctx context.Context) error {
	return errors.New("ir: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *Receiver) Close() error {
	return nil
}
