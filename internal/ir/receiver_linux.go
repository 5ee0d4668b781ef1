//go:build linux

package ir

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/fan"
)

// DefaultDevice is the LIRC receiver character device.
const DefaultDevice = "/dev/lirc0"

// Receiver reads raw pulse timings from a LIRC receiver device and feeds
// decoded commands into the queue.
type Receiver struct {
	f *os.File
	a *assembler
}

// NewReceiver opens the LIRC device. The kernel delivers mode-2 sample words
// on read; no ioctl setup is needed for receive.
func NewReceiver(device string, dec Decoder, queue *fan.Queue) (*Receiver, error) {
	f, err := os.Open(device)
	if err != nil {
		return nil, fmt.Errorf("open lirc device %s: %w", device, err)
	}
	return &Receiver{f: f, a: newAssembler(dec, queue)}, nil
}

// Run reads sample words until the device is closed or the context is done.
// Read errors after cancellation are reported as nil; the capture path has
// no other way to stop a blocking read than closing the file.
func (r *Receiver) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		r.f.Close()
	}()

	buf := make([]byte, 4*FrameLen*2)
	for {
		n, err := r.f.Read(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, fs.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read lirc device: %w", err)
		}
		for i := 0; i+4 <= n; i += 4 {
			r.a.feed(binary.LittleEndian.Uint32(buf[i : i+4]))
		}
	}
}

// Close releases the device.
func (r *Receiver) Close() error {
	return r.f.Close()
}
