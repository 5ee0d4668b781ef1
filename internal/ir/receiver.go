package ir

import (
	"log"
	"time"

	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/fan"
)

// LIRC mode-2 sample words: the high byte carries the sample type and the
// low 24 bits the duration in microseconds.
const (
	lircModeMask  = 0xff000000
	lircValueMask = 0x00ffffff

	lircSpace     = 0x00000000
	lircPulse     = 0x01000000
	lircFrequency = 0x02000000
	lircTimeout   = 0x03000000
)

// frameGap is the space duration that terminates a reception window. The
// remote's longest in-frame space is ~1200us; anything past this is the gap
// between presses.
const frameGap = 12 * time.Millisecond

// assembler folds a stream of LIRC mode-2 words into mark/space pairs,
// closes a frame on a gap or receiver timeout, and hands complete frames to
// the decoder. Decoded commands are enqueued with the same non-blocking
// drop-on-full discipline as the buttons.
type assembler struct {
	dec   Decoder
	queue *fan.Queue

	pairs    []Pulse
	mark     time.Duration
	haveMark bool
}

func newAssembler(dec Decoder, queue *fan.Queue) *assembler {
	return &assembler{
		dec:   dec,
		queue: queue,
		pairs: make([]Pulse, 0, FrameLen+1),
	}
}

// feed consumes one sample word.
func (a *assembler) feed(word uint32) {
	value := time.Duration(word&lircValueMask) * time.Microsecond

	switch word & lircModeMask {
	case lircPulse:
		// Two marks in a row means we lost a space somewhere; keep the
		// newer one so the frame length check catches the damage.
		a.mark = value
		a.haveMark = true

	case lircSpace:
		if a.haveMark {
			a.pairs = append(a.pairs, Pulse{Mark: a.mark, Space: value})
			a.haveMark = false
		}
		if value >= frameGap {
			a.endFrame()
		}

	case lircTimeout:
		a.endFrame()

	case lircFrequency:
		// Carrier report, not timing data.
	}
}

// endFrame closes the current reception window. Only exact-length frames
// reach the decoder; everything else is noise and is dropped whole.
func (a *assembler) endFrame() {
	defer func() {
		a.pairs = a.pairs[:0]
		a.haveMark = false
	}()

	if len(a.pairs) != FrameLen {
		return
	}
	cmd, ok := a.dec.Decode(a.pairs)
	if !ok {
		return
	}
	if !a.queue.TryEnqueue(cmd) {
		log.Printf("ir: queue full, dropping %s command", cmd.Kind)
	}
}
