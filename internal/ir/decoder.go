// Package ir decodes the fan remote's infrared pulse trains into commands.
// The decoder itself is pure: it consumes one captured frame of mark/space
// timings and either produces a command or nothing. The hardware capture
// mechanism lives behind the PulseSource/Receiver split so the bit logic is
// testable with synthetic frames.
package ir

import (
	"time"

	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/fan"
)

// Protocol constants for the fan's remote. One button press fills the
// receiver's 48-symbol buffer; the leading 11 mark/space pairs carry the
// code, most significant bit first.
const (
	// FrameLen is the exact number of mark/space pairs in a valid frame.
	// Anything else is noise.
	FrameLen = 48

	// CodeBits is the number of bits in a remote code.
	CodeBits = 11

	// durationShort and durationLong are the two pulse templates.
	durationShort = 400 * time.Microsecond
	durationLong  = 1200 * time.Microsecond

	// durationMargin is the classification tolerance around a template.
	durationMargin = 200 * time.Microsecond
)

// The five 11-bit codes the remote transmits.
const (
	CodePower       = 0x13F
	CodeOscillate   = 0x13B
	CodeSpeed       = 0x13D
	CodeTime        = 0x13E
	CodeTemperature = 0x12F
)

// Pulse is one mark/space timing pair from an infrared reception window.
type Pulse struct {
	Mark  time.Duration
	Space time.Duration
}

// Bit is the classification of a single pulse.
type Bit int

const (
	BitZero    Bit = iota // (long, short)
	BitOne                // (short, long)
	BitInvalid            // matches neither template
)

// RecoveryPolicy selects what the decoder does when an 11-bit window fails,
// either on an unclassifiable pair or on a code-table miss.
type RecoveryPolicy int

const (
	// RestartNextPair resets accumulation and resumes from the next pair in
	// the same frame. This recovers a code whose leading edge was corrupted
	// without discarding the whole reception window.
	RestartNextPair RecoveryPolicy = iota

	// DiscardFrame abandons the remainder of the frame on the first failed
	// window.
	DiscardFrame
)

func inRange(d, template time.Duration) bool {
	return d > template-durationMargin && d < template+durationMargin
}

// ClassifyPair maps one mark/space pair onto a logic level:
// logic 0 is (~1200us, ~400us), logic 1 is (~400us, ~1200us), both within
// +/-200us. Everything else is invalid.
func ClassifyPair(p Pulse) Bit {
	switch {
	case inRange(p.Mark, durationLong) && inRange(p.Space, durationShort):
		return BitZero
	case inRange(p.Mark, durationShort) && inRange(p.Space, durationLong):
		return BitOne
	}
	return BitInvalid
}

// commandForCode maps a complete 11-bit code onto a remote command.
func commandForCode(code uint16) (fan.Command, bool) {
	cmd := fan.Command{Source: fan.SourceRemote}
	switch code {
	case CodePower:
		cmd.Kind = fan.KindPower
	case CodeOscillate:
		cmd.Kind = fan.KindOscillate
	case CodeSpeed:
		cmd.Kind = fan.KindSpeed
	case CodeTime:
		cmd.Kind = fan.KindTimeButton
	case CodeTemperature:
		cmd.Kind = fan.KindTempButton
	default:
		return fan.Command{}, false
	}
	return cmd, true
}

// Decoder turns captured frames into commands. The zero value uses the
// RestartNextPair policy.
type Decoder struct {
	Policy RecoveryPolicy
}

// Decode scans one frame for a valid code and returns the mapped command.
// Frames that are not exactly FrameLen pairs long are noise and are dropped
// whole. Bits accumulate most-significant-first over 11-pair windows; a
// window that fails (invalid pair or unknown code) is handled per the
// recovery policy. At most one command is emitted per frame, and no decoder
// state survives the call.
func (d Decoder) Decode(frame []Pulse) (fan.Command, bool) {
	if len(frame) != FrameLen {
		return fan.Command{}, false
	}

	var code uint16
	bits := 0
	for _, p := range frame {
		switch ClassifyPair(p) {
		case BitOne:
			code |= 1 << (CodeBits - bits - 1)
			bits++
		case BitZero:
			bits++
		default:
			if d.Policy == DiscardFrame {
				return fan.Command{}, false
			}
			// Abort this window only; the corrupt pair is consumed and
			// accumulation restarts at the next one.
			code, bits = 0, 0
			continue
		}

		if bits == CodeBits {
			if cmd, ok := commandForCode(code); ok {
				return cmd, true
			}
			if d.Policy == DiscardFrame {
				return fan.Command{}, false
			}
			code, bits = 0, 0
		}
	}

	return fan.Command{}, false
}
