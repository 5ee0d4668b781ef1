package fan

import "log"

// Result describes what applying one command did.
type Result struct {
	// State is a copy of the fan state after the command.
	State State
	// Mirror is true when the resulting state must be pushed to the
	// smart-home adapter: button and remote commands happen on hardware the
	// service cannot see. Smart-home commands already carry the echoed value
	// and are not republished.
	Mirror bool
	// Changed is true when the command altered the fan state.
	Changed bool
}

// Controller is the single consumer of the command queue. It owns the one
// process-wide State instance and the indicator-enable flag, applies the
// per-source transition rules, and drives the Actuator. It is not safe for
// concurrent use; exactly one goroutine calls Apply.
type Controller struct {
	state      State
	ledEnabled bool
	act        Actuator
}

// NewController creates a controller with the boot state: fan off,
// oscillation off, stored speed at the top level, indicators enabled.
func NewController(act Actuator) *Controller {
	return &Controller{
		state:      State{On: false, Oscillate: false, Speed: Speed4},
		ledEnabled: true,
		act:        act,
	}
}

// State returns a copy of the current fan state.
func (c *Controller) State() State {
	return c.state
}

// IndicatorsEnabled reports whether the front-fascia indicator LEDs are
// currently enabled.
func (c *Controller) IndicatorsEnabled() bool {
	return c.ledEnabled
}

// Apply runs one command through the transition rules. It flashes the status
// LED while handling, applies the source-specific rule, and unconditionally
// resyncs the speed indicator afterwards. Malformed commands are logged and
// leave the state untouched; Apply never panics and the loop around it never
// halts.
func (c *Controller) Apply(cmd Command) Result {
	c.act.SetStatusLed(true)

	prev := c.state
	prevLed := c.ledEnabled
	mirror := false

	switch cmd.Source {
	case SourceSmartHome:
		c.applySmartHome(cmd)
	case SourceButton:
		c.applyButton(cmd)
		mirror = true
	case SourceRemote:
		c.applyRemote(cmd)
		mirror = true
	default:
		log.Printf("fan: unknown command source %d", cmd.Source)
	}

	// Keep the indicator in lockstep with the actual output, whatever the
	// command did.
	c.act.SetIndicatorSpeed(c.indicatorSpeed())

	c.act.SetStatusLed(false)

	return Result{
		State:   c.state,
		Mirror:  mirror,
		Changed: c.state != prev || c.ledEnabled != prevLed,
	}
}

func (c *Controller) indicatorSpeed() Speed {
	if c.state.On {
		return c.state.Speed
	}
	return SpeedOff
}

// applySmartHome handles service writes. The service tends to send power and
// speed updates together in arbitrary order, so each rule is written to be
// safe regardless of which lands first.
func (c *Controller) applySmartHome(cmd Command) {
	switch cmd.Kind {
	case KindPower:
		if c.state.On == cmd.On {
			// Redundant ON->ON or OFF->OFF write.
			return
		}
		if cmd.On {
			// Resume from the stored speed and oscillation state.
			c.act.SetSpeed(c.state.Speed)
			c.act.SetOscillate(c.state.Oscillate)
		} else {
			c.act.SetSpeed(SpeedOff)
			c.act.SetOscillate(false)
		}
		c.state.On = cmd.On

	case KindOscillate:
		if c.state.On {
			c.act.SetOscillate(cmd.On)
		}
		// Remembered while off, applied at the next power-on.
		c.state.Oscillate = cmd.On

	case KindSpeed:
		if cmd.Speed == SpeedOff {
			// Power events own "off"; a zero speed rides along with one.
			return
		}
		if c.state.On {
			c.act.SetSpeed(cmd.Speed)
		}
		c.state.Speed = cmd.Speed

	default:
		log.Printf("fan: unhandled smarthome command kind %s", cmd.Kind)
	}
}

// applyButton handles the two front-fascia buttons. The power button is the
// odd one out: a single button drives both the power toggle and the speed
// cycle.
func (c *Controller) applyButton(cmd Command) {
	switch cmd.Kind {
	case KindPower:
		// One press steps down through the speeds and finally off:
		//
		//	(off) 4 -> (on) 4 -> 3 -> 2 -> 1 -> (off) 4
		//
		// The +1 when off re-enters the cycle at the stored speed instead
		// of stepping past it.
		next := Speed((int(c.state.Speed) - 1) % int(NumSpeed))
		if !c.state.On {
			next++
		}

		c.act.SetSpeed(next)
		if next != SpeedOff {
			c.act.SetOscillate(c.state.Oscillate)
			c.state.Speed = next
			c.state.On = true
		} else {
			c.act.SetOscillate(false)
			// Store the top speed so the next power-on resumes there.
			c.state.Speed = Speed4
			c.state.On = false
		}

	case KindOscillate:
		if c.state.On {
			c.act.SetOscillate(!c.state.Oscillate)
		}
		c.state.Oscillate = !c.state.Oscillate

	default:
		log.Printf("fan: unhandled button command kind %s", cmd.Kind)
	}
}

// applyRemote handles the five infrared remote buttons.
func (c *Controller) applyRemote(cmd Command) {
	switch cmd.Kind {
	case KindPower:
		// Pure toggle. Turning on restores the stored speed and
		// oscillation; turning off clears the outputs without touching the
		// stored values.
		if c.state.On {
			c.act.SetSpeed(SpeedOff)
			c.act.SetOscillate(false)
		} else {
			c.act.SetSpeed(c.state.Speed)
			c.act.SetOscillate(c.state.Oscillate)
		}
		c.state.On = !c.state.On

	case KindOscillate:
		if c.state.On {
			c.act.SetOscillate(!c.state.Oscillate)
		}
		c.state.Oscillate = !c.state.Oscillate

	case KindSpeed:
		if !c.state.On {
			// Speed presses are ignored while off.
			return
		}
		// Next lower speed with wraparound, never touching SpeedOff:
		//
		//	4 -> 3 -> 2 -> 1 -> 4
		//
		// The -1/+1 pair shifts the levels to start at zero so the modulus
		// skips SpeedOff.
		next := Speed((int(c.state.Speed)-1-1+int(Speed4))%int(Speed4) + 1)
		c.act.SetSpeed(next)
		c.state.Speed = next

	case KindTimeButton, KindTempButton:
		// No timer or thermostat in this fan; the buttons toggle the
		// front-fascia indicator LEDs instead.
		c.ledEnabled = !c.ledEnabled
		c.act.SetIndicatorEnabled(c.ledEnabled)

	default:
		log.Printf("fan: unhandled remote command kind %s", cmd.Kind)
	}
}
