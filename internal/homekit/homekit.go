// Package homekit is the smart-home adapter: it exposes the fan as a
// HomeKit accessory, converts characteristic writes into commands, and
// mirrors the controller's state back into the characteristic values.
//
// Pairing, sessions, and transport all belong to the HAP library; this
// package only maps between characteristics and the command model.
package homekit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/brutella/hap"
	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"

	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/fan"
)

// DefaultEnqueueWait bounds how long an inbound characteristic write may
// wait for queue space. The adapter runs in its own task, so unlike the
// interrupt-class producers it is allowed a short blocking enqueue.
const DefaultEnqueueWait = 100 * time.Millisecond

// Config carries the adapter settings.
type Config struct {
	Name         string // accessory name shown in the Home app
	StoreDir     string // on-disk pairing store
	Pin          string // setup code, xxxxxxxx
	Addr         string // optional listen address, host:port
	EnqueueWait  time.Duration
	Manufacturer string
	Model        string
	Firmware     string
}

// Adapter owns the HomeKit accessory and its three fan characteristics.
type Adapter struct {
	cfg   Config
	queue *fan.Queue
	wait  time.Duration

	acc      *accessory.A
	on       *characteristic.On
	swing    *characteristic.SwingMode
	rotation *characteristic.RotationSpeed
}

// New builds the fan accessory and wires characteristic writes into the
// queue. The network server is not started until Serve.
func New(cfg Config, queue *fan.Queue) *Adapter {
	if cfg.Name == "" {
		cfg.Name = "Fan"
	}
	if cfg.EnqueueWait <= 0 {
		cfg.EnqueueWait = DefaultEnqueueWait
	}

	a := &Adapter{cfg: cfg, queue: queue, wait: cfg.EnqueueWait}

	a.acc = accessory.New(accessory.Info{
		Name:         cfg.Name,
		Manufacturer: cfg.Manufacturer,
		Model:        cfg.Model,
		Firmware:     cfg.Firmware,
	}, accessory.TypeFan)

	svc := service.New(service.TypeFan)

	a.on = characteristic.NewOn()
	svc.AddC(a.on.C)

	a.swing = characteristic.NewSwingMode()
	svc.AddC(a.swing.C)

	// Four speeds on the 0-100 scale: 25 per step.
	a.rotation = characteristic.NewRotationSpeed()
	a.rotation.SetStepValue(25)
	svc.AddC(a.rotation.C)

	a.acc.AddS(svc)

	a.on.OnValueRemoteUpdate(a.handlePower)
	a.swing.OnValueRemoteUpdate(a.handleSwing)
	a.rotation.OnValueRemoteUpdate(a.handleRotation)

	return a
}

// handlePower maps an On characteristic write onto a power command.
func (a *Adapter) handlePower(on bool) {
	a.enqueue(fan.Command{Source: fan.SourceSmartHome, Kind: fan.KindPower, On: on})
}

// handleSwing maps a SwingMode write onto an oscillation command.
func (a *Adapter) handleSwing(mode int) {
	a.enqueue(fan.Command{
		Source: fan.SourceSmartHome,
		Kind:   fan.KindOscillate,
		On:     mode == characteristic.SwingModeSwingEnabled,
	})
}

// handleRotation maps a RotationSpeed write onto a speed command, binning
// the percentage onto the four levels. Zero maps to SpeedOff, which the
// controller ignores: the power write that accompanies it owns "off".
func (a *Adapter) handleRotation(percent float64) {
	a.enqueue(fan.Command{Source: fan.SourceSmartHome, Kind: fan.KindSpeed, Speed: binSpeed(percent)})
}

// binSpeed converts a 0-100 rotation percentage onto a speed level.
func binSpeed(percent float64) fan.Speed {
	v := int(percent)
	switch {
	case v == 0:
		return fan.SpeedOff
	case v <= 25:
		return fan.Speed1
	case v <= 50:
		return fan.Speed2
	case v <= 75:
		return fan.Speed3
	default:
		return fan.Speed4
	}
}

func (a *Adapter) enqueue(cmd fan.Command) {
	if !a.queue.Enqueue(cmd, a.wait) {
		log.Printf("homekit: queue full, dropping %s command", cmd.Kind)
	}
}

// Update pushes the fan state into the characteristic values so the Home
// app shows hardware-triggered changes. Called for button and remote
// commands; HomeKit's own writes are echoed by the HAP library.
func (a *Adapter) Update(s fan.State) {
	a.on.SetValue(s.On)

	mode := characteristic.SwingModeSwingDisabled
	if s.Oscillate {
		mode = characteristic.SwingModeSwingEnabled
	}
	a.swing.SetValue(mode)

	a.rotation.SetValue(float64(s.Speed.Percent()))
}

// Serve runs the HAP server until the context is done. Only the pairing
// store persists across restarts; fan state always boots fresh.
func (a *Adapter) Serve(ctx context.Context) error {
	store := hap.NewFsStore(a.cfg.StoreDir)
	server, err := hap.NewServer(store, a.acc)
	if err != nil {
		return fmt.Errorf("create hap server: %w", err)
	}
	if a.cfg.Pin != "" {
		server.Pin = a.cfg.Pin
	}
	if a.cfg.Addr != "" {
		server.Addr = a.cfg.Addr
	}
	return server.ListenAndServe(ctx)
}
