// Command fan-controller unifies HomeKit, push-button, and infrared remote
// control of a relay-driven pedestal fan into one state machine.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/button"
	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/fan"
	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/gpio"
	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/homekit"
	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/ir"
	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/mqtt"
	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/status"
	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/web"
)

func main() {
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address (empty to disable telemetry)")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	debounce := flag.Duration("debounce", button.DefaultWindow, "Button debounce window")
	sharedClock := flag.Bool("shared-debounce", true, "Share one debounce clock across both buttons")
	queueCap := flag.Int("queue", fan.DefaultQueueCapacity, "Command queue capacity")
	chip := flag.String("chip", gpio.DefaultChip, "GPIO chip device name")
	pinPower := flag.Int("pin-power", gpio.DefaultPinPowerButton, "BCM pin number for the power button")
	pinOsc := flag.Int("pin-oscillate", gpio.DefaultPinOscButton, "BCM pin number for the oscillate button")
	lircDev := flag.String("lirc", ir.DefaultDevice, "LIRC receiver device (empty to disable the remote)")
	irRecovery := flag.String("ir-recovery", "restart", `Malformed IR pair handling: "restart" (resync on next pair) or "discard" (drop the frame)`)
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	hapDir := flag.String("hap-dir", "./homekit-store", "HomeKit pairing store directory")
	hapPin := flag.String("hap-pin", "", "HomeKit setup code (library default when empty)")
	name := flag.String("name", "Fan", "Accessory name")

	flag.Parse()

	policy, err := parseRecovery(*irRecovery)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	cfg := config{
		broker:      *broker,
		heartbeat:   *heartbeat,
		debounce:    *debounce,
		sharedClock: *sharedClock,
		queueCap:    *queueCap,
		chip:        *chip,
		pinPower:    *pinPower,
		pinOsc:      *pinOsc,
		lircDev:     *lircDev,
		irPolicy:    policy,
		httpAddr:    *httpAddr,
		hapDir:      *hapDir,
		hapPin:      *hapPin,
		name:        *name,
	}
	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

type config struct {
	broker      string
	heartbeat   time.Duration
	debounce    time.Duration
	sharedClock bool
	queueCap    int
	chip        string
	pinPower    int
	pinOsc      int
	lircDev     string
	irPolicy    ir.RecoveryPolicy
	httpAddr    string
	hapDir      string
	hapPin      string
	name        string
}

func parseRecovery(s string) (ir.RecoveryPolicy, error) {
	switch s {
	case "restart":
		return ir.RestartNextPair, nil
	case "discard":
		return ir.DiscardFrame, nil
	}
	return 0, fmt.Errorf("unknown -ir-recovery value %q", s)
}

func run(cfg config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Outputs first: the relays must be driven to a known state before
	// anything can produce a command.
	pins := gpio.DefaultPins()
	pins.PowerButton = cfg.pinPower
	pins.OscButton = cfg.pinOsc
	actuator, err := gpio.NewReal(cfg.chip, pins)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer actuator.Close()

	queue := fan.NewQueue(cfg.queueCap)
	ctrl := fan.NewController(actuator)

	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.broker != "" {
		real, err := mqtt.NewRealPublisher(cfg.broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer real.Close()
		publisher = real
		mqttStatus = real
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		DebounceMs:    cfg.debounce.Milliseconds(),
		HeartbeatMs:   cfg.heartbeat.Milliseconds(),
		QueueCapacity: cfg.queueCap,
		SharedClock:   cfg.sharedClock,
		Broker:        cfg.broker,
		HTTPAddr:      cfg.httpAddr,
		Chip:          cfg.chip,
		LircDevice:    cfg.lircDev,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Smart-home adapter before the hardware inputs so a pairing request
	// arriving during bring-up never races an unbuilt accessory.
	hk := homekit.New(homekit.Config{
		Name:         cfg.name,
		StoreDir:     cfg.hapDir,
		Pin:          cfg.hapPin,
		Manufacturer: "Rjbanks919",
		Model:        "Lasko 18in Cyclone",
		Firmware:     "1.0.0",
	}, queue)
	go func() {
		if err := hk.Serve(ctx); err != nil && ctx.Err() == nil {
			log.Printf("homekit server error: %v", err)
		}
	}()

	// Input hardware last.
	powerClock := button.NewClock()
	oscClock := powerClock
	if !cfg.sharedClock {
		oscClock = button.NewClock()
	}
	powerBtn := button.NewDebouncer(powerClock, cfg.debounce, fan.KindPower, queue)
	oscBtn := button.NewDebouncer(oscClock, cfg.debounce, fan.KindOscillate, queue)
	err = actuator.WatchButtons(
		func(ts time.Duration) { powerBtn.Trigger(ts) },
		func(ts time.Duration) { oscBtn.Trigger(ts) },
	)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}

	if cfg.lircDev != "" {
		receiver, err := ir.NewReceiver(cfg.lircDev, ir.Decoder{Policy: cfg.irPolicy}, queue)
		if err != nil {
			return fmt.Errorf("init ir receiver: %w", err)
		}
		defer receiver.Close()
		go func() {
			if err := receiver.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("ir receiver error: %v", err)
			}
		}()
	}

	if publisher != nil {
		snap := tracker.Snapshot()
		event := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(event); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	log.Printf("started: debounce=%v shared-clock=%v queue=%d broker=%s lirc=%s",
		cfg.debounce, cfg.sharedClock, cfg.queueCap, cfg.broker, cfg.lircDev)

	var heartbeatTick <-chan time.Time
	if cfg.heartbeat > 0 {
		ticker := time.NewTicker(cfg.heartbeat)
		defer ticker.Stop()
		heartbeatTick = ticker.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(queue, ctrl, hk, publisher, mqttStatus, tracker, time.Now, heartbeatTick, sigCh)
}

// stateMirror pushes hardware-triggered state changes back to the
// smart-home service.
type stateMirror interface {
	Update(fan.State)
}

// runLoop consumes the command queue until a shutdown signal arrives. All
// channels and the clock are injected so tests can drive it directly.
func runLoop(
	queue *fan.Queue,
	ctrl *fan.Controller,
	mirror stateMirror,
	publisher mqtt.Publisher,
	mqttStatus mqtt.ConnectionStatus,
	tracker *status.Tracker,
	now func() time.Time,
	heartbeatTick <-chan time.Time,
	sig <-chan os.Signal,
) error {
	var counts status.CommandCounts

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			reason := "UNKNOWN"
			switch s {
			case syscall.SIGINT:
				reason = "SIGINT"
			case syscall.SIGTERM:
				reason = "SIGTERM"
			}
			if publisher != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event := mqtt.SystemEvent{
					Timestamp:  now(),
					Event:      "SHUTDOWN",
					Reason:     reason,
					Retained:   true,
					RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", reason),
				}
				if err := publisher.PublishSystem(event); err != nil {
					log.Printf("failed to publish shutdown event: %v", err)
				} else {
					log.Printf("published shutdown event")
				}
			}
			return nil

		case <-heartbeatTick:
			if net := readNetworkInfo(); net != nil {
				tracker.SetNetwork(net)
			}
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			snap := tracker.Snapshot()
			log.Printf("heartbeat: uptime=%v smarthome=%d button=%d remote=%d dropped=%d",
				snap.Uptime().Truncate(time.Second),
				snap.Counts.SmartHome, snap.Counts.Button, snap.Counts.Remote, snap.Counts.Dropped)
			if publisher != nil {
				event := mqtt.SystemEvent{
					Timestamp:  snap.Now,
					Event:      "HEARTBEAT",
					RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
				}
				if err := publisher.PublishSystem(event); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

		case cmd := <-queue.C():
			t := now()
			res := ctrl.Apply(cmd)

			switch cmd.Source {
			case fan.SourceSmartHome:
				counts.SmartHome++
			case fan.SourceButton:
				counts.Button++
			case fan.SourceRemote:
				counts.Remote++
			}
			counts.Dropped = queue.Dropped()

			log.Printf("command: %s/%s -> power=%v oscillate=%v speed=%s",
				cmd.Source, cmd.Kind, res.State.On, res.State.Oscillate, res.State.Speed)

			if res.Mirror && mirror != nil {
				mirror.Update(res.State)
			}

			if res.Changed && publisher != nil {
				err := publisher.PublishState(mqtt.StateEvent{
					Timestamp:   t,
					State:       res.State,
					LedsEnabled: ctrl.IndicatorsEnabled(),
				})
				if err != nil {
					// Don't crash on publish failure.
					log.Printf("publish error: %v", err)
				}
			}

			tracker.Update(res.State, ctrl.IndicatorsEnabled(), counts)
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
		}
	}
}

// pi-helper writes these to the service environment on boot.
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
