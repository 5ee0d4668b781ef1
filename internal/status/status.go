// Package status provides a thread-safe status tracker for the
// fan-controller daemon. It is read by the HTTP handlers and folded into
// MQTT system events; nothing in the control path depends on it.
package status

import (
	"sync"
	"time"

	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/fan"
)

// NetworkInfo contains network state reported by the host helper. Local
// copy to keep this package free of other internal imports.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// CommandCounts tracks handled commands per source since startup.
type CommandCounts struct {
	SmartHome int
	Button    int
	Remote    int
	Dropped   int // producer-side drops observed by the daemon
}

// Config contains daemon configuration for display.
type Config struct {
	DebounceMs    int64
	HeartbeatMs   int64
	QueueCapacity int
	SharedClock   bool
	Broker        string
	HTTPAddr      string
	Chip          string
	LircDevice    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Fan           fan.State
	LedsEnabled   bool
	Counts        CommandCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config. The
// initial fan state is the boot state: off, stored speed 4, LEDs enabled.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Fan:         fan.State{Speed: fan.Speed4},
			LedsEnabled: true,
			StartTime:   startTime,
			Config:      cfg,
		},
	}
}

// Update sets the fan state, indicator latch, and command counts.
// Called from the run loop after every handled command.
func (t *Tracker) Update(s fan.State, ledsEnabled bool, counts CommandCounts) {
	t.mu.Lock()
	t.snap.Fan = s
	t.snap.LedsEnabled = ledsEnabled
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
