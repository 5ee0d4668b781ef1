package homekit

import (
	"testing"

	"github.com/brutella/hap/characteristic"

	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/fan"
)

func TestBinSpeed(t *testing.T) {
	cases := []struct {
		percent float64
		want    fan.Speed
	}{
		{0, fan.SpeedOff},
		{1, fan.Speed1},
		{25, fan.Speed1},
		{26, fan.Speed2},
		{50, fan.Speed2},
		{75, fan.Speed3},
		{76, fan.Speed4},
		{100, fan.Speed4},
	}
	for _, tc := range cases {
		if got := binSpeed(tc.percent); got != tc.want {
			t.Errorf("binSpeed(%v) = %v, want %v", tc.percent, got, tc.want)
		}
	}
}

func TestHandlersEnqueueCommands(t *testing.T) {
	q := fan.NewQueue(fan.DefaultQueueCapacity)
	a := New(Config{Name: "Fan"}, q)

	a.handlePower(true)
	a.handleSwing(characteristic.SwingModeSwingEnabled)
	a.handleRotation(50)

	want := []fan.Command{
		{Source: fan.SourceSmartHome, Kind: fan.KindPower, On: true},
		{Source: fan.SourceSmartHome, Kind: fan.KindOscillate, On: true},
		{Source: fan.SourceSmartHome, Kind: fan.KindSpeed, Speed: fan.Speed2},
	}
	for i, w := range want {
		got := <-q.C()
		if got != w {
			t.Errorf("command %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestHandleSwingDisabled(t *testing.T) {
	q := fan.NewQueue(fan.DefaultQueueCapacity)
	a := New(Config{}, q)

	a.handleSwing(characteristic.SwingModeSwingDisabled)
	got := <-q.C()
	if got.Kind != fan.KindOscillate || got.On {
		t.Errorf("command = %+v, want oscillate off", got)
	}
}

func TestUpdateSetsCharacteristics(t *testing.T) {
	q := fan.NewQueue(fan.DefaultQueueCapacity)
	a := New(Config{}, q)

	a.Update(fan.State{On: true, Oscillate: true, Speed: fan.Speed3})

	if !a.on.Value() {
		t.Error("on characteristic should be true")
	}
	if a.swing.Value() != characteristic.SwingModeSwingEnabled {
		t.Errorf("swing = %d, want enabled", a.swing.Value())
	}
	if a.rotation.Value() != 75 {
		t.Errorf("rotation = %v, want 75", a.rotation.Value())
	}

	a.Update(fan.State{On: false, Oscillate: false, Speed: fan.Speed4})
	if a.on.Value() {
		t.Error("on characteristic should be false")
	}
	if a.swing.Value() != characteristic.SwingModeSwingDisabled {
		t.Errorf("swing = %d, want disabled", a.swing.Value())
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	q := fan.NewQueue(1)
	q.TryEnqueue(fan.Command{Source: fan.SourceButton, Kind: fan.KindPower})
	a := New(Config{EnqueueWait: 1}, q)

	// Must not panic or block past the wait.
	a.handlePower(true)
	if q.Len() != 1 {
		t.Errorf("queue len = %d, want 1", q.Len())
	}
	if q.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", q.Dropped())
	}
}
