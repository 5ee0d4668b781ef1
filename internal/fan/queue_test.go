package fan_test

import (
	"testing"
	"time"

	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/fan"
)

func TestQueueFIFO(t *testing.T) {
	q := fan.NewQueue(fan.DefaultQueueCapacity)

	kinds := []fan.Kind{fan.KindPower, fan.KindOscillate, fan.KindSpeed}
	for _, k := range kinds {
		if !q.TryEnqueue(fan.Command{Source: fan.SourceButton, Kind: k}) {
			t.Fatalf("enqueue %v failed on an empty queue", k)
		}
	}
	for i, k := range kinds {
		got := <-q.C()
		if got.Kind != k {
			t.Errorf("dequeue %d: kind = %v, want %v", i, got.Kind, k)
		}
	}
}

func TestQueueDropsNewestOnOverflow(t *testing.T) {
	q := fan.NewQueue(2)

	q.TryEnqueue(fan.Command{Kind: fan.KindPower})
	q.TryEnqueue(fan.Command{Kind: fan.KindOscillate})
	if q.TryEnqueue(fan.Command{Kind: fan.KindSpeed}) {
		t.Error("enqueue on a full queue should fail")
	}
	if got := q.Dropped(); got != 1 {
		t.Errorf("dropped = %d, want 1", got)
	}

	// The queued commands survive; the newest was the one dropped.
	if got := <-q.C(); got.Kind != fan.KindPower {
		t.Errorf("first dequeue = %v, want %v", got.Kind, fan.KindPower)
	}
	if got := <-q.C(); got.Kind != fan.KindOscillate {
		t.Errorf("second dequeue = %v, want %v", got.Kind, fan.KindOscillate)
	}
}

func TestQueueEnqueueWaits(t *testing.T) {
	q := fan.NewQueue(1)
	q.TryEnqueue(fan.Command{Kind: fan.KindPower})

	// A consumer frees a slot while the producer is blocked.
	go func() {
		time.Sleep(10 * time.Millisecond)
		<-q.C()
	}()

	if !q.Enqueue(fan.Command{Kind: fan.KindSpeed}, time.Second) {
		t.Error("enqueue should succeed once the consumer drains a slot")
	}
	if got := q.Dropped(); got != 0 {
		t.Errorf("dropped = %d, want 0 after a successful wait", got)
	}
}

func TestQueueEnqueueTimeout(t *testing.T) {
	q := fan.NewQueue(1)
	q.TryEnqueue(fan.Command{Kind: fan.KindPower})

	if q.Enqueue(fan.Command{Kind: fan.KindSpeed}, 5*time.Millisecond) {
		t.Error("enqueue should time out on a full queue with no consumer")
	}
	if got := q.Dropped(); got != 1 {
		t.Errorf("dropped = %d, want 1 after a timeout", got)
	}
}

func TestQueueClampsInvalidCapacity(t *testing.T) {
	q := fan.NewQueue(0)
	if got := q.Cap(); got != fan.DefaultQueueCapacity {
		t.Errorf("cap = %d, want default %d", got, fan.DefaultQueueCapacity)
	}
}
