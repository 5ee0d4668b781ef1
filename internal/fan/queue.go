package fan

import (
	"sync/atomic"
	"time"
)

// DefaultQueueCapacity matches the firmware's event queue depth.
const DefaultQueueCapacity = 10

// Queue is the bounded FIFO carrying commands from the producers to the
// single consumer. It is a thin wrapper over a buffered channel: commands are
// delivered in enqueue order, and no ordering is promised between producers
// whose enqueues race.
//
// Producers on interrupt-class paths (buttons, IR receiver) must use
// TryEnqueue, which never blocks and never allocates. The smart-home adapter
// may use Enqueue, which waits a bounded time. Overflow always drops the
// newest command; previously accepted commands are unaffected.
type Queue struct {
	ch      chan Command
	dropped atomic.Int64
}

// NewQueue creates a queue with the given capacity. Capacities below one are
// clamped to the default.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{ch: make(chan Command, capacity)}
}

// TryEnqueue attempts a non-blocking enqueue. It reports false when the
// queue is full; the command is then dropped.
func (q *Queue) TryEnqueue(cmd Command) bool {
	select {
	case q.ch <- cmd:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Enqueue attempts an enqueue, waiting at most wait for space. It reports
// false when the queue stayed full for the whole wait.
func (q *Queue) Enqueue(cmd Command, wait time.Duration) bool {
	select {
	case q.ch <- cmd:
		return true
	default:
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case q.ch <- cmd:
		return true
	case <-timer.C:
		q.dropped.Add(1)
		return false
	}
}

// C returns the receive side of the queue. The consumer blocks on it until a
// command arrives; there is no polling.
func (q *Queue) C() <-chan Command {
	return q.ch
}

// Len returns the number of commands currently queued.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return cap(q.ch)
}

// Dropped returns the number of commands dropped on overflow since the
// queue was created.
func (q *Queue) Dropped() int {
	return int(q.dropped.Load())
}
