// Package queue implements the bounded, in-memory single-producer/
// single-consumer handoff (C3) used to hand polyvalues from a source
// loader to its saver while bounding in-flight memory.
package queue

import (
	"sync"

	"github.com/repliq/repliq/internal/metrics"
	"github.com/repliq/repliq/internal/polyval"
)

// Max is the advisory capacity (Q_MAX) a producer polls against before
// sleeping. The queue itself never blocks inside Push.
const Max = 10000

// Queue is a thread-safe FIFO of polyvalues. All operations are atomic
// with respect to each other via a single mutex; this is a small, short
// critical section in the spirit of the original's spinlock-guarded
// buffer, adapted to Go's blocking mutex since true spin-locking is not
// idiomatic here.
type Queue struct {
	mu      sync.Mutex
	items   []polyval.Value
	topic   string
	lane    string
	labeled bool
}

// New returns an empty, unlabeled Queue. Push and DrainAll on an unlabeled
// Queue do not report to internal/metrics.QueueDepth.
func New() *Queue {
	return &Queue{}
}

// WithLabels attaches a topic/lane pair to q, so that subsequent Push and
// DrainAll calls report the queue's depth to metrics.QueueDepth. It returns
// q for chaining at construction time.
func (q *Queue) WithLabels(topic, lane string) *Queue {
	q.mu.Lock()
	q.topic, q.lane, q.labeled = topic, lane, true
	q.mu.Unlock()
	return q
}

// reportDepth publishes the current size to metrics.QueueDepth. Callers
// must hold q.mu.
func (q *Queue) reportDepth() {
	if q.labeled {
		metrics.QueueDepth.WithLabelValues(q.topic, q.lane).Set(float64(len(q.items)))
	}
}

// Size returns the number of buffered items.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty reports whether the queue currently holds no items.
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// Push appends v. Push never blocks; backpressure is the caller's
// responsibility, by polling Size against Max between pushes.
func (q *Queue) Push(v polyval.Value) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.reportDepth()
	q.mu.Unlock()
}

// DrainAll atomically removes and returns every buffered item, in FIFO
// order. It is destructive: a subsequent DrainAll returns only items
// pushed since the previous call.
func (q *Queue) DrainAll() []polyval.Value {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.reportDepth()
	q.mu.Unlock()
	return items
}
