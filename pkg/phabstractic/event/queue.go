package event

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/observability"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/observer"
)

// QueueEntry is one observer in a HandlerPriorityQueue.
type QueueEntry struct {
	Observer observer.Observer
	Priority int
}

// HandlerPriorityQueue holds observers ordered by ascending priority:
// lower values run first, and equal priorities run in insertion order.
// Any observer can be queued, including another queue, a Conduit or an
// Aggregator.
type HandlerPriorityQueue struct {
	mu      sync.RWMutex
	entries []QueueEntry

	logger  *slog.Logger
	metrics observability.MetricsRecorder
}

// QueueOption configures a HandlerPriorityQueue.
type QueueOption func(*HandlerPriorityQueue)

// WithQueueLogger sets the logger for invocation and halt records.
func WithQueueLogger(logger *slog.Logger) QueueOption {
	return func(q *HandlerPriorityQueue) { q.logger = logger }
}

// WithQueueMetrics sets the metrics recorder.
func WithQueueMetrics(m observability.MetricsRecorder) QueueOption {
	return func(q *HandlerPriorityQueue) {
		if m != nil {
			q.metrics = m
		}
	}
}

// NewHandlerPriorityQueue creates an empty queue.
func NewHandlerPriorityQueue(opts ...QueueOption) *HandlerPriorityQueue {
	q := &HandlerPriorityQueue{metrics: observability.NoopMetrics{}}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Insert adds o at priority. An observer already in the queue is moved to
// the new priority and placed last among its peers. Observers that are
// not comparable cannot be located again and are rejected.
func (q *HandlerPriorityQueue) Insert(o observer.Observer, priority int) bool {
	if o == nil || !reflect.ValueOf(o).Comparable() {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.removeLocked(o)

	// Upper bound keeps equal priorities in insertion order.
	i := sort.Search(len(q.entries), func(i int) bool {
		return q.entries[i].Priority > priority
	})
	q.entries = append(q.entries, QueueEntry{})
	copy(q.entries[i+1:], q.entries[i:])
	q.entries[i] = QueueEntry{Observer: o, Priority: priority}
	return true
}

// Remove deletes o. Returns false if o was not queued.
func (q *HandlerPriorityQueue) Remove(o observer.Observer) bool {
	if o == nil || !reflect.ValueOf(o).Comparable() {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(o)
}

func (q *HandlerPriorityQueue) removeLocked(o observer.Observer) bool {
	for i, entry := range q.entries {
		if entry.Observer == o {
			q.entries = append(q.entries[:i:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Priority returns the priority o was queued at.
func (q *HandlerPriorityQueue) Priority(o observer.Observer) (int, bool) {
	if o == nil || !reflect.ValueOf(o).Comparable() {
		return 0, false
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	for _, entry := range q.entries {
		if entry.Observer == o {
			return entry.Priority, true
		}
	}
	return 0, false
}

// Len returns the number of queued observers.
func (q *HandlerPriorityQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.entries)
}

// Entries returns a snapshot in run order.
func (q *HandlerPriorityQueue) Entries() []QueueEntry {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return append([]QueueEntry(nil), q.entries...)
}

// Clear removes every observer.
func (q *HandlerPriorityQueue) Clear() {
	q.mu.Lock()
	q.entries = nil
	q.mu.Unlock()
}

// Propagate passes e to each observer in run order on behalf of pub.
// Before every call it checks the event: once e is stopped and not
// unstoppable, the remaining observers are skipped. Returns how many
// observers were called.
//
// The queue runs over a snapshot, so observers may change the queue
// while it propagates without affecting the current pass.
func (q *HandlerPriorityQueue) Propagate(pub observer.Publisher, e *Event) int {
	if e == nil {
		return 0
	}
	ctx := context.Background()
	entries := q.Entries()

	invoked := 0
	for i, entry := range entries {
		if !(e.IsUnstoppable() || !e.IsStopped()) {
			skipped := len(entries) - i
			at := entry.Priority
			if i > 0 {
				at = entries[i-1].Priority
			}
			observability.LogPropagationHalted(q.logger, e.id, at, skipped)
			q.metrics.RecordPropagationHalted(ctx, skipped)
			break
		}

		start := time.Now()
		var err error
		if h, ok := entry.Observer.(*Handler); ok {
			err = h.Handle(e).Err()
		} else {
			entry.Observer.NotifyObserver(pub, e)
		}
		invoked++

		elapsed := time.Since(start)
		observability.LogHandlerInvoked(q.logger, e.id, entry.Priority, float64(elapsed.Microseconds())/1000)
		q.metrics.RecordHandlerInvocation(ctx, entry.Priority, elapsed, err)
	}
	return invoked
}

// NotifyObserver propagates event states. It returns false for any other
// state and true otherwise, even when the queue is empty.
func (q *HandlerPriorityQueue) NotifyObserver(pub observer.Publisher, state any) bool {
	e, ok := state.(*Event)
	if !ok || e == nil {
		observability.LogStateRejected(q.logger, fmt.Sprintf("%T", state))
		return false
	}
	q.Propagate(pub, e)
	return true
}

var _ observer.Observer = (*HandlerPriorityQueue)(nil)
