package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/observability"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/observer"
)

// Aggregator funnels events from many publishers to many observers. It
// subscribes upstream like any observer and publishes downstream like any
// publisher. An optional head filter decides which events get through; the
// last accepted event is kept as the aggregator's state.
//
// Both sides are sets that may change at runtime, including from inside
// a notification.
type Aggregator struct {
	subject    observer.Subject
	publishers observer.Publishers

	mu     sync.RWMutex
	filter *Filter
	state  *Event

	name    string
	logger  *slog.Logger
	metrics observability.MetricsRecorder
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithHeadFilter sets the head filter.
func WithHeadFilter(f *Filter) AggregatorOption {
	return func(a *Aggregator) { a.filter = f }
}

// WithAggregatorName names the aggregator in logs.
func WithAggregatorName(name string) AggregatorOption {
	return func(a *Aggregator) { a.name = name }
}

// WithAggregatorLogger sets the logger.
func WithAggregatorLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) { a.logger = logger }
}

// WithAggregatorMetrics sets the metrics recorder.
func WithAggregatorMetrics(m observability.MetricsRecorder) AggregatorOption {
	return func(a *Aggregator) {
		if m != nil {
			a.metrics = m
		}
	}
}

// NewAggregator creates an aggregator with no publishers or observers.
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		name:    "aggregator",
		metrics: observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = observability.EnrichLogger(a.logger, "aggregator", a.name)
	return a
}

// SetFilter sets the head filter.
func (a *Aggregator) SetFilter(f *Filter) {
	a.mu.Lock()
	a.filter = f
	a.mu.Unlock()
}

// UnsetFilter removes the head filter; every event is then accepted.
func (a *Aggregator) UnsetFilter() {
	a.SetFilter(nil)
}

// Filter returns the head filter, or nil.
func (a *Aggregator) Filter() *Filter {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.filter
}

// State returns the last accepted event, or nil.
func (a *Aggregator) State() *Event {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// SetStateObject offers e to the aggregator. If there is no head filter,
// or the head filter accepts e, e becomes the state and every observer is
// notified. Returns whether e was accepted.
func (a *Aggregator) SetStateObject(e *Event) bool {
	if e == nil {
		return false
	}
	ctx := context.Background()

	a.mu.RLock()
	f := a.filter
	a.mu.RUnlock()

	if f != nil && !f.IsEventApplicable(e) {
		observability.LogFilterRejected(a.logger, e.id)
		a.metrics.RecordAggregation(ctx, false)
		return false
	}

	a.mu.Lock()
	a.state = e
	a.mu.Unlock()

	a.metrics.RecordAggregation(ctx, true)
	done := observability.TimedOperation()
	notified := a.subject.Notify(a, e)
	observability.LogDispatch(a.logger, e.id, notified, done())
	return true
}

// NotifyObserver offers event states to SetStateObject and returns false
// for any other state.
func (a *Aggregator) NotifyObserver(_ observer.Publisher, state any) bool {
	e, ok := state.(*Event)
	if !ok || e == nil {
		observability.LogStateRejected(a.logger, fmt.Sprintf("%T", state))
		return false
	}
	return a.SetStateObject(e)
}

// AttachObserver adds o downstream. A Subscriber is registered on both sides.
func (a *Aggregator) AttachObserver(o observer.Observer) bool {
	if !a.subject.Add(o) {
		return false
	}
	if sub, ok := o.(observer.Subscriber); ok {
		sub.AttachPublisher(a)
	}
	return true
}

// DetachObserver removes o from both sides.
func (a *Aggregator) DetachObserver(o observer.Observer) bool {
	if !a.subject.Remove(o) {
		return false
	}
	if sub, ok := o.(observer.Subscriber); ok {
		sub.DetachPublisher(a)
	}
	return true
}

// Observers returns the downstream observers in attach order.
func (a *Aggregator) Observers() []observer.Observer {
	return a.subject.List()
}

// AttachPublisher subscribes to p.
func (a *Aggregator) AttachPublisher(p observer.Publisher) bool {
	return observer.Attach(a, &a.publishers, p)
}

// DetachPublisher unsubscribes from p.
func (a *Aggregator) DetachPublisher(p observer.Publisher) bool {
	return observer.Detach(a, &a.publishers, p)
}

// Publishers returns the upstream publishers.
func (a *Aggregator) Publishers() []observer.Publisher {
	return a.publishers.List()
}

// Close detaches the aggregator from every publisher and observer.
func (a *Aggregator) Close() {
	observer.DetachAll(a, &a.publishers)
	for _, o := range a.subject.List() {
		a.DetachObserver(o)
	}
}

var (
	_ observer.Publisher  = (*Aggregator)(nil)
	_ observer.Subscriber = (*Aggregator)(nil)
)
