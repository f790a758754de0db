package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/observability"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/observer"
	"go.opentelemetry.io/otel/attribute"
)

// route binds one filter to its queue.
type route struct {
	filter *Filter
	queue  *HandlerPriorityQueue
}

// Conduit routes each event to the queue of every filter that accepts it.
// Filters are tested in registration order and matching is exhaustive: an
// event that matches three filters runs through three queues.
type Conduit struct {
	mu     sync.RWMutex
	routes []route

	publishers observer.Publishers

	name    string
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// ConduitOption configures a Conduit.
type ConduitOption func(*Conduit)

// WithConduitName names the conduit in logs.
func WithConduitName(name string) ConduitOption {
	return func(c *Conduit) { c.name = name }
}

// WithConduitLogger sets the logger.
func WithConduitLogger(logger *slog.Logger) ConduitOption {
	return func(c *Conduit) { c.logger = logger }
}

// WithConduitMetrics sets the metrics recorder.
func WithConduitMetrics(m observability.MetricsRecorder) ConduitOption {
	return func(c *Conduit) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithConduitTracing records a span per dispatched event.
func WithConduitTracing(sm observability.SpanManager) ConduitOption {
	return func(c *Conduit) {
		if sm != nil {
			c.spans = sm
		}
	}
}

// NewConduit creates a conduit with no filters.
func NewConduit(opts ...ConduitOption) *Conduit {
	c := &Conduit{
		name:    "conduit",
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = observability.EnrichLogger(c.logger, "conduit", c.name)
	return c
}

// AddFilter registers f with queue q and returns the queue. A nil q
// creates an empty queue. Adding a filter that is already registered
// replaces its queue and keeps its position.
func (c *Conduit) AddFilter(f *Filter, q *HandlerPriorityQueue) *HandlerPriorityQueue {
	if f == nil {
		return nil
	}
	if q == nil {
		q = NewHandlerPriorityQueue(WithQueueLogger(c.logger), WithQueueMetrics(c.metrics))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.routes {
		if c.routes[i].filter == f {
			c.routes[i].queue = q
			return q
		}
	}
	c.routes = append(c.routes, route{filter: f, queue: q})
	return q
}

// SetFilters replaces the whole mapping. Map iteration has no order, so
// the registration order of the new filters is unspecified; use AddFilter
// where order matters.
func (c *Conduit) SetFilters(mapping map[*Filter]*HandlerPriorityQueue) {
	c.mu.Lock()
	c.routes = nil
	c.mu.Unlock()
	for f, q := range mapping {
		c.AddFilter(f, q)
	}
}

// RemoveFilter unregisters f. Removing an absent filter is a no-op.
func (c *Conduit) RemoveFilter(f *Filter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.routes {
		if c.routes[i].filter == f {
			c.routes = append(c.routes[:i:i], c.routes[i+1:]...)
			return true
		}
	}
	return false
}

// Filters returns the registered filters in registration order.
func (c *Conduit) Filters() []*Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Filter, len(c.routes))
	for i, r := range c.routes {
		out[i] = r.filter
	}
	return out
}

// Queue returns the queue registered for f.
func (c *Conduit) Queue(f *Filter) (*HandlerPriorityQueue, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.routes {
		if r.filter == f {
			return r.queue, true
		}
	}
	return nil, false
}

// AddHandler queues o at priority under f, registering f first if needed.
func (c *Conduit) AddHandler(f *Filter, o observer.Observer, priority int) bool {
	q, ok := c.Queue(f)
	if !ok {
		q = c.AddFilter(f, nil)
	}
	if q == nil {
		return false
	}
	return q.Insert(o, priority)
}

// NotifyObserver dispatches an event through every matching filter's
// queue. It returns false for non-event states and when no filter matched.
func (c *Conduit) NotifyObserver(pub observer.Publisher, state any) bool {
	e, ok := state.(*Event)
	if !ok || e == nil {
		observability.LogStateRejected(c.logger, fmt.Sprintf("%T", state))
		return false
	}

	ctx, span := c.spans.StartDispatchSpan(context.Background(), "conduit", e.id)
	start := time.Now()

	c.mu.RLock()
	routes := append([]route(nil), c.routes...)
	c.mu.RUnlock()

	matched := 0
	for _, r := range routes {
		if !r.filter.IsEventApplicable(e) {
			continue
		}
		matched++
		invoked := r.queue.Propagate(pub, e)
		c.spans.AddSpanEvent(ctx, "queue.propagated", attribute.Int("handlers", invoked))
	}

	elapsed := time.Since(start)
	observability.LogDispatch(c.logger, e.id, matched, float64(elapsed.Microseconds())/1000)
	c.metrics.RecordDispatch(ctx, "conduit", matched, elapsed)
	c.spans.EndSpanWithError(span, nil)
	return matched > 0
}

// AttachPublisher subscribes to p.
func (c *Conduit) AttachPublisher(p observer.Publisher) bool {
	return observer.Attach(c, &c.publishers, p)
}

// DetachPublisher unsubscribes from p.
func (c *Conduit) DetachPublisher(p observer.Publisher) bool {
	return observer.Detach(c, &c.publishers, p)
}

// Publishers returns the publishers the conduit is subscribed to.
func (c *Conduit) Publishers() []observer.Publisher {
	return c.publishers.List()
}

var _ observer.Subscriber = (*Conduit)(nil)
