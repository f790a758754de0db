package event

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/observability"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/observer"
)

// Actor pairs one Filter with one handler. Events the filter accepts are
// passed to the handler; everything else is ignored.
type Actor struct {
	mu      sync.RWMutex
	filter  *Filter
	handler observer.Observer

	publishers observer.Publishers
	logger     *slog.Logger
}

// ActorOption configures an Actor.
type ActorOption func(*Actor)

// WithActorLogger sets the logger.
func WithActorLogger(logger *slog.Logger) ActorOption {
	return func(a *Actor) { a.logger = logger }
}

// NewActor creates an actor. Either argument may be nil and set later;
// until both are set the actor accepts nothing. The handler is usually a
// *Handler but any observer works. A typed nil handler counts as unset.
func NewActor(filter *Filter, handler observer.Observer, opts ...ActorOption) *Actor {
	a := &Actor{filter: filter, handler: unsetIfNil(handler)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetFilter replaces the filter.
func (a *Actor) SetFilter(f *Filter) {
	a.mu.Lock()
	a.filter = f
	a.mu.Unlock()
}

// Filter returns the filter.
func (a *Actor) Filter() *Filter {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.filter
}

// SetHandler replaces the handler.
func (a *Actor) SetHandler(h observer.Observer) {
	a.mu.Lock()
	a.handler = unsetIfNil(h)
	a.mu.Unlock()
}

// unsetIfNil maps an observer holding a nil pointer, func, map, slice or
// channel to a nil interface.
func unsetIfNil(o observer.Observer) observer.Observer {
	if o == nil {
		return nil
	}
	switch v := reflect.ValueOf(o); v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		if v.IsNil() {
			return nil
		}
	}
	return o
}

// Handler returns the handler.
func (a *Actor) Handler() observer.Observer {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.handler
}

// NotifyObserver returns false when the filter or handler is unset, when
// state is not an event or when the filter rejects it. Otherwise the
// handler is notified and NotifyObserver returns true.
func (a *Actor) NotifyObserver(pub observer.Publisher, state any) bool {
	a.mu.RLock()
	f, h := a.filter, a.handler
	a.mu.RUnlock()

	if f == nil || h == nil {
		return false
	}
	e, ok := state.(*Event)
	if !ok || e == nil {
		observability.LogStateRejected(a.logger, fmt.Sprintf("%T", state))
		return false
	}
	if !f.IsEventApplicable(e) {
		observability.LogFilterRejected(a.logger, e.id)
		return false
	}
	h.NotifyObserver(pub, e)
	return true
}

// AttachPublisher subscribes to p.
func (a *Actor) AttachPublisher(p observer.Publisher) bool {
	return observer.Attach(a, &a.publishers, p)
}

// DetachPublisher unsubscribes from p.
func (a *Actor) DetachPublisher(p observer.Publisher) bool {
	return observer.Detach(a, &a.publishers, p)
}

// Publishers returns the publishers the actor is subscribed to.
func (a *Actor) Publishers() []observer.Publisher {
	return a.publishers.List()
}

var _ observer.Subscriber = (*Actor)(nil)
