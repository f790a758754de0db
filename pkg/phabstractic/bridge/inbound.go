package bridge

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/event"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/journal"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/observability"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/observer"
)

var (
	// ErrStarted is returned by Start on a running Inbound.
	ErrStarted = errors.New("bridge: inbound already started")

	// ErrMissingID is returned for messages without a Nats-Msg-Id header.
	ErrMissingID = errors.New("bridge: message has no event id")
)

// Inbound receives events from NATS and notifies its observers.
type Inbound struct {
	nc     *nats.Conn
	listen string
	opts   options

	// dispatch is held while observers are notified.
	dispatch  sync.Mutex
	observers observer.Subject

	mu   sync.Mutex
	sub  *nats.Subscription
	last *event.Event
}

// NewInbound creates an inbound bridge on nc. It listens on every subject
// under the configured prefix; use Listen to narrow it.
func NewInbound(nc *nats.Conn, opts ...Option) *Inbound {
	o := newOptions(opts)
	return &Inbound{nc: nc, listen: Wildcard(o.prefix), opts: o}
}

// Listen sets the subject Start subscribes to. It has no effect on a
// running Inbound.
func (in *Inbound) Listen(subject string) *Inbound {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.listen = subject
	return in
}

// Subject returns the subscription subject.
func (in *Inbound) Subject() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.listen
}

// Start subscribes to the bridge subject.
func (in *Inbound) Start() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.sub != nil {
		return ErrStarted
	}
	sub, err := in.nc.Subscribe(in.listen, func(msg *nats.Msg) {
		if _, err := in.Deliver(msg); err != nil {
			observability.LogBridgeError(in.opts.logger, msg.Subject, msg.Header.Get(nats.MsgIdHdr), err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", in.listen, err)
	}
	in.sub = sub
	return nil
}

// Close unsubscribes. Observers stay attached.
func (in *Inbound) Close() error {
	in.mu.Lock()
	sub := in.sub
	in.sub = nil
	in.mu.Unlock()
	if sub == nil {
		return nil
	}
	return sub.Unsubscribe()
}

// Decode rebuilds the event carried by msg.
func (in *Inbound) Decode(msg *nats.Msg) (*event.Event, error) {
	codec := in.opts.codec
	if name := msg.Header.Get(codecHdr); name != "" {
		c, err := journal.LookupCodec(name)
		if err != nil {
			return nil, err
		}
		codec = c
	}
	var rec journal.Record
	if err := codec.Unmarshal(msg.Data, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", msg.Subject, err)
	}
	if id := msg.Header.Get(nats.MsgIdHdr); id != "" {
		rec.ID = id
	}
	if rec.ID == "" {
		return nil, ErrMissingID
	}
	return rec.Event(), nil
}

// Deliver decodes msg and notifies the observers. Returns how many
// accepted the event.
func (in *Inbound) Deliver(msg *nats.Msg) (int, error) {
	e, err := in.Decode(msg)
	if err != nil {
		return 0, err
	}
	in.dispatch.Lock()
	defer in.dispatch.Unlock()

	in.mu.Lock()
	in.last = e
	in.mu.Unlock()
	return in.observers.Notify(in, e), nil
}

// State returns the last delivered event, or nil.
func (in *Inbound) State() *event.Event {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.last
}

// AttachObserver adds o. A Subscriber is registered on both sides.
func (in *Inbound) AttachObserver(o observer.Observer) bool {
	if !in.observers.Add(o) {
		return false
	}
	if sub, ok := o.(observer.Subscriber); ok {
		sub.AttachPublisher(in)
	}
	return true
}

// DetachObserver removes o from both sides.
func (in *Inbound) DetachObserver(o observer.Observer) bool {
	if !in.observers.Remove(o) {
		return false
	}
	if sub, ok := o.(observer.Subscriber); ok {
		sub.DetachPublisher(in)
	}
	return true
}

// Observers returns the attached observers in attach order.
func (in *Inbound) Observers() []observer.Observer {
	return in.observers.List()
}

var _ observer.Publisher = (*Inbound)(nil)
