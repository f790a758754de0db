package bridge

import (
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/event"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/journal"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/observability"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/observer"
)

// Outbound publishes the events it observes to NATS.
type Outbound struct {
	nc   *nats.Conn
	opts options

	publishers observer.Publishers
}

// NewOutbound creates an outbound bridge on nc.
func NewOutbound(nc *nats.Conn, opts ...Option) *Outbound {
	return &Outbound{nc: nc, opts: newOptions(opts)}
}

// Prefix returns the subject prefix.
func (o *Outbound) Prefix() string { return o.opts.prefix }

// Pack encodes e into a message on its subject.
func (o *Outbound) Pack(e *event.Event) (*nats.Msg, error) {
	rec := journal.RecordFromEvent(e, o.opts.now())
	data, err := o.opts.codec.Marshal(&rec)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", e.Identifier(), err)
	}
	msg := nats.NewMsg(Subject(o.opts.prefix, e))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, e.Identifier())
	msg.Header.Set(codecHdr, o.opts.codec.Name())
	return msg, nil
}

// Publish sends e.
func (o *Outbound) Publish(e *event.Event) error {
	msg, err := o.Pack(e)
	if err != nil {
		return err
	}
	if err := o.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}

// NotifyObserver publishes event states. A failed publish is logged and
// reported as false.
func (o *Outbound) NotifyObserver(_ observer.Publisher, state any) bool {
	e, ok := state.(*event.Event)
	if !ok || e == nil {
		return false
	}
	if err := o.Publish(e); err != nil {
		observability.LogBridgeError(o.opts.logger, Subject(o.opts.prefix, e), e.Identifier(), err)
		return false
	}
	return true
}

// AttachPublisher subscribes to p.
func (o *Outbound) AttachPublisher(p observer.Publisher) bool {
	return observer.Attach(o, &o.publishers, p)
}

// DetachPublisher unsubscribes from p.
func (o *Outbound) DetachPublisher(p observer.Publisher) bool {
	return observer.Detach(o, &o.publishers, p)
}

// Publishers returns the publishers the bridge is subscribed to.
func (o *Outbound) Publishers() []observer.Publisher {
	return o.publishers.List()
}

var _ observer.Subscriber = (*Outbound)(nil)
