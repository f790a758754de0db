// Package bridge carries events between processes over NATS.
//
// An Outbound is an observer: every event it is notified with is encoded
// with a journal codec and published on a subject derived from the
// event's namespace and class. An Inbound is a publisher: it subscribes to
// those subjects, decodes each message back into an event and notifies its
// observers, one message at a time.
//
//	out := bridge.NewOutbound(nc)
//	conduit.AddHandler(event.NewFilter(), out, 100)
//
//	in := bridge.NewInbound(nc)
//	in.AttachObserver(remoteConduit)
//	err := in.Start()
//
// The event identifier travels as the Nats-Msg-Id header, so a decoded
// event keeps the identity it had on the sending side. Targets are
// in-process values and are not sent.
package bridge

import (
	"log/slog"
	"strings"
	"time"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/event"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/journal"
)

const (
	// DefaultPrefix is the first subject token when none is configured.
	DefaultPrefix = "events"

	codecHdr = "Phabstractic-Codec"
	emptyTok = "_"
)

type options struct {
	prefix string
	codec  journal.Codec
	now    func() time.Time
	logger *slog.Logger
}

func newOptions(opts []Option) options {
	o := options{
		prefix: DefaultPrefix,
		codec:  journal.DefaultCodec,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures an Outbound or an Inbound.
type Option func(*options)

// WithPrefix sets the first subject token.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithCodec sets the codec used to encode outgoing events. Inbound uses it
// for messages that carry no codec header.
func WithCodec(c journal.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithClock sets the timestamp source for outgoing records.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger for transfer failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Subject returns the subject e is published on: prefix.namespace.class.
// Empty names become "_" and characters NATS treats specially are
// replaced.
func Subject(prefix string, e *event.Event) string {
	return prefix + "." + token(e.Namespace()) + "." + token(e.Class())
}

// Wildcard returns the subject that matches every event under prefix.
func Wildcard(prefix string) string {
	return prefix + ".>"
}

var tokenReplacer = strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_", "\t", "_")

func token(s string) string {
	if s == "" {
		return emptyTok
	}
	return tokenReplacer.Replace(s)
}
