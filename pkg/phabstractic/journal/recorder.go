package journal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/event"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/observability"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/observer"
)

// Recorder appends every event it is notified with to one stream.
type Recorder struct {
	store  Store
	stream string
	codec  Codec
	now    func() time.Time
	logger *slog.Logger

	publishers observer.Publishers
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithCodec sets the record codec. Default: DefaultCodec.
func WithCodec(c Codec) RecorderOption {
	return func(r *Recorder) {
		if c != nil {
			r.codec = c
		}
	}
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithRecorderLogger sets the logger for failed writes.
func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) { r.logger = logger }
}

// NewRecorder creates a recorder that writes to stream in store.
func NewRecorder(store Store, stream string, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:  store,
		stream: stream,
		codec:  DefaultCodec,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stream returns the stream name.
func (r *Recorder) Stream() string { return r.stream }

// Record encodes e and appends it. Returns the sequence number.
func (r *Recorder) Record(e *event.Event) (int64, error) {
	rec := RecordFromEvent(e, r.now())
	data, err := r.codec.Marshal(&rec)
	if err != nil {
		return 0, fmt.Errorf("encode event %s: %w", e.Identifier(), err)
	}
	seq, err := r.store.Append(r.stream, e.Identifier(), data)
	if err != nil {
		return 0, fmt.Errorf("append event %s: %w", e.Identifier(), err)
	}
	return seq, nil
}

// NotifyObserver records event states. A failed write is logged and
// reported as false; it never interrupts dispatch.
func (r *Recorder) NotifyObserver(_ observer.Publisher, state any) bool {
	e, ok := state.(*event.Event)
	if !ok || e == nil {
		return false
	}
	if _, err := r.Record(e); err != nil {
		observability.LogJournalError(r.logger, r.stream, e.Identifier(), err)
		return false
	}
	return true
}

// Replay decodes the entries after sequence after back into events, in
// order. Use 0 for the whole stream.
func (r *Recorder) Replay(after int64) ([]*event.Event, error) {
	return Replay(r.store, r.stream, r.codec, after)
}

// ReplayTo decodes the stream and notifies o with each event on behalf of
// pub. Returns how many events o accepted.
func (r *Recorder) ReplayTo(pub observer.Publisher, o observer.Observer, after int64) (int, error) {
	events, err := r.Replay(after)
	if err != nil {
		return 0, err
	}
	accepted := 0
	for _, e := range events {
		if o.NotifyObserver(pub, e) {
			accepted++
		}
	}
	return accepted, nil
}

// AttachPublisher subscribes to p.
func (r *Recorder) AttachPublisher(p observer.Publisher) bool {
	return observer.Attach(r, &r.publishers, p)
}

// DetachPublisher unsubscribes from p.
func (r *Recorder) DetachPublisher(p observer.Publisher) bool {
	return observer.Detach(r, &r.publishers, p)
}

// Publishers returns the publishers the recorder is subscribed to.
func (r *Recorder) Publishers() []observer.Publisher {
	return r.publishers.List()
}

// Replay decodes the entries of stream after sequence after.
func Replay(store Store, stream string, codec Codec, after int64) ([]*event.Event, error) {
	entries, err := store.Read(stream, after)
	if err != nil {
		return nil, fmt.Errorf("read stream %s: %w", stream, err)
	}
	events := make([]*event.Event, 0, len(entries))
	for _, entry := range entries {
		var rec Record
		if err := codec.Unmarshal(entry.Data, &rec); err != nil {
			return nil, fmt.Errorf("decode %s/%d: %w", stream, entry.Sequence, err)
		}
		events = append(events, rec.Event())
	}
	return events, nil
}

var _ observer.Subscriber = (*Recorder)(nil)
