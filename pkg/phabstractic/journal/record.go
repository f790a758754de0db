package journal

import (
	"time"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/event"
)

// Record is the serializable form of an event. The target is an
// in-process object and is not recorded. Data must be encodable by the
// codec in use; after decoding it holds the codec's generic types (for
// example float64 numbers from JSON).
type Record struct {
	ID          string    `json:"id" msgpack:"id"`
	Function    string    `json:"function,omitempty" msgpack:"function,omitempty"`
	Class       string    `json:"class,omitempty" msgpack:"class,omitempty"`
	Namespace   string    `json:"namespace,omitempty" msgpack:"namespace,omitempty"`
	Tags        []string  `json:"tags,omitempty" msgpack:"tags,omitempty"`
	Categories  []string  `json:"categories,omitempty" msgpack:"categories,omitempty"`
	Data        any       `json:"data,omitempty" msgpack:"data,omitempty"`
	Stopped     bool      `json:"stopped,omitempty" msgpack:"stopped,omitempty"`
	Unstoppable bool      `json:"unstoppable,omitempty" msgpack:"unstoppable,omitempty"`
	Timestamp   time.Time `json:"timestamp" msgpack:"timestamp"`
}

// RecordFromEvent snapshots e at time ts.
func RecordFromEvent(e *event.Event, ts time.Time) Record {
	s := e.State()
	return Record{
		ID:          e.Identifier(),
		Function:    s.Function,
		Class:       s.Class,
		Namespace:   s.Namespace,
		Tags:        s.Tags,
		Categories:  s.Categories,
		Data:        s.Data,
		Stopped:     s.Stopped,
		Unstoppable: s.Unstoppable,
		Timestamp:   ts.UTC(),
	}
}

// Event rebuilds an event with the recorded identifier. Extra options
// apply after the recorded fields.
func (r Record) Event(opts ...event.Option) *event.Event {
	base := []event.Option{
		event.WithIdentifier(r.ID),
		event.WithFunction(r.Function),
		event.WithClass(r.Class),
		event.WithNamespace(r.Namespace),
		event.WithTags(r.Tags...),
		event.WithCategories(r.Categories...),
		event.WithData(r.Data),
	}
	e := event.New(append(base, opts...)...)
	if r.Stopped {
		e.Stop()
	}
	if r.Unstoppable {
		e.Force()
	}
	return e
}
