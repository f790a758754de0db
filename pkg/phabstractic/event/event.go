package event

import (
	"reflect"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/identity"
)

// DefaultGenerator mints identifiers for events created without
// WithGenerator or WithIdentifier: "event-1", "event-2", ...
var DefaultGenerator identity.Generator = identity.Default.For("event")

// Event is the unit of dispatch. It records where a state change came from
// (target, function, class, namespace), how it is classified (tags and
// categories) and what it carries (data).
//
// An *Event is one shared handle: every filter and handler along a dispatch
// sees, and may mutate, the same value, and the caller sees the result once
// dispatch returns. An Event is not safe for concurrent mutation.
type Event struct {
	id  string
	gen identity.Generator

	target    any
	function  string
	class     string
	namespace string

	data  any
	ref   any // pointer set by SetDataReference
	isRef bool

	tags       stringSet
	categories stringSet

	stopped     bool
	unstoppable bool
}

// Option configures an Event at construction.
type Option func(*Event)

// WithTarget sets the originating object.
func WithTarget(target any) Option {
	return func(e *Event) { e.target = target }
}

// WithFunction sets the originating function or method name.
func WithFunction(function string) Option {
	return func(e *Event) { e.function = function }
}

// WithClass sets the originating type name.
func WithClass(class string) Option {
	return func(e *Event) { e.class = class }
}

// WithNamespace sets the originating namespace.
func WithNamespace(namespace string) Option {
	return func(e *Event) { e.namespace = namespace }
}

// WithData sets the payload by value.
func WithData(data any) Option {
	return func(e *Event) { e.SetData(data) }
}

// WithTags adds tags.
func WithTags(tags ...string) Option {
	return func(e *Event) { e.tags.add(tags...) }
}

// WithCategories adds categories.
func WithCategories(categories ...string) Option {
	return func(e *Event) { e.categories.add(categories...) }
}

// WithIdentifier fixes the identifier instead of generating one.
func WithIdentifier(id string) Option {
	return func(e *Event) { e.id = id }
}

// WithGenerator sets the identity generator used for this event and its clones.
func WithGenerator(g identity.Generator) Option {
	return func(e *Event) {
		if g != nil {
			e.gen = g
		}
	}
}

// New creates an event. The identifier is generated once, here, and never
// changes afterwards.
func New(opts ...Option) *Event {
	e := &Event{
		gen:        DefaultGenerator,
		tags:       newStringSet(),
		categories: newStringSet(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.id == "" {
		e.id = e.gen.New()
	}
	return e
}

// Identifier returns the event's unique identifier.
func (e *Event) Identifier() string { return e.id }

// Target returns the originating object, if any.
func (e *Event) Target() any { return e.target }

// SetTarget sets the originating object.
func (e *Event) SetTarget(target any) { e.target = target }

// Function returns the originating function name.
func (e *Event) Function() string { return e.function }

// SetFunction sets the originating function name.
func (e *Event) SetFunction(function string) { e.function = function }

// Class returns the originating type name.
func (e *Event) Class() string { return e.class }

// SetClass sets the originating type name.
func (e *Event) SetClass(class string) { e.class = class }

// Namespace returns the originating namespace.
func (e *Event) Namespace() string { return e.namespace }

// SetNamespace sets the originating namespace.
func (e *Event) SetNamespace(namespace string) { e.namespace = namespace }

// AddTag adds a tag. Adding a tag twice is a no-op.
func (e *Event) AddTag(tag string) { e.tags.add(tag) }

// AddTags adds several tags.
func (e *Event) AddTags(tags ...string) { e.tags.add(tags...) }

// RemoveTag removes a tag. Removing a missing tag is a no-op.
func (e *Event) RemoveTag(tag string) { delete(e.tags, tag) }

// HasTag reports whether the event carries tag.
func (e *Event) HasTag(tag string) bool { return e.tags.has(tag) }

// Tags returns the tags in lexical order.
func (e *Event) Tags() []string { return e.tags.sorted() }

// ClearTags removes every tag.
func (e *Event) ClearTags() { e.tags = newStringSet() }

// AddCategory adds a category. Adding a category twice is a no-op.
func (e *Event) AddCategory(category string) { e.categories.add(category) }

// AddCategories adds several categories.
func (e *Event) AddCategories(categories ...string) { e.categories.add(categories...) }

// RemoveCategory removes a category. Removing a missing category is a no-op.
func (e *Event) RemoveCategory(category string) { delete(e.categories, category) }

// HasCategory reports whether the event carries category.
func (e *Event) HasCategory(category string) bool { return e.categories.has(category) }

// Categories returns the categories in lexical order.
func (e *Event) Categories() []string { return e.categories.sorted() }

// ClearCategories removes every category.
func (e *Event) ClearCategories() { e.categories = newStringSet() }

// SetData stores the payload by value, dropping any shared reference.
func (e *Event) SetData(data any) {
	e.data = data
	e.ref = nil
	e.isRef = false
}

// SetDataReference shares ptr with the event. Data dereferences it on every
// call, so later writes through ptr by the source are visible to holders of
// the event. ptr must be a non-nil pointer.
func (e *Event) SetDataReference(ptr any) error {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return ErrNotReference
	}
	e.data = nil
	e.ref = ptr
	e.isRef = true
	return nil
}

// Data returns the payload. A shared reference is dereferenced.
func (e *Event) Data() any {
	if e.isRef {
		return reflect.ValueOf(e.ref).Elem().Interface()
	}
	return e.data
}

// DataReference returns the shared pointer and true, or nil and false when
// the payload is held by value.
func (e *Event) DataReference() (any, bool) {
	return e.ref, e.isRef
}

func (e *Event) hasData() bool {
	return e.isRef || e.data != nil
}

// Stop asks for propagation to end after the current handler.
// It has no effect on propagation while the event is unstoppable.
func (e *Event) Stop() { e.stopped = true }

// Proceed clears the stop request.
func (e *Event) Proceed() { e.stopped = false }

// Force makes the event unstoppable.
func (e *Event) Force() { e.unstoppable = true }

// Subdue makes the event stoppable again.
func (e *Event) Subdue() { e.unstoppable = false }

// IsStopped reports whether Stop was called. It may be true for an
// unstoppable event; use Halted to decide whether to keep propagating.
func (e *Event) IsStopped() bool { return e.stopped }

// IsUnstoppable reports whether the event ignores stop requests.
func (e *Event) IsUnstoppable() bool { return e.unstoppable }

// Halted reports whether propagation must end: stopped and not unstoppable.
func (e *Event) Halted() bool {
	return e.stopped && !e.unstoppable
}
