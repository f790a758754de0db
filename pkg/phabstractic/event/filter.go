package event

import (
	"reflect"
	"sync"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/config"
)

// Filter decides whether an event applies. It holds an event-shaped
// pattern and matches in one of two modes:
//
//   - loose (default): the event applies when identifiers are equal, when
//     the pattern is empty, when any non-empty pattern field equals the
//     event's field, or when tag or category sets intersect.
//   - strict: target, function, class and namespace must all be equal, and
//     the pattern's tags and categories must each be a subset of the
//     event's. With IncludeIdentifier, identifiers must be equal too.
//
// A Filter with a custom Predicate delegates to it and ignores the pattern.
// Filters are compared by pointer identity when registered with a Conduit.
type Filter struct {
	mu sync.RWMutex

	identifier string
	target     any
	function   string
	class      string
	namespace  string
	tags       stringSet
	categories stringSet

	strict            bool
	includeIdentifier bool
	predicate         Predicate
}

// Predicate is a custom applicability test.
type Predicate func(e *Event) bool

// FilterOption configures a Filter.
type FilterOption func(*Filter)

// PatternTarget sets the target to match.
func PatternTarget(target any) FilterOption {
	return func(f *Filter) { f.target = target }
}

// PatternFunction sets the function name to match.
func PatternFunction(function string) FilterOption {
	return func(f *Filter) { f.function = function }
}

// PatternClass sets the class name to match.
func PatternClass(class string) FilterOption {
	return func(f *Filter) { f.class = class }
}

// PatternNamespace sets the namespace to match.
func PatternNamespace(namespace string) FilterOption {
	return func(f *Filter) { f.namespace = namespace }
}

// PatternTags adds tags to match.
func PatternTags(tags ...string) FilterOption {
	return func(f *Filter) { f.tags.add(tags...) }
}

// PatternCategories adds categories to match.
func PatternCategories(categories ...string) FilterOption {
	return func(f *Filter) { f.categories.add(categories...) }
}

// PatternIdentifier sets the event identifier to match.
func PatternIdentifier(id string) FilterOption {
	return func(f *Filter) { f.identifier = id }
}

// Strict turns on strict matching.
func Strict() FilterOption {
	return func(f *Filter) { f.strict = true }
}

// IncludeIdentifier makes strict matching compare identifiers as well.
func IncludeIdentifier() FilterOption {
	return func(f *Filter) { f.includeIdentifier = true }
}

// WithPredicate replaces pattern matching with p.
func WithPredicate(p Predicate) FilterOption {
	return func(f *Filter) { f.predicate = p }
}

// WithFilterConfig applies the keys understood by FilterFromConfig.
func WithFilterConfig(cfg config.Config) FilterOption {
	return func(f *Filter) {
		f.strict = cfg.Bool("strict", f.strict)
		f.includeIdentifier = cfg.Bool("include_identifier", f.includeIdentifier)
		f.class = cfg.String("class", f.class)
		f.function = cfg.String("function", f.function)
		f.namespace = cfg.String("namespace", f.namespace)
		f.identifier = cfg.String("identifier", f.identifier)
		f.tags.add(cfg.StringSlice("tags", nil)...)
		f.categories.add(cfg.StringSlice("categories", nil)...)
	}
}

// NewFilter creates a filter. With no options it is a loose wildcard that
// accepts every event.
func NewFilter(opts ...FilterOption) *Filter {
	f := &Filter{
		tags:       newStringSet(),
		categories: newStringSet(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FilterFromEvent uses e's identifier, provenance, tags and categories as
// the pattern. Options apply after the copy.
func FilterFromEvent(e *Event, opts ...FilterOption) *Filter {
	f := NewFilter()
	if e != nil {
		f.identifier = e.id
		f.target = e.target
		f.function = e.function
		f.class = e.class
		f.namespace = e.namespace
		f.tags = e.tags.clone()
		f.categories = e.categories.clone()
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FilterFromConfig builds a filter from configuration keys: strict,
// include_identifier, identifier, class, function, namespace, tags and
// categories. Missing keys leave the loose wildcard defaults.
func FilterFromConfig(cfg config.Config) *Filter {
	return NewFilter(WithFilterConfig(cfg))
}

// IsEventApplicable reports whether e matches the filter.
func (f *Filter) IsEventApplicable(e *Event) bool {
	if e == nil {
		return false
	}

	f.mu.RLock()
	p := f.predicate
	strict := f.strict
	f.mu.RUnlock()

	if p != nil {
		return p(e)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if strict {
		return f.matchStrict(e)
	}
	return f.matchLoose(e)
}

func (f *Filter) matchStrict(e *Event) bool {
	if f.includeIdentifier && f.identifier != e.id {
		return false
	}
	return sameTarget(f.target, e.target) &&
		f.function == e.function &&
		f.class == e.class &&
		f.namespace == e.namespace &&
		f.tags.subsetOf(e.tags) &&
		f.categories.subsetOf(e.categories)
}

func (f *Filter) matchLoose(e *Event) bool {
	if f.identifier != "" && f.identifier == e.id {
		return true
	}
	if f.isWildcard() {
		return true
	}
	switch {
	case f.target != nil && sameTarget(f.target, e.target):
		return true
	case f.function != "" && f.function == e.function:
		return true
	case f.class != "" && f.class == e.class:
		return true
	case f.namespace != "" && f.namespace == e.namespace:
		return true
	}
	return f.tags.intersects(e.tags) || f.categories.intersects(e.categories)
}

// isWildcard reports whether every pattern field is empty.
func (f *Filter) isWildcard() bool {
	return f.identifier == "" &&
		f.target == nil &&
		f.function == "" &&
		f.class == "" &&
		f.namespace == "" &&
		len(f.tags) == 0 &&
		len(f.categories) == 0
}

// sameTarget compares targets by == when both are comparable and by
// deep equality otherwise.
func sameTarget(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() && reflect.ValueOf(a).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// MakeStrict switches to strict matching.
func (f *Filter) MakeStrict() {
	f.mu.Lock()
	f.strict = true
	f.mu.Unlock()
}

// LoosenUp switches to loose matching.
func (f *Filter) LoosenUp() {
	f.mu.Lock()
	f.strict = false
	f.mu.Unlock()
}

// IsStrict reports whether the filter matches strictly.
func (f *Filter) IsStrict() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.strict
}

// SetIncludeIdentifier toggles identifier comparison in strict mode.
func (f *Filter) SetIncludeIdentifier(include bool) {
	f.mu.Lock()
	f.includeIdentifier = include
	f.mu.Unlock()
}

// SetPredicate replaces pattern matching with p. A nil p restores it.
func (f *Filter) SetPredicate(p Predicate) {
	f.mu.Lock()
	f.predicate = p
	f.mu.Unlock()
}

// SetIdentifier sets the identifier pattern.
func (f *Filter) SetIdentifier(id string) {
	f.mu.Lock()
	f.identifier = id
	f.mu.Unlock()
}

// SetTarget sets the target pattern.
func (f *Filter) SetTarget(target any) {
	f.mu.Lock()
	f.target = target
	f.mu.Unlock()
}

// SetFunction sets the function pattern.
func (f *Filter) SetFunction(function string) {
	f.mu.Lock()
	f.function = function
	f.mu.Unlock()
}

// SetClass sets the class pattern.
func (f *Filter) SetClass(class string) {
	f.mu.Lock()
	f.class = class
	f.mu.Unlock()
}

// SetNamespace sets the namespace pattern.
func (f *Filter) SetNamespace(namespace string) {
	f.mu.Lock()
	f.namespace = namespace
	f.mu.Unlock()
}

// SetTags replaces the tag pattern.
func (f *Filter) SetTags(tags ...string) {
	f.mu.Lock()
	f.tags = newStringSet(tags...)
	f.mu.Unlock()
}

// SetCategories replaces the category pattern.
func (f *Filter) SetCategories(categories ...string) {
	f.mu.Lock()
	f.categories = newStringSet(categories...)
	f.mu.Unlock()
}

// Identifier returns the identifier pattern.
func (f *Filter) Identifier() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.identifier
}

// IncludesIdentifier reports whether strict matching compares identifiers.
func (f *Filter) IncludesIdentifier() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.includeIdentifier
}

// Pattern returns the pattern fields as an event state. The identifier
// pattern and the matching mode are reported by Identifier, IsStrict and
// IncludesIdentifier.
func (f *Filter) Pattern() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return State{
		Target:     f.target,
		Function:   f.function,
		Class:      f.class,
		Namespace:  f.namespace,
		Tags:       f.tags.sorted(),
		Categories: f.categories.sorted(),
	}
}
