// Package observer defines the publish/subscribe contract that event
// components use to find each other.
//
// A Publisher keeps a set of Observers and notifies them of new state. A
// Subscriber is an Observer that also remembers which Publishers it is
// attached to. Attaching a Subscriber to a Publisher registers both sides;
// duplicate attaches and double detaches report false and are otherwise
// harmless.
//
// Components embed the small helper types in this package instead of
// re-implementing the bookkeeping: Subject holds observers, Publishers
// holds publishers, and Source is a ready-made Publisher with a state slot.
//
// Observers and publishers are compared by identity, so implementations
// must be comparable (in practice, pointer types). Attach rejects values
// whose dynamic type cannot be compared.
package observer

import "reflect"

// Observer receives state from publishers.
// NotifyObserver reports whether the observer acted on the state. A state
// the observer does not understand is rejected with false, never an error.
type Observer interface {
	NotifyObserver(publisher Publisher, state any) bool
}

// Publisher is an event source that observers attach to.
type Publisher interface {
	AttachObserver(o Observer) bool
	DetachObserver(o Observer) bool
	Observers() []Observer
}

// Subscriber is an Observer that tracks the publishers it is attached to.
type Subscriber interface {
	Observer
	AttachPublisher(p Publisher) bool
	DetachPublisher(p Publisher) bool
	Publishers() []Publisher
}

// isComparable reports whether v can be used as a set member.
func isComparable(v any) bool {
	if v == nil {
		return false
	}
	return reflect.ValueOf(v).Comparable()
}
