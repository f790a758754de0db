package observer

import "sync"

// Subject is an ordered set of observers. Notify calls them in attach order
// over a snapshot, so observers may attach or detach during notification.
// The zero value is ready to use.
type Subject struct {
	mu        sync.RWMutex
	observers []Observer
}

// Add inserts o. Returns false if o is already present or not comparable.
func (s *Subject) Add(o Observer) bool {
	if !isComparable(o) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.observers {
		if existing == o {
			return false
		}
	}
	s.observers = append(s.observers, o)
	return true
}

// Remove deletes o. Returns false if o was not present.
func (s *Subject) Remove(o Observer) bool {
	if !isComparable(o) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.observers {
		if existing == o {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether o is in the set.
func (s *Subject) Has(o Observer) bool {
	if !isComparable(o) {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, existing := range s.observers {
		if existing == o {
			return true
		}
	}
	return false
}

// List returns a snapshot of the observers in attach order.
func (s *Subject) List() []Observer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Observer(nil), s.observers...)
}

// Len returns the number of observers.
func (s *Subject) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// Notify delivers state to every observer on behalf of publisher and
// returns how many observers accepted it.
func (s *Subject) Notify(publisher Publisher, state any) int {
	accepted := 0
	for _, o := range s.List() {
		if o.NotifyObserver(publisher, state) {
			accepted++
		}
	}
	return accepted
}

// Publishers is a set of publishers kept by a Subscriber.
// The zero value is ready to use.
type Publishers struct {
	mu         sync.RWMutex
	publishers []Publisher
}

// Add inserts p. Returns false if p is already present or not comparable.
func (ps *Publishers) Add(p Publisher) bool {
	if !isComparable(p) {
		return false
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, existing := range ps.publishers {
		if existing == p {
			return false
		}
	}
	ps.publishers = append(ps.publishers, p)
	return true
}

// Remove deletes p. Returns false if p was not present.
func (ps *Publishers) Remove(p Publisher) bool {
	if !isComparable(p) {
		return false
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for i, existing := range ps.publishers {
		if existing == p {
			ps.publishers = append(ps.publishers[:i:i], ps.publishers[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether p is in the set.
func (ps *Publishers) Has(p Publisher) bool {
	if !isComparable(p) {
		return false
	}
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	for _, existing := range ps.publishers {
		if existing == p {
			return true
		}
	}
	return false
}

// List returns a snapshot of the publishers in attach order.
func (ps *Publishers) List() []Publisher {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return append([]Publisher(nil), ps.publishers...)
}

// Len returns the number of publishers.
func (ps *Publishers) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.publishers)
}

// Attach registers sub with p on both sides. It is the shared body of every
// Subscriber.AttachPublisher: the second, mirrored call returns false at
// the duplicate check, which ends the recursion.
func Attach(sub Subscriber, set *Publishers, p Publisher) bool {
	if !set.Add(p) {
		return false
	}
	p.AttachObserver(sub)
	return true
}

// Detach is the mirror of Attach.
func Detach(sub Subscriber, set *Publishers, p Publisher) bool {
	if !set.Remove(p) {
		return false
	}
	p.DetachObserver(sub)
	return true
}

// DetachAll detaches sub from every publisher in set.
func DetachAll(sub Subscriber, set *Publishers) {
	for _, p := range set.List() {
		Detach(sub, set, p)
	}
}
