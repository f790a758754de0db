package observer

import "sync"

// Source is a general-purpose Publisher holding a single state value.
// SetState stores the value and notifies every observer.
type Source struct {
	subject Subject

	mu    sync.RWMutex
	state any
}

// NewSource creates a Source with no observers and nil state.
func NewSource() *Source {
	return &Source{}
}

// AttachObserver adds o. When o is a Subscriber the source is added to
// its publisher set as well.
func (s *Source) AttachObserver(o Observer) bool {
	if !s.subject.Add(o) {
		return false
	}
	if sub, ok := o.(Subscriber); ok {
		sub.AttachPublisher(s)
	}
	return true
}

// DetachObserver removes o from both sides.
func (s *Source) DetachObserver(o Observer) bool {
	if !s.subject.Remove(o) {
		return false
	}
	if sub, ok := o.(Subscriber); ok {
		sub.DetachPublisher(s)
	}
	return true
}

// Observers returns the attached observers in attach order.
func (s *Source) Observers() []Observer {
	return s.subject.List()
}

// SetState stores state and notifies observers. It returns how many
// observers accepted the state.
func (s *Source) SetState(state any) int {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return s.subject.Notify(s, state)
}

// State returns the most recent state.
func (s *Source) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Notify re-delivers the current state to every observer.
func (s *Source) Notify() int {
	return s.subject.Notify(s, s.State())
}
