package event_test

import (
	"sync"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/event"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/observer"
)

// spy records every state it is notified with.
type spy struct {
	mu     sync.Mutex
	name   string
	log    *[]string
	states []any
	accept bool
	onCall func(e *event.Event)
}

func newSpy(name string, log *[]string) *spy {
	return &spy{name: name, log: log, accept: true}
}

func (s *spy) NotifyObserver(_ observer.Publisher, state any) bool {
	s.mu.Lock()
	s.states = append(s.states, state)
	if s.log != nil {
		*s.log = append(*s.log, s.name)
	}
	s.mu.Unlock()
	if e, ok := state.(*event.Event); ok && s.onCall != nil {
		s.onCall(e)
	}
	return s.accept
}

func (s *spy) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// stopper stops every event it sees.
func stopper(name string, log *[]string) *spy {
	s := newSpy(name, log)
	s.onCall = func(e *event.Event) { e.Stop() }
	return s
}
