package event

import "fmt"

// State is a snapshot of every mutable field of an Event. The identifier is
// not part of the state.
type State struct {
	Target      any
	Function    string
	Class       string
	Namespace   string
	Data        any
	Tags        []string
	Categories  []string
	Stopped     bool
	Unstoppable bool

	ref any // shared data pointer, carried across SetState
}

// State returns a snapshot of the event. A shared data reference is
// dereferenced into Data and kept alongside, so SetState on another event
// shares the same pointer.
func (e *Event) State() State {
	s := State{
		Target:      e.target,
		Function:    e.function,
		Class:       e.class,
		Namespace:   e.namespace,
		Data:        e.Data(),
		Tags:        e.tags.sorted(),
		Categories:  e.categories.sorted(),
		Stopped:     e.stopped,
		Unstoppable: e.unstoppable,
	}
	if e.isRef {
		s.ref = e.ref
	}
	return s
}

// SetState applies s. With morph, only the fields s actually carries are
// copied: non-empty strings, non-nil target and data, non-empty tag and
// category sets, and flags that are true. Without morph every field is
// replaced, clearing what s lacks.
func (e *Event) SetState(s State, morph bool) {
	if !morph {
		e.target = s.Target
		e.function = s.Function
		e.class = s.Class
		e.namespace = s.Namespace
		e.setStateData(s)
		e.tags = newStringSet(s.Tags...)
		e.categories = newStringSet(s.Categories...)
		e.stopped = s.Stopped
		e.unstoppable = s.Unstoppable
		return
	}

	if s.Target != nil {
		e.target = s.Target
	}
	if s.Function != "" {
		e.function = s.Function
	}
	if s.Class != "" {
		e.class = s.Class
	}
	if s.Namespace != "" {
		e.namespace = s.Namespace
	}
	if s.ref != nil || s.Data != nil {
		e.setStateData(s)
	}
	if len(s.Tags) > 0 {
		e.tags = newStringSet(s.Tags...)
	}
	if len(s.Categories) > 0 {
		e.categories = newStringSet(s.Categories...)
	}
	if s.Stopped {
		e.stopped = true
	}
	if s.Unstoppable {
		e.unstoppable = true
	}
}

func (e *Event) setStateData(s State) {
	if s.ref != nil {
		e.data = nil
		e.ref = s.ref
		e.isRef = true
		return
	}
	e.SetData(s.Data)
}

// SetStateWithEvent copies the state of other into e. See SetState for
// morph. The identifier of e is unchanged. A nil other is ignored.
func (e *Event) SetStateWithEvent(other *Event, morph bool) {
	if other == nil || other == e {
		return
	}
	e.SetState(other.State(), morph)
}

// SetStateWithMap is the keyed form of SetState. Recognized keys are
// target, function, class, namespace, data, tags, categories, stopped and
// unstoppable; other keys are ignored. With morph, only keys present in m
// are applied (an empty value present in m still overwrites). Without
// morph, missing keys are cleared.
//
// Tags and categories accept []string, []any of strings or a single string.
// A value of the wrong type returns ErrInvalidState and leaves e unchanged.
func (e *Event) SetStateWithMap(m map[string]any, morph bool) error {
	var s State
	if morph {
		s = e.State()
	}

	for key, v := range m {
		var err error
		switch key {
		case "target":
			s.Target = v
		case "function":
			s.Function, err = stateString(key, v)
		case "class":
			s.Class, err = stateString(key, v)
		case "namespace":
			s.Namespace, err = stateString(key, v)
		case "data":
			s.Data = v
			s.ref = nil
		case "tags":
			s.Tags, err = stateStrings(key, v)
		case "categories":
			s.Categories, err = stateStrings(key, v)
		case "stopped":
			s.Stopped, err = stateBool(key, v)
		case "unstoppable":
			s.Unstoppable, err = stateBool(key, v)
		}
		if err != nil {
			return err
		}
	}

	e.SetState(s, false)
	return nil
}

func stateString(key string, v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case nil:
		return "", nil
	}
	return "", fmt.Errorf("%w: %s: %T", ErrInvalidState, key, v)
}

func stateBool(key string, v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case nil:
		return false, nil
	}
	return false, fmt.Errorf("%w: %s: %T", ErrInvalidState, key, v)
}

func stateStrings(key string, v any) ([]string, error) {
	switch vals := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{vals}, nil
	case []string:
		return vals, nil
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s: element %T", ErrInvalidState, key, item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s: %T", ErrInvalidState, key, v)
}

// Clone returns a new event with the same state and a fresh identifier from
// the same generator. A shared data reference stays shared.
func (e *Event) Clone() *Event {
	gen := e.gen
	if gen == nil {
		gen = DefaultGenerator
	}
	c := &Event{
		id:         gen.New(),
		gen:        gen,
		tags:       newStringSet(),
		categories: newStringSet(),
	}
	c.SetState(e.State(), false)
	return c
}

// Fields returns the event as a flat map, the form expression predicates
// and journal records read.
func (e *Event) Fields() map[string]any {
	return map[string]any{
		"identifier":  e.id,
		"target":      e.target,
		"function":    e.function,
		"class":       e.class,
		"namespace":   e.namespace,
		"data":        e.Data(),
		"tags":        e.tags.sorted(),
		"categories":  e.categories.sorted(),
		"stopped":     e.stopped,
		"unstoppable": e.unstoppable,
	}
}
