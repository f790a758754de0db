package event

import "sort"

// stringSet is an unordered, deduplicated set of strings.
type stringSet map[string]struct{}

func newStringSet(values ...string) stringSet {
	s := make(stringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// add inserts values, allocating the set if it is nil.
func (s *stringSet) add(values ...string) {
	if *s == nil {
		*s = make(stringSet, len(values))
	}
	for _, v := range values {
		(*s)[v] = struct{}{}
	}
}

func (s stringSet) has(v string) bool {
	_, ok := s[v]
	return ok
}

// sorted returns the members in lexical order, or nil when empty.
func (s stringSet) sorted() []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (s stringSet) clone() stringSet {
	out := make(stringSet, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

// intersects reports whether s and other share a member.
func (s stringSet) intersects(other stringSet) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for v := range small {
		if large.has(v) {
			return true
		}
	}
	return false
}

// subsetOf reports whether every member of s is in other.
// The empty set is a subset of everything.
func (s stringSet) subsetOf(other stringSet) bool {
	for v := range s {
		if !other.has(v) {
			return false
		}
	}
	return true
}
