package event

import (
	"github.com/asherwunk/phabstractic/pkg/phabstractic/expr"
)

// And combines predicates with AND logic. All must pass.
func And(preds ...Predicate) Predicate {
	return func(e *Event) bool {
		for _, p := range preds {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

// Or combines predicates with OR logic. At least one must pass.
func Or(preds ...Predicate) Predicate {
	return func(e *Event) bool {
		for _, p := range preds {
			if p(e) {
				return true
			}
		}
		return false
	}
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(e *Event) bool {
		return !p(e)
	}
}

// MatchAll accepts every event.
func MatchAll() Predicate {
	return func(*Event) bool { return true }
}

// MatchNone rejects every event.
func MatchNone() Predicate {
	return func(*Event) bool { return false }
}

// ByClass accepts events of the given class.
func ByClass(class string) Predicate {
	return func(e *Event) bool { return e.class == class }
}

// ByNamespace accepts events from the given namespace.
func ByNamespace(namespace string) Predicate {
	return func(e *Event) bool { return e.namespace == namespace }
}

// ByTag accepts events carrying tag.
func ByTag(tag string) Predicate {
	return func(e *Event) bool { return e.tags.has(tag) }
}

// ByCategory accepts events carrying category.
func ByCategory(category string) Predicate {
	return func(e *Event) bool { return e.categories.has(category) }
}

// Expression compiles src into a predicate over Event.Fields.
//
//	p, err := event.Expression(`class == "Order" and tags has urgent`)
//
// An evaluation error rejects the event.
func Expression(src string) (Predicate, error) {
	x, err := expr.Compile(src)
	if err != nil {
		return nil, err
	}
	return func(e *Event) bool {
		ok, err := x.Eval(e.Fields())
		return err == nil && ok
	}, nil
}
