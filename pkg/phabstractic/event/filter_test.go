package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/config"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/event"
)

func sampleEvents() []*event.Event {
	stopped := event.New(event.WithClass("Stopped"))
	stopped.Stop()
	return []*event.Event{
		event.New(),
		event.New(event.WithClass("Order")),
		event.New(event.WithTarget(&struct{}{}), event.WithFunction("Save"), event.WithNamespace("billing")),
		event.New(event.WithTags("a", "b"), event.WithCategories("c")),
		event.New(event.WithData([]int{1, 2})),
		stopped,
	}
}

func TestWildcardFilterMatchesEverything(t *testing.T) {
	f := event.NewFilter()
	require.False(t, f.IsStrict())
	for _, e := range sampleEvents() {
		assert.True(t, f.IsEventApplicable(e), "event %s", e.Identifier())
	}
	assert.False(t, f.IsEventApplicable(nil))
}

func TestLooseFilter(t *testing.T) {
	target := &struct{ n int }{1}

	tests := []struct {
		name   string
		filter *event.Filter
		event  *event.Event
		want   bool
	}{
		{"class matches", event.NewFilter(event.PatternClass("Order")), event.New(event.WithClass("Order")), true},
		{"class differs", event.NewFilter(event.PatternClass("Order")), event.New(event.WithClass("Invoice")), false},
		{"one field of many", event.NewFilter(event.PatternClass("Order"), event.PatternFunction("Save")),
			event.New(event.WithClass("Invoice"), event.WithFunction("Save")), true},
		{"namespace", event.NewFilter(event.PatternNamespace("billing")), event.New(event.WithNamespace("billing")), true},
		{"target by identity", event.NewFilter(event.PatternTarget(target)), event.New(event.WithTarget(target)), true},
		{"other target", event.NewFilter(event.PatternTarget(target)), event.New(event.WithTarget(&struct{ n int }{1})), false},
		{"tags intersect", event.NewFilter(event.PatternTags("x", "y")), event.New(event.WithTags("y", "z")), true},
		{"tags disjoint", event.NewFilter(event.PatternTags("x")), event.New(event.WithTags("z")), false},
		{"categories intersect", event.NewFilter(event.PatternCategories("c")), event.New(event.WithCategories("c", "d")), true},
		{"identifier", event.NewFilter(event.PatternIdentifier("e-1"), event.PatternClass("Nope")),
			event.New(event.WithIdentifier("e-1")), true},
		{"empty pattern field does not match empty event field", event.NewFilter(event.PatternClass("Order")), event.New(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.IsEventApplicable(tt.event))
		})
	}
}

func TestStrictFilter(t *testing.T) {
	pattern := func() *event.Filter {
		return event.NewFilter(event.PatternClass("A"), event.PatternTags("x", "y"), event.Strict())
	}

	tests := []struct {
		name  string
		event *event.Event
		want  bool
	}{
		{"missing pattern tag", event.New(event.WithClass("A"), event.WithTags("x")), false},
		{"exact tags", event.New(event.WithClass("A"), event.WithTags("x", "y")), true},
		{"superset of pattern tags", event.New(event.WithClass("A"), event.WithTags("x", "y", "z")), true},
		{"class differs", event.New(event.WithClass("B"), event.WithTags("x", "y")), false},
		{"extra provenance", event.New(event.WithClass("A"), event.WithFunction("Save"), event.WithTags("x", "y")), false},
		{"no tags", event.New(event.WithClass("A")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pattern().IsEventApplicable(tt.event))
		})
	}

	t.Run("categories must be contained", func(t *testing.T) {
		f := event.NewFilter(event.PatternCategories("c"), event.Strict())
		assert.True(t, f.IsEventApplicable(event.New(event.WithCategories("c", "d"))))
		assert.False(t, f.IsEventApplicable(event.New(event.WithCategories("d"))))
	})

	t.Run("empty strict pattern matches only empty provenance", func(t *testing.T) {
		f := event.NewFilter(event.Strict())
		assert.True(t, f.IsEventApplicable(event.New(event.WithTags("any"))))
		assert.False(t, f.IsEventApplicable(event.New(event.WithClass("A"))))
	})

	t.Run("identifier only when included", func(t *testing.T) {
		e := event.New(event.WithClass("A"), event.WithTags("x", "y"))
		f := event.FilterFromEvent(e, event.Strict())
		assert.True(t, f.IsEventApplicable(event.New(event.WithClass("A"), event.WithTags("x", "y"))))

		f.SetIncludeIdentifier(true)
		assert.True(t, f.IsEventApplicable(e))
		assert.False(t, f.IsEventApplicable(event.New(event.WithClass("A"), event.WithTags("x", "y"))))
	})
}

func TestFilterModeToggle(t *testing.T) {
	f := event.NewFilter(event.PatternClass("A"), event.PatternFunction("Run"))
	e := event.New(event.WithClass("A"))

	assert.True(t, f.IsEventApplicable(e))
	f.MakeStrict()
	assert.True(t, f.IsStrict())
	assert.False(t, f.IsEventApplicable(e))
	f.LoosenUp()
	assert.True(t, f.IsEventApplicable(e))
}

func TestFilterSetters(t *testing.T) {
	f := event.NewFilter()
	f.SetClass("Order")
	f.SetNamespace("billing")
	f.SetTags("x")
	f.SetCategories("c")
	f.SetFunction("Save")
	f.SetTarget("t")

	p := f.Pattern()
	assert.Equal(t, "Order", p.Class)
	assert.Equal(t, "billing", p.Namespace)
	assert.Equal(t, "Save", p.Function)
	assert.Equal(t, "t", p.Target)
	assert.Equal(t, []string{"x"}, p.Tags)
	assert.Equal(t, []string{"c"}, p.Categories)

	f.SetIdentifier("e-9")
	assert.Equal(t, "e-9", f.Identifier())
	assert.True(t, f.IsEventApplicable(event.New(event.WithIdentifier("e-9"))))

	assert.False(t, f.IncludesIdentifier())
	f.SetIncludeIdentifier(true)
	assert.True(t, f.IncludesIdentifier())
	assert.Equal(t, "e-1", event.NewFilter(event.PatternIdentifier("e-1")).Identifier())
}

func TestPredicateOverridesPattern(t *testing.T) {
	f := event.NewFilter(event.PatternClass("A"), event.Strict(), event.WithPredicate(event.MatchNone()))
	assert.False(t, f.IsEventApplicable(event.New(event.WithClass("A"))))

	f.SetPredicate(event.MatchAll())
	assert.True(t, f.IsEventApplicable(event.New(event.WithClass("B"))))

	f.SetPredicate(nil)
	assert.False(t, f.IsEventApplicable(event.New(event.WithClass("B"))))
}

func TestPredicateCombinators(t *testing.T) {
	e := event.New(event.WithClass("Order"), event.WithNamespace("billing"), event.WithTags("urgent"), event.WithCategories("finance"))

	assert.True(t, event.And(event.ByClass("Order"), event.ByNamespace("billing"))(e))
	assert.False(t, event.And(event.ByClass("Order"), event.ByTag("late"))(e))
	assert.True(t, event.Or(event.ByTag("late"), event.ByCategory("finance"))(e))
	assert.False(t, event.Or()(e))
	assert.True(t, event.And()(e))
	assert.True(t, event.Not(event.ByClass("Invoice"))(e))
}

func TestExpressionPredicate(t *testing.T) {
	p, err := event.Expression(`class == "Order" and tags has urgent`)
	require.NoError(t, err)

	assert.True(t, p(event.New(event.WithClass("Order"), event.WithTags("urgent", "paid"))))
	assert.False(t, p(event.New(event.WithClass("Order"), event.WithTags("paid"))))
	assert.False(t, p(event.New(event.WithClass("Invoice"), event.WithTags("urgent"))))

	stopped, err := event.Expression("not stopped")
	require.NoError(t, err)
	e := event.New()
	assert.True(t, stopped(e))
	e.Stop()
	assert.False(t, stopped(e))

	_, err = event.Expression("  ")
	assert.Error(t, err)
	_, err = event.Expression(`class == "Order`)
	assert.Error(t, err)
}

func TestFilterFromConfig(t *testing.T) {
	t.Run("defaults are loose wildcard", func(t *testing.T) {
		f := event.FilterFromConfig(config.New(nil))
		assert.False(t, f.IsStrict())
		assert.True(t, f.IsEventApplicable(event.New(event.WithClass("Anything"))))
	})

	t.Run("reads keys", func(t *testing.T) {
		f := event.FilterFromConfig(config.New(map[string]any{
			"strict":     true,
			"class":      "A",
			"tags":       []any{"x", "y"},
			"categories": "c",
		}))
		assert.True(t, f.IsStrict())
		assert.True(t, f.IsEventApplicable(event.New(event.WithClass("A"), event.WithTags("x", "y"), event.WithCategories("c"))))
		assert.False(t, f.IsEventApplicable(event.New(event.WithClass("A"), event.WithTags("x"))))
	})

	t.Run("mistyped strict falls back", func(t *testing.T) {
		f := event.FilterFromConfig(config.New(map[string]any{"strict": "sometimes"}))
		assert.False(t, f.IsStrict())
	})
}
