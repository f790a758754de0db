package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/event"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/observer"
)

func TestActor(t *testing.T) {
	var log []string
	h := newSpy("handler", &log)
	f := event.NewFilter(event.PatternClass("Order"))

	t.Run("unset parts accept nothing", func(t *testing.T) {
		assert.False(t, event.NewActor(nil, h).NotifyObserver(nil, event.New()))
		assert.False(t, event.NewActor(f, nil).NotifyObserver(nil, event.New(event.WithClass("Order"))))
		assert.Empty(t, log)
	})

	t.Run("typed nil handler counts as unset", func(t *testing.T) {
		order := event.New(event.WithClass("Order"))
		nilActor := event.NewActor(f, (*event.Handler)(nil))
		assert.Nil(t, nilActor.Handler())
		assert.NotPanics(t, func() { assert.False(t, nilActor.NotifyObserver(nil, order)) })

		nilActor.SetHandler(h)
		nilActor.SetHandler((*spy)(nil))
		assert.Nil(t, nilActor.Handler())
		assert.False(t, nilActor.NotifyObserver(nil, order))
	})

	a := event.NewActor(f, h)

	t.Run("filter decides", func(t *testing.T) {
		assert.True(t, a.NotifyObserver(nil, event.New(event.WithClass("Order"))))
		assert.False(t, a.NotifyObserver(nil, event.New(event.WithClass("Invoice"))))
		assert.Equal(t, 1, h.calls())
	})

	t.Run("non-events are rejected", func(t *testing.T) {
		assert.False(t, a.NotifyObserver(nil, "Order"))
		assert.Equal(t, 1, h.calls())
	})

	t.Run("accepted even if handler declines", func(t *testing.T) {
		declining := newSpy("declining", nil)
		declining.accept = false
		assert.True(t, event.NewActor(f, declining).NotifyObserver(nil, event.New(event.WithClass("Order"))))
	})

	t.Run("setters", func(t *testing.T) {
		other := newSpy("other", &log)
		a.SetHandler(other)
		a.SetFilter(event.NewFilter(event.PatternClass("Invoice")))
		assert.Same(t, other, a.Handler())
		assert.True(t, a.NotifyObserver(nil, event.New(event.WithClass("Invoice"))))
		assert.Equal(t, 1, other.calls())
		assert.NotNil(t, a.Filter())
	})
}

func TestActorWithHandler(t *testing.T) {
	handled := 0
	h := event.NewClosureHandler(func(*event.Event) { handled++ })
	a := event.NewActor(event.NewFilter(event.PatternTags("audit")), h)

	src := observer.NewSource()
	assert.True(t, a.AttachPublisher(src))
	assert.False(t, a.AttachPublisher(src))
	assert.Len(t, src.Observers(), 1)

	src.SetState(event.New(event.WithTags("audit")))
	src.SetState(event.New(event.WithTags("debug")))
	src.SetState("noise")
	assert.Equal(t, 1, handled)

	assert.True(t, a.DetachPublisher(src))
	assert.Empty(t, src.Observers())
	assert.Empty(t, a.Publishers())
}
