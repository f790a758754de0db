package journal_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/event"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/journal"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/observer"
)

func fixedClock() time.Time {
	return time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
}

func TestRecorderRecordsAndReplays(t *testing.T) {
	for _, codec := range []journal.Codec{journal.JSON, journal.MsgPack, journal.ProtoBuf} {
		t.Run(codec.Name(), func(t *testing.T) {
			store := journal.NewMemoryStore()
			rec := journal.NewRecorder(store, "orders", journal.WithCodec(codec), journal.WithClock(fixedClock))

			src := observer.NewSource()
			src.AttachObserver(rec)

			first := event.New(event.WithClass("Order"), event.WithTags("paid"), event.WithData("one"))
			second := event.New(event.WithClass("Order"), event.WithNamespace("billing"))
			second.Force()
			src.SetState(first)
			src.SetState(second)
			src.SetState("not an event")

			events, err := rec.Replay(0)
			require.NoError(t, err)
			require.Len(t, events, 2)

			assert.Equal(t, first.Identifier(), events[0].Identifier())
			assert.Equal(t, "Order", events[0].Class())
			assert.Equal(t, []string{"paid"}, events[0].Tags())
			assert.Equal(t, "one", events[0].Data())

			assert.Equal(t, second.Identifier(), events[1].Identifier())
			assert.Equal(t, "billing", events[1].Namespace())
			assert.True(t, events[1].IsUnstoppable())

			tail, err := rec.Replay(1)
			require.NoError(t, err)
			require.Len(t, tail, 1)
			assert.Equal(t, second.Identifier(), tail[0].Identifier())
		})
	}
}

func TestRecorderDuplicateIsLogged(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	rec := journal.NewRecorder(journal.NewMemoryStore(), "orders", journal.WithRecorderLogger(logger))

	e := event.New()
	assert.True(t, rec.NotifyObserver(nil, e))
	assert.False(t, rec.NotifyObserver(nil, e))
	assert.Contains(t, buf.String(), "journal write failed")

	_, err := rec.Record(e)
	assert.ErrorIs(t, err, journal.ErrDuplicate)
}

func TestRecorderInQueue(t *testing.T) {
	store := journal.NewMemoryStore()
	rec := journal.NewRecorder(store, "audit")

	q := event.NewHandlerPriorityQueue()
	q.Insert(event.NewClosureHandler(func(e *event.Event) { e.AddTag("seen") }), 0)
	q.Insert(rec, 1)

	q.Propagate(nil, event.New(event.WithClass("Order")))

	events, err := rec.Replay(0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, []string{"seen"}, events[0].Tags(), "recorded after earlier handlers ran")
}

func TestReplayTo(t *testing.T) {
	store := journal.NewMemoryStore()
	rec := journal.NewRecorder(store, "orders")
	for _, class := range []string{"Order", "Invoice", "Order"} {
		_, err := rec.Record(event.New(event.WithClass(class)))
		require.NoError(t, err)
	}

	conduit := event.NewConduit()
	var classes []string
	conduit.AddHandler(event.NewFilter(event.PatternClass("Order")),
		event.NewClosureHandler(func(e *event.Event) { classes = append(classes, e.Class()) }), 0)

	accepted, err := rec.ReplayTo(nil, conduit, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, accepted)
	assert.Equal(t, []string{"Order", "Order"}, classes)
}

func TestReplayDecodeError(t *testing.T) {
	store := journal.NewMemoryStore()
	_, err := store.Append("bad", "e-1", []byte("{not json"))
	require.NoError(t, err)

	_, err = journal.Replay(store, "bad", journal.JSON, 0)
	assert.Error(t, err)
}

func TestRecorderSubscriber(t *testing.T) {
	rec := journal.NewRecorder(journal.NewMemoryStore(), "s")
	agg := event.NewAggregator()

	assert.True(t, rec.AttachPublisher(agg))
	assert.Equal(t, []observer.Observer{rec}, agg.Observers())
	assert.Equal(t, "s", rec.Stream())

	assert.True(t, rec.DetachPublisher(agg))
	assert.Empty(t, agg.Observers())
	assert.Empty(t, rec.Publishers())
}
