package journal_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/journal"
)

type storeFactory func(t *testing.T) journal.Store

func storeContractTest(t *testing.T, name string, factory storeFactory) {
	t.Run(name+"/Append_and_Load", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		seq, err := store.Append("orders", "e-1", []byte(`{"id":"e-1"}`))
		require.NoError(t, err)
		assert.Equal(t, int64(1), seq)

		entry, err := store.Load("orders", "e-1")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"id":"e-1"}`), entry.Data)
		assert.Equal(t, "orders", entry.Stream)
		assert.Equal(t, "e-1", entry.EventID)
		assert.Equal(t, int64(1), entry.Sequence)
		assert.False(t, entry.Timestamp.IsZero())
	})

	t.Run(name+"/Load_NotFound", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, err := store.Load("orders", "missing")
		assert.ErrorIs(t, err, journal.ErrNotFound)
	})

	t.Run(name+"/Append_Duplicate", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, err := store.Append("orders", "e-1", []byte("a"))
		require.NoError(t, err)
		_, err = store.Append("orders", "e-1", []byte("b"))
		assert.ErrorIs(t, err, journal.ErrDuplicate)

		_, err = store.Append("invoices", "e-1", []byte("c"))
		assert.NoError(t, err, "identifiers are unique per stream")
	})

	t.Run(name+"/Sequences_per_stream", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		for _, id := range []string{"a", "b", "c"} {
			_, err := store.Append("s1", id, []byte(id))
			require.NoError(t, err)
		}
		seq, err := store.Append("s2", "x", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), seq)

		infos, err := store.List("s1")
		require.NoError(t, err)
		require.Len(t, infos, 3)
		for i, info := range infos {
			assert.Equal(t, int64(i+1), info.Sequence)
			assert.Equal(t, int64(1), info.Size)
		}
	})

	t.Run(name+"/Read_after", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		for _, id := range []string{"a", "b", "c"} {
			_, err := store.Append("s", id, []byte(id))
			require.NoError(t, err)
		}

		entries, err := store.Read("s", 1)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "b", entries[0].EventID)
		assert.Equal(t, []byte("c"), entries[1].Data)

		entries, err = store.Read("unknown", 0)
		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)

		entries, err = store.Read("s", 3)
		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})

	t.Run(name+"/Streams_and_Delete", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, _ = store.Append("b", "1", []byte("x"))
		_, _ = store.Append("a", "1", []byte("x"))

		names, err := store.Streams()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, names)

		require.NoError(t, store.DeleteStream("a"))
		require.NoError(t, store.DeleteStream("never-existed"))
		names, err = store.Streams()
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, names)
	})

	t.Run(name+"/Closed", func(t *testing.T) {
		store := factory(t)
		require.NoError(t, store.Close())

		_, err := store.Append("s", "e", nil)
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
		_, err = store.Load("s", "e")
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
		_, err = store.Read("s", 0)
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
		_, err = store.List("s")
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
		_, err = store.Streams()
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
		assert.ErrorIs(t, store.DeleteStream("s"), journal.ErrStoreClosed)
	})

	t.Run(name+"/Concurrent_appends", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		const workers, perWorker = 8, 10
		var wg sync.WaitGroup
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func(w int) {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					id := string(rune('a'+w)) + "-" + string(rune('0'+i))
					_, _ = store.Append("busy", id, []byte(id))
				}
			}(w)
		}
		wg.Wait()

		infos, err := store.List("busy")
		require.NoError(t, err)
		assert.Len(t, infos, workers*perWorker)
		for i, info := range infos {
			assert.Equal(t, int64(i+1), info.Sequence, "sequences have no gaps")
		}
	})
}

func TestMemoryStore(t *testing.T) {
	storeContractTest(t, "Memory", func(t *testing.T) journal.Store {
		return journal.NewMemoryStore()
	})

	t.Run("Len", func(t *testing.T) {
		store := journal.NewMemoryStore()
		_, _ = store.Append("a", "1", nil)
		_, _ = store.Append("b", "1", nil)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("stored data is copied", func(t *testing.T) {
		store := journal.NewMemoryStore()
		data := []byte("abc")
		_, _ = store.Append("s", "1", data)
		data[0] = 'X'
		entry, err := store.Load("s", "1")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), entry.Data)
	})
}

func TestSQLiteStore(t *testing.T) {
	storeContractTest(t, "SQLite", func(t *testing.T) journal.Store {
		store, err := journal.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
		require.NoError(t, err)
		return store
	})
}

func TestSQLiteStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	store1, err := journal.NewSQLiteStore(path)
	require.NoError(t, err)
	_, err = store1.Append("orders", "e-1", []byte("persistent"))
	require.NoError(t, err)
	require.NoError(t, store1.Close())

	store2, err := journal.NewSQLiteStore(path)
	require.NoError(t, err)
	defer store2.Close()

	entry, err := store2.Load("orders", "e-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("persistent"), entry.Data)

	seq, err := store2.Append("orders", "e-2", []byte("next"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := journal.NewSQLiteStore("/nonexistent/path/journal.db")
	assert.Error(t, err)
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store, err := journal.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
