package journal

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps streams in memory. Data is lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]Entry
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{streams: make(map[string][]Entry)}
}

// Append implements Store.
func (m *MemoryStore) Append(stream, eventID string, data []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrStoreClosed
	}

	entries := m.streams[stream]
	for _, e := range entries {
		if e.EventID == eventID {
			return 0, fmt.Errorf("%w: %s/%s", ErrDuplicate, stream, eventID)
		}
	}

	seq := int64(len(entries)) + 1
	m.streams[stream] = append(entries, Entry{
		Info: Info{
			Stream:    stream,
			EventID:   eventID,
			Sequence:  seq,
			Timestamp: time.Now().UTC(),
			Size:      int64(len(data)),
		},
		Data: append([]byte(nil), data...),
	})
	return seq, nil
}

// Load implements Store.
func (m *MemoryStore) Load(stream, eventID string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Entry{}, ErrStoreClosed
	}
	for _, e := range m.streams[stream] {
		if e.EventID == eventID {
			return copyEntry(e), nil
		}
	}
	return Entry{}, ErrNotFound
}

// Read implements Store.
func (m *MemoryStore) Read(stream string, after int64) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	out := []Entry{}
	for _, e := range m.streams[stream] {
		if e.Sequence > after {
			out = append(out, copyEntry(e))
		}
	}
	return out, nil
}

// List implements Store.
func (m *MemoryStore) List(stream string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	entries := m.streams[stream]
	infos := make([]Info, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, e.Info)
	}
	return infos, nil
}

// Streams implements Store.
func (m *MemoryStore) Streams() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	names := make([]string, 0, len(m.streams))
	for name, entries := range m.streams {
		if len(entries) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// DeleteStream implements Store.
func (m *MemoryStore) DeleteStream(stream string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	delete(m.streams, stream)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.streams = nil
	return nil
}

// Len returns the total number of entries across all streams.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, entries := range m.streams {
		count += len(entries)
	}
	return count
}

func copyEntry(e Entry) Entry {
	e.Data = append([]byte(nil), e.Data...)
	return e
}

var _ Store = (*MemoryStore)(nil)
