// Package journal records events to durable streams and replays them.
//
// A Recorder is an observer: attach it to any publisher (or queue it in a
// HandlerPriorityQueue) and every event it sees is encoded with a Codec and
// appended to a named stream in a Store. Replay decodes a stream back into
// events with their original identifiers.
package journal

import (
	"errors"
	"time"
)

// Store persists encoded events in append-only streams.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append adds an encoded event to stream and returns its sequence
	// number. Sequences start at 1 per stream. Returns ErrDuplicate if
	// the stream already holds eventID.
	Append(stream, eventID string, data []byte) (int64, error)

	// Load retrieves one entry. Returns ErrNotFound if it doesn't exist.
	Load(stream, eventID string) (Entry, error)

	// Read returns every entry with a sequence greater than after, in
	// sequence order. Returns an empty slice (not error) for an unknown stream.
	Read(stream string, after int64) ([]Entry, error)

	// List returns metadata for every entry in stream, in sequence order.
	List(stream string) ([]Info, error)

	// Streams returns the names of all non-empty streams, sorted.
	Streams() ([]string, error)

	// DeleteStream removes a stream. Returns nil if it doesn't exist.
	DeleteStream(stream string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info describes an entry without its payload.
type Info struct {
	Stream    string
	EventID   string
	Sequence  int64
	Timestamp time.Time
	Size      int64
}

// Entry is a stored event.
type Entry struct {
	Info
	Data []byte
}

// Sentinel errors for journal operations.
var (
	// ErrNotFound indicates an entry doesn't exist.
	ErrNotFound = errors.New("journal entry not found")

	// ErrDuplicate indicates the stream already holds the event.
	ErrDuplicate = errors.New("event already journaled")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("journal store closed")

	// ErrUnknownCodec indicates no codec is registered under a name.
	ErrUnknownCodec = errors.New("unknown codec")
)
