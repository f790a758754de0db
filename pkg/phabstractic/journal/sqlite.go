package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists streams to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens or creates a journal database.
// The path should be a file path (e.g., "./journal.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS journal (
			stream TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			event_id TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			data BLOB NOT NULL,
			PRIMARY KEY (stream, sequence),
			UNIQUE (stream, event_id)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(stream, eventID string, data []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var exists int
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM journal WHERE stream = ? AND event_id = ?
	`, stream, eventID).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check duplicate: %w", err)
	}
	if exists > 0 {
		return 0, fmt.Errorf("%w: %s/%s", ErrDuplicate, stream, eventID)
	}

	var seq int64
	err = tx.QueryRow(`
		SELECT COALESCE(MAX(sequence), 0) + 1 FROM journal WHERE stream = ?
	`, stream).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}

	if data == nil {
		data = []byte{}
	}
	_, err = tx.Exec(`
		INSERT INTO journal (stream, sequence, event_id, timestamp, data)
		VALUES (?, ?, ?, ?, ?)
	`, stream, seq, eventID, time.Now().UTC().Format(time.RFC3339Nano), data)
	if err != nil {
		return 0, fmt.Errorf("append entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit append: %w", err)
	}
	return seq, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(stream, eventID string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Entry{}, ErrStoreClosed
	}

	var (
		e         Entry
		timestamp string
	)
	err := s.db.QueryRow(`
		SELECT sequence, timestamp, data FROM journal
		WHERE stream = ? AND event_id = ?
	`, stream, eventID).Scan(&e.Sequence, &timestamp, &e.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("load entry: %w", err)
	}

	e.Stream = stream
	e.EventID = eventID
	e.Size = int64(len(e.Data))
	e.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
	return e, nil
}

// Read implements Store.
func (s *SQLiteStore) Read(stream string, after int64) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT event_id, sequence, timestamp, data
		FROM journal
		WHERE stream = ? AND sequence > ?
		ORDER BY sequence
	`, stream, after)
	if err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e         Entry
			timestamp string
		)
		if err := rows.Scan(&e.EventID, &e.Sequence, &timestamp, &e.Data); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Stream = stream
		e.Size = int64(len(e.Data))
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// List implements Store.
func (s *SQLiteStore) List(stream string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT event_id, sequence, timestamp, LENGTH(data)
		FROM journal
		WHERE stream = ?
		ORDER BY sequence
	`, stream)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var (
			info      Info
			timestamp string
		)
		if err := rows.Scan(&info.EventID, &info.Sequence, &timestamp, &info.Size); err != nil {
			return nil, fmt.Errorf("scan entry info: %w", err)
		}
		info.Stream = stream
		info.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entry info: %w", err)
	}
	return infos, nil
}

// Streams implements Store.
func (s *SQLiteStore) Streams() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`SELECT DISTINCT stream FROM journal ORDER BY stream`)
	if err != nil {
		return nil, fmt.Errorf("list streams: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan stream: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate streams: %w", err)
	}
	return names, nil
}

// DeleteStream implements Store.
func (s *SQLiteStore) DeleteStream(stream string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM journal WHERE stream = ?`, stream); err != nil {
		return fmt.Errorf("delete stream: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
