package localstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a backup, snapshot or archived media row
// does not exist.
var ErrNotFound = errors.New("localstore: not found")

// Store is the on-device durable store: keyed single-slot backups, named
// snapshots and the media archive. It works with or without network and
// is never the source of truth at runtime; the in-memory document is.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path. ":memory:" gives an
// ephemeral store for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	// A single writer keeps "database is locked" errors out of the
	// debounced save path.
	db.SetMaxOpenConns(1)
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// createSchema creates all tables needed by the store.
// Safe to call multiple times - uses IF NOT EXISTS.
func createSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create local schema: %w", err)
	}
	return nil
}

const schema = `
-- Single-slot "current" backup per key, overwritten wholesale
CREATE TABLE IF NOT EXISTS backup (
    key TEXT PRIMARY KEY,
    data BLOB NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

-- Named, timestamped, user-creatable snapshots for manual rollback
CREATE TABLE IF NOT EXISTS snapshot (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    data BLOB NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshot_created_at ON snapshot(created_at);

-- Large media payloads, kept out of the sync document
CREATE TABLE IF NOT EXISTS media_archive (
    media_id TEXT PRIMARY KEY,
    blob BLOB NOT NULL,
    mime_type TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`

// SaveBackup overwrites the single backup slot for key.
func (s *Store) SaveBackup(key string, data []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO backup (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, key, data, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save backup %q: %w", key, err)
	}
	return nil
}

// LoadBackup returns the backup slot for key, or ErrNotFound.
func (s *Store) LoadBackup(key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM backup WHERE key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load backup %q: %w", key, err)
	}
	return data, nil
}

// DeleteBackup removes the backup slot for key. Deleting a missing key is
// not an error.
func (s *Store) DeleteBackup(key string) error {
	_, err := s.db.Exec(`DELETE FROM backup WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete backup %q: %w", key, err)
	}
	return nil
}

// ScanAndRepair walks every backup row and deletes those whose payload is
// no longer valid JSON. Losing one corrupted key is acceptable; crashing
// on it is not. It returns the keys that were repaired (deleted).
func (s *Store) ScanAndRepair() ([]string, error) {
	rows, err := s.db.Query(`SELECT key, data FROM backup`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan backups: %w", err)
	}
	defer rows.Close()

	var corrupt []string
	for rows.Next() {
		var key string
		var data []byte
		if err := rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("failed to scan backup row: %w", err)
		}
		if !json.Valid(data) {
			corrupt = append(corrupt, key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan backups: %w", err)
	}

	for _, key := range corrupt {
		if err := s.DeleteBackup(key); err != nil {
			return corrupt, err
		}
	}
	return corrupt, nil
}
