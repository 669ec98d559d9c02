package localstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Snapshot describes one named rollback point. Data is loaded separately.
type Snapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateSnapshot stores a named rollback point and returns its metadata.
func (s *Store) CreateSnapshot(name string, data []byte) (Snapshot, error) {
	snap := Snapshot{
		ID:        uuid.NewString(),
		Name:      name,
		Size:      len(data),
		CreatedAt: time.Now(),
	}
	_, err := s.db.Exec(`
		INSERT INTO snapshot (id, name, data, created_at) VALUES (?, ?, ?, ?)
	`, snap.ID, snap.Name, data, snap.CreatedAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to create snapshot %q: %w", name, err)
	}
	return snap, nil
}

// ListSnapshots returns snapshot metadata, newest first.
func (s *Store) ListSnapshots() ([]Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT id, name, length(data), created_at FROM snapshot ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Name, &snap.Size, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// LoadSnapshot returns a snapshot's payload by id, or ErrNotFound.
func (s *Store) LoadSnapshot(id string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM snapshot WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %q: %w", id, err)
	}
	return data, nil
}

// DeleteSnapshot removes a snapshot by id, or returns ErrNotFound.
func (s *Store) DeleteSnapshot(id string) error {
	res, err := s.db.Exec(`DELETE FROM snapshot WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
