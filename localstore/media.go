package localstore

import (
	"database/sql"
	"fmt"
	"time"
)

// ArchivedMedia is one large binary payload held outside the sync
// document. The document's media items reference it by id; the bytes are
// re-hydrated into the item's URL field on load.
type ArchivedMedia struct {
	MediaID   string
	Blob      []byte
	MimeType  string
	CreatedAt time.Time
}

// ArchiveMedia stores (or overwrites) the payload for a media id.
func (s *Store) ArchiveMedia(mediaID string, blob []byte, mimeType string) error {
	_, err := s.db.Exec(`
		INSERT INTO media_archive (media_id, blob, mime_type, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (media_id) DO UPDATE SET blob = excluded.blob, mime_type = excluded.mime_type
	`, mediaID, blob, mimeType, time.Now())
	if err != nil {
		return fmt.Errorf("failed to archive media %q: %w", mediaID, err)
	}
	return nil
}

// LoadMedia returns the archived payload for a media id, or ErrNotFound.
func (s *Store) LoadMedia(mediaID string) (ArchivedMedia, error) {
	var m ArchivedMedia
	err := s.db.QueryRow(`
		SELECT media_id, blob, mime_type, created_at FROM media_archive WHERE media_id = ?
	`, mediaID).Scan(&m.MediaID, &m.Blob, &m.MimeType, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return ArchivedMedia{}, ErrNotFound
	}
	if err != nil {
		return ArchivedMedia{}, fmt.Errorf("failed to load media %q: %w", mediaID, err)
	}
	return m, nil
}

// DeleteMedia removes an archived payload. Missing ids are not an error.
func (s *Store) DeleteMedia(mediaID string) error {
	_, err := s.db.Exec(`DELETE FROM media_archive WHERE media_id = ?`, mediaID)
	if err != nil {
		return fmt.Errorf("failed to delete media %q: %w", mediaID, err)
	}
	return nil
}

// PruneMediaOlderThan deletes archived payloads older than the given age
// and returns how many were removed.
func (s *Store) PruneMediaOlderThan(age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	res, err := s.db.Exec(`DELETE FROM media_archive WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune media archive: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
