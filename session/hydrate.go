package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pizzanight/server/cloudmirror"
	"github.com/pizzanight/server/localstore"
	"github.com/pizzanight/server/models"
)

// archivedScheme marks a media URL whose payload lives in the local media
// archive instead of inline in the backup row.
const archivedScheme = "archived:"

// archiveThreshold is the inline data-URL size above which the payload is
// moved into the media archive before the backup write.
const archiveThreshold = 4 << 10

// hydrate loads the document from the local backup, falling back to the
// cloud mirror for a fresh start. A corrupt backup is logged and treated
// as empty rather than failing startup.
func (s *Session) hydrate(ctx context.Context) error {
	data, err := s.store.LoadBackup(s.cfg.BackupKey)
	switch {
	case err == nil:
		var doc models.Document
		if uerr := json.Unmarshal(data, &doc); uerr != nil {
			s.log.Warn("backup is corrupt, starting empty", "key", s.cfg.BackupKey, "error", uerr)
			if repaired, rerr := s.store.ScanAndRepair(); rerr == nil && len(repaired) > 0 {
				s.log.Warn("removed corrupt backup rows", "keys", repaired)
			}
		} else {
			s.doc = doc
		}
	case errors.Is(err, localstore.ErrNotFound):
		// fresh start; seed from the mirror when one is configured
		if s.mirror != nil {
			s.seedFromMirror(ctx)
		}
	default:
		return fmt.Errorf("load backup: %w", err)
	}

	s.rehydrateMedia()
	if !s.doc.IsEmpty() {
		s.log.Info("session hydrated",
			"entries", len(s.doc.Entries), "users", len(s.doc.Users))
	}
	return nil
}

// seedFromMirror pulls the last replicated state. Every failure here is
// tolerable: the mirror is a seed, not a requirement.
func (s *Session) seedFromMirror(ctx context.Context) {
	if data, err := s.mirror.LoadState(ctx, cloudmirror.KeyPizzas); err == nil {
		if uerr := json.Unmarshal(data, &s.doc.Entries); uerr != nil {
			s.log.Warn("mirror entries undecodable", "error", uerr)
		}
	} else if !errors.Is(err, cloudmirror.ErrNotFound) && !errors.Is(err, cloudmirror.ErrTableMissing) {
		s.log.Warn("mirror entries unavailable", "error", err)
	}

	if data, err := s.mirror.LoadState(ctx, cloudmirror.KeySocial); err == nil {
		if uerr := json.Unmarshal(data, &s.doc.Social); uerr != nil {
			s.log.Warn("mirror social data undecodable", "error", uerr)
		}
	} else if !errors.Is(err, cloudmirror.ErrNotFound) && !errors.Is(err, cloudmirror.ErrTableMissing) {
		s.log.Warn("mirror social data unavailable", "error", err)
	}

	users, err := s.mirror.LoadUsers(ctx)
	if err == nil {
		s.doc.Users = users
	} else if !errors.Is(err, cloudmirror.ErrTableMissing) {
		s.log.Warn("mirror users unavailable", "error", err)
	}

	if !s.doc.IsEmpty() {
		s.log.Info("seeded from cloud mirror",
			"entries", len(s.doc.Entries), "users", len(s.doc.Users))
	}
}

// archiveLargeMedia moves oversized inline data-URLs into the media
// archive and replaces them with archived: references in the returned
// document. The live document keeps its inline payloads; only the
// backup row slims down.
func (s *Session) archiveLargeMedia(doc models.Document) models.Document {
	for i := range doc.Entries {
		media := doc.Entries[i].Media
		for j := range media {
			m := &media[j]
			if !strings.HasPrefix(m.URL, "data:") || len(m.URL) < archiveThreshold {
				continue
			}
			mime, blob, err := decodeDataURL(m.URL)
			if err != nil {
				s.log.Warn("media payload undecodable, keeping inline", "mediaId", m.ID, "error", err)
				continue
			}
			if err := s.store.ArchiveMedia(m.ID, blob, mime); err != nil {
				s.log.Warn("media archive write failed, keeping inline", "mediaId", m.ID, "error", err)
				continue
			}
			m.URL = archivedScheme + m.ID
		}
	}
	return doc
}

// rehydrateMedia resolves archived: references back into inline data-URLs
// after a backup load. A missing blob leaves the reference in place; the
// next full-sync can restore the payload from another peer.
func (s *Session) rehydrateMedia() {
	for i := range s.doc.Entries {
		media := s.doc.Entries[i].Media
		for j := range media {
			m := &media[j]
			id, ok := strings.CutPrefix(m.URL, archivedScheme)
			if !ok {
				continue
			}
			arch, err := s.store.LoadMedia(id)
			if err != nil {
				if !errors.Is(err, localstore.ErrNotFound) {
					s.log.Warn("media archive read failed", "mediaId", id, "error", err)
				}
				continue
			}
			m.URL = encodeDataURL(arch.MimeType, arch.Blob)
		}
	}
}

func decodeDataURL(url string) (mime string, blob []byte, err error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", nil, errors.New("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("malformed data URL")
	}
	mime, b64 := meta, false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		mime, b64 = m, true
	}
	if !b64 {
		return mime, []byte(payload), nil
	}
	blob, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode media payload: %w", err)
	}
	return mime, blob, nil
}

func encodeDataURL(mime string, blob []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(blob)
}
