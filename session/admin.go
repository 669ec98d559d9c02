package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pizzanight/server/auth"
	"github.com/pizzanight/server/localstore"
	"github.com/pizzanight/server/models"
	"github.com/pizzanight/server/xp"
)

// ResetAllVotes clears every score, bonus and confirmation room-wide and
// closes voting. Entries, media, social data and accounts survive.
func (s *Session) ResetAllVotes(ctx context.Context) {
	s.applyReset()
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastReset(ctx)
	}, models.KindReset)
}

// CreateSnapshot freezes the current document under a name.
func (s *Session) CreateSnapshot(name string) (localstore.Snapshot, error) {
	data, err := json.Marshal(s.Document())
	if err != nil {
		return localstore.Snapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}
	return s.store.CreateSnapshot(name, data)
}

// ListSnapshots returns saved snapshots, newest first.
func (s *Session) ListSnapshots() ([]localstore.Snapshot, error) {
	return s.store.ListSnapshots()
}

// DeleteSnapshot removes one snapshot by id.
func (s *Session) DeleteSnapshot(id string) error {
	return s.store.DeleteSnapshot(id)
}

// RestoreSnapshot replaces the document wholesale with a saved snapshot
// and pushes the restored state to the room. Restore is the one
// deliberate non-merge overwrite in the system.
func (s *Session) RestoreSnapshot(ctx context.Context, id string) error {
	data, err := s.store.LoadSnapshot(id)
	if err != nil {
		return err
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode snapshot %q: %w", id, err)
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	s.schedulePersist()

	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastFullSync(ctx, models.FullSync{Document: doc})
	}, models.KindFullSync)
	return nil
}

// Stats derives the gamification state for one user. The derivation may
// raise the persisted high-water marks, so a changed account schedules a
// flush. Entry ownership comes from the caller-supplied ownerMap.
func (s *Session) Stats(nickname string, ownerMap map[string]string) (xp.Stats, error) {
	s.mu.Lock()
	u := s.doc.UserByNickname(nickname)
	if u == nil {
		s.mu.Unlock()
		return xp.Stats{}, ErrUnknownUser
	}
	before := *u
	stats := xp.Derive(u, s.doc.Entries, s.doc.Social, ownerMap)
	changed := *u != before
	s.mu.Unlock()

	if changed {
		s.schedulePersist()
	}
	return stats, nil
}

// ResetUserXP rebases one user's (or everyone's, with ResetAllUsers)
// derivation to zero by bumping offsets. History and high-water marks are
// never deleted; peers receiving the signal rebase with their own copy of
// the marks.
func (s *Session) ResetUserXP(ctx context.Context, target string) {
	s.applyXPReset(target)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastResetUserXP(ctx, models.ResetUserXP{Target: target})
	}, models.KindResetUserXP)
}

func (s *Session) applyXPReset(target string) {
	s.mu.Lock()
	for i := range s.doc.Users {
		u := &s.doc.Users[i]
		if target != models.ResetAllUsers && !auth.SameNickname(u.Nickname, target) {
			continue
		}
		u.XPOffset, u.PointsOffset = xp.ZeroingOffsets(*u, s.doc.Social)
	}
	s.mu.Unlock()
	s.schedulePersist()
}
