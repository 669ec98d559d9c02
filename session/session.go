package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pizzanight/server/cloudmirror"
	"github.com/pizzanight/server/localstore"
	"github.com/pizzanight/server/models"
	"github.com/pizzanight/server/p2p"
	"github.com/pizzanight/server/reducer"
	"github.com/pizzanight/server/sanitize"
)

var (
	// ErrNoVotes is returned when a user tries to confirm without both an
	// appearance and a taste score on record for at least one category.
	ErrNoVotes = errors.New("session: cannot confirm without votes on record")

	// ErrUnknownUser is returned when a nickname has no account in the
	// registry.
	ErrUnknownUser = errors.New("session: unknown user")
)

// Config configures a session. Store, Room and PeerID are required; the
// mirror is optional and its absence just means no cloud seeding or
// replication.
type Config struct {
	Room   p2p.Room
	Store  *localstore.Store
	Mirror *cloudmirror.Mirror

	PeerID   string
	Nickname string
	Logger   *slog.Logger

	// BackupKey names the local backup slot. Defaults to "primary".
	BackupKey string

	// PersistDelay is the debounce quiescence before a flush. Defaults
	// to 2s.
	PersistDelay time.Duration

	// Engine timing overrides, zero means the engine defaults.
	HeartbeatInterval time.Duration
	SyncWindow        time.Duration
	SyncReplyJitter   time.Duration
	PeerPollInterval  time.Duration
}

func (c *Config) validate() error {
	if c.Store == nil {
		return errors.New("store is required")
	}
	if c.Room == nil {
		return errors.New("room is required")
	}
	if c.PeerID == "" {
		return errors.New("peer ID is required")
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.BackupKey == "" {
		c.BackupKey = "primary"
	}
	if c.PersistDelay <= 0 {
		c.PersistDelay = 2 * time.Second
	}
	return nil
}

// Session owns one peer's copy of the shared document. Every mutation,
// local or remote, funnels through the reducers under one mutex, and
// every local mutation is applied first, then broadcast: the collaborator
// never waits on the network.
type Session struct {
	cfg    Config
	log    *slog.Logger
	store  *localstore.Store
	mirror *cloudmirror.Mirror
	engine *p2p.Engine

	mu     sync.RWMutex
	doc    models.Document
	online bool

	persistMu    sync.Mutex
	persistTimer *time.Timer
	closed       bool
}

// New hydrates a session from the local backup (seeding from the cloud
// mirror when the backup is empty) and prepares the sync engine. Nothing
// touches the room until Run.
func New(ctx context.Context, cfg Config) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s := &Session{
		cfg:    cfg,
		log:    cfg.Logger,
		store:  cfg.Store,
		mirror: cfg.Mirror,
		online: true,
	}
	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}

	eng, err := p2p.New(p2p.Config{
		Room:              cfg.Room,
		PeerID:            cfg.PeerID,
		Nickname:          cfg.Nickname,
		Logger:            cfg.Logger,
		Callbacks:         s.callbacks(),
		HeartbeatInterval: cfg.HeartbeatInterval,
		SyncWindow:        cfg.SyncWindow,
		SyncReplyJitter:   cfg.SyncReplyJitter,
		PeerPollInterval:  cfg.PeerPollInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("build sync engine: %w", err)
	}
	s.engine = eng
	return s, nil
}

// Run joins the room and serves until ctx is canceled, then flushes.
func (s *Session) Run(ctx context.Context) error {
	err := s.engine.Run(ctx)
	if ferr := s.Close(); err == nil {
		err = ferr
	}
	return err
}

// Close stops the persistence timer and performs a final flush. It does
// not tear down the room; that belongs to Run's context.
func (s *Session) Close() error {
	s.persistMu.Lock()
	if s.closed {
		s.persistMu.Unlock()
		return nil
	}
	s.closed = true
	if s.persistTimer != nil {
		s.persistTimer.Stop()
	}
	s.persistMu.Unlock()
	return s.Flush(context.Background())
}

// Document returns a deep copy of the current document.
func (s *Session) Document() models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Syncing reports whether the engine's post-request window is open.
func (s *Session) Syncing() bool { return s.engine.Syncing() }

// PeerCount returns the last observed live peer count.
func (s *Session) PeerCount() int { return s.engine.PeerCount() }

// Online reports the user-facing connectivity toggle.
func (s *Session) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

// MirrorStatus reports the cloud circuit-breaker flags. ok is false when
// no mirror is configured.
func (s *Session) MirrorStatus() (cloudmirror.Status, bool) {
	if s.mirror == nil {
		return cloudmirror.Status{}, false
	}
	return s.mirror.Status(), true
}

// SetOnline flips the connectivity toggle. Going offline only suppresses
// outbound broadcasts; local edits keep applying. Coming back online
// requests a resync and offers the locally accumulated state to the room;
// receivers merge, so offering a stale document is harmless.
func (s *Session) SetOnline(ctx context.Context, online bool) {
	s.mu.Lock()
	was := s.online
	s.online = online
	doc := s.doc.Clone()
	s.mu.Unlock()

	if online && !was {
		s.engine.ForceManualSync(ctx)
		if !doc.IsEmpty() {
			if err := s.engine.BroadcastFullSync(ctx, models.FullSync{Document: doc}); err != nil {
				s.log.Warn("reconnect full-sync failed", "error", err)
			}
		}
	}
}

// ForceManualSync re-issues a sync-request on demand.
func (s *Session) ForceManualSync(ctx context.Context) {
	s.engine.ForceManualSync(ctx)
}

// applyLocal runs one delta through the reducer and schedules a flush.
func (s *Session) applyLocal(d models.Delta) {
	s.mu.Lock()
	s.doc = reducer.Apply(s.doc, d)
	s.mu.Unlock()
	s.schedulePersist()
}

// broadcast sends one delta unless the session is offline. Transport
// failures degrade to local-only operation, never to a user-facing error.
func (s *Session) broadcast(ctx context.Context, send func(context.Context) error, kind models.Kind) {
	if !s.Online() {
		return
	}
	if err := send(ctx); err != nil {
		s.log.Warn("broadcast failed, continuing local-only", "kind", kind, "error", err)
	}
}

// SetVote records one score slot locally and broadcasts it. The value is
// clamped to [0,10]; the deletion sentinel passes through untouched.
func (s *Session) SetVote(ctx context.Context, v models.VoteSet) {
	v.Value = sanitize.Score(v.Value)
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastVoteSet(ctx, v)
	}, models.KindVoteSet)
}

// ConfirmVote locks in (or releases) a user's votes on an entry.
// Confirming requires both an appearance and a taste score on record in
// at least one category; clearing has no precondition.
func (s *Session) ConfirmVote(ctx context.Context, v models.VoteConfirm) error {
	if v.Confirmed {
		s.mu.RLock()
		e := s.doc.EntryByID(v.EntryID)
		ok := e != nil && (e.HasVotes(v.UserID, models.CategorySavory) ||
			e.HasVotes(v.UserID, models.CategorySweet))
		s.mu.RUnlock()
		if !ok {
			return ErrNoVotes
		}
	}
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastVoteConfirm(ctx, v)
	}, models.KindVoteConfirm)
	return nil
}

func (s *Session) SetGlobalNote(ctx context.Context, v models.GlobalNoteSet) {
	v.Notes = sanitize.StripMarkup(v.Notes)
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastGlobalNoteSet(ctx, v)
	}, models.KindGlobalNoteSet)
}

func (s *Session) AddEntry(ctx context.Context, v models.AddEntry) error {
	if v.Entry.ID == "" {
		return errors.New("session: entry ID is required")
	}
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastAddEntry(ctx, v)
	}, models.KindAddEntry)
	return nil
}

func (s *Session) DeleteEntry(ctx context.Context, v models.DeleteEntry) {
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastDeleteEntry(ctx, v)
	}, models.KindDeleteEntry)
}

func (s *Session) SetDate(ctx context.Context, v models.DateSet) {
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastDateSet(ctx, v)
	}, models.KindDateSet)
}

func (s *Session) AddMedia(ctx context.Context, v models.MediaAdd) error {
	if v.Item.ID == "" {
		return errors.New("session: media ID is required")
	}
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastMediaAdd(ctx, v)
	}, models.KindMediaAdd)
	return nil
}

func (s *Session) UpdateMedia(ctx context.Context, v models.MediaUpdate) {
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastMediaUpdate(ctx, v)
	}, models.KindMediaUpdate)
}

func (s *Session) DeleteMedia(ctx context.Context, v models.MediaDelete) {
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastMediaDelete(ctx, v)
	}, models.KindMediaDelete)
	if err := s.store.DeleteMedia(v.MediaID); err != nil && !errors.Is(err, localstore.ErrNotFound) {
		s.log.Warn("media archive delete failed", "mediaId", v.MediaID, "error", err)
	}
}

func (s *Session) AddComment(ctx context.Context, v models.CommentAdd) {
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastCommentAdd(ctx, v)
	}, models.KindCommentAdd)
}

func (s *Session) EditComment(ctx context.Context, v models.CommentEdit) {
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastCommentEdit(ctx, v)
	}, models.KindCommentEdit)
}

func (s *Session) DeleteComment(ctx context.Context, v models.CommentDelete) {
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastCommentDelete(ctx, v)
	}, models.KindCommentDelete)
}

func (s *Session) SetReaction(ctx context.Context, v models.ReactionSet) {
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastReactionSet(ctx, v)
	}, models.KindReactionSet)
}

func (s *Session) SetCommentReaction(ctx context.Context, v models.CommentReactionSet) {
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastCommentReactionSet(ctx, v)
	}, models.KindCommentReactionSet)
}

func (s *Session) AddReply(ctx context.Context, v models.ReplyAdd) {
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastReplyAdd(ctx, v)
	}, models.KindReplyAdd)
}

func (s *Session) EditReply(ctx context.Context, v models.ReplyEdit) {
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastReplyEdit(ctx, v)
	}, models.KindReplyEdit)
}

func (s *Session) DeleteReply(ctx context.Context, v models.ReplyDelete) {
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastReplyDelete(ctx, v)
	}, models.KindReplyDelete)
}

func (s *Session) SetReplyReaction(ctx context.Context, v models.ReplyReactionSet) {
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastReplyReactionSet(ctx, v)
	}, models.KindReplyReactionSet)
}

func (s *Session) SetPollVote(ctx context.Context, v models.PollVoteSet) {
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastPollVoteSet(ctx, v)
	}, models.KindPollVoteSet)
}

func (s *Session) UpdateUser(ctx context.Context, v models.UserUpdate) {
	s.applyLocal(v)
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastUserUpdate(ctx, v)
	}, models.KindUserUpdate)
}

// Notify broadcasts a transient message to the room. It has no document
// effect and is never persisted.
func (s *Session) Notify(ctx context.Context, v models.AppNotification) {
	if v.Date.IsZero() {
		v.Date = time.Now()
	}
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastAppNotification(ctx, v)
	}, models.KindAppNotification)
}

// ReleaseVoting opens voting room-wide. The flag travels inside the
// full-sync payload; there is no narrower delta for it.
func (s *Session) ReleaseVoting(ctx context.Context) {
	s.mu.Lock()
	s.doc.VotingReleased = true
	doc := s.doc.Clone()
	s.mu.Unlock()
	s.schedulePersist()
	s.broadcast(ctx, func(ctx context.Context) error {
		return s.engine.BroadcastFullSync(ctx, models.FullSync{Document: doc})
	}, models.KindFullSync)
}

// callbacks wires remote deltas into the local reducers. Payloads arrive
// already sanitized by the engine.
func (s *Session) callbacks() p2p.Callbacks {
	return p2p.Callbacks{
		CurrentState: s.Document,
		OnPeerCountChange: func(n int) {
			s.log.Info("peer count changed", "peers", n)
		},
		OnFullSync: s.handleFullSync,
		OnPresence: func(p models.Presence) {
			s.log.Info("peer joined", "peerId", p.PeerID, "nickname", p.Nickname)
		},
		OnResetUserXP: func(v models.ResetUserXP) { s.applyXPReset(v.Target) },

		OnVoteSet:            func(v models.VoteSet) { s.applyLocal(v) },
		OnVoteConfirm:        func(v models.VoteConfirm) { s.applyLocal(v) },
		OnGlobalNoteSet:      func(v models.GlobalNoteSet) { s.applyLocal(v) },
		OnReset:              func(v models.Reset) { s.applyReset() },
		OnDeleteEntry:        func(v models.DeleteEntry) { s.applyLocal(v) },
		OnAddEntry:           func(v models.AddEntry) { s.applyLocal(v) },
		OnMediaAdd:           func(v models.MediaAdd) { s.applyLocal(v) },
		OnMediaUpdate:        func(v models.MediaUpdate) { s.applyLocal(v) },
		OnMediaDelete:        func(v models.MediaDelete) { s.applyLocal(v) },
		OnDateSet:            func(v models.DateSet) { s.applyLocal(v) },
		OnCommentAdd:         func(v models.CommentAdd) { s.applyLocal(v) },
		OnCommentEdit:        func(v models.CommentEdit) { s.applyLocal(v) },
		OnCommentDelete:      func(v models.CommentDelete) { s.applyLocal(v) },
		OnReactionSet:        func(v models.ReactionSet) { s.applyLocal(v) },
		OnCommentReactionSet: func(v models.CommentReactionSet) { s.applyLocal(v) },
		OnReplyAdd:           func(v models.ReplyAdd) { s.applyLocal(v) },
		OnReplyEdit:          func(v models.ReplyEdit) { s.applyLocal(v) },
		OnReplyDelete:        func(v models.ReplyDelete) { s.applyLocal(v) },
		OnReplyReactionSet:   func(v models.ReplyReactionSet) { s.applyLocal(v) },
		OnPollVoteSet:        func(v models.PollVoteSet) { s.applyLocal(v) },
		OnUserUpdate:         func(v models.UserUpdate) { s.applyLocal(v) },
		OnAppNotification: func(v models.AppNotification) {
			s.log.Info("notification", "from", v.From, "message", v.Message)
		},
	}
}

// handleFullSync merges a remote document into the local one. Merging
// rather than overwriting is what lets two peers that edited while
// partitioned each keep the other's additions.
func (s *Session) handleFullSync(v models.FullSync) {
	s.mu.Lock()
	s.doc = reducer.MergeFullSync(s.doc, sanitize.Document(v.Document))
	s.mu.Unlock()
	s.schedulePersist()
}

func (s *Session) applyReset() {
	s.mu.Lock()
	s.doc = reducer.ResetVotes(s.doc)
	s.mu.Unlock()
	s.schedulePersist()
}

// schedulePersist arms (or re-arms) the debounce timer. Bursts of deltas
// coalesce into one flush after quiescence.
func (s *Session) schedulePersist() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if s.closed {
		return
	}
	if s.persistTimer == nil {
		s.persistTimer = time.AfterFunc(s.cfg.PersistDelay, s.persistNow)
		return
	}
	s.persistTimer.Reset(s.cfg.PersistDelay)
}

func (s *Session) persistNow() {
	if s.engine != nil && s.engine.Syncing() {
		// resync replies still arriving; try again after the window
		s.schedulePersist()
		return
	}
	if err := s.Flush(context.Background()); err != nil {
		s.log.Error("persistence flush failed", "error", err)
	}
}

// Flush writes the document to the local backup and, when configured, the
// cloud mirror. The local write is authoritative and its failure is the
// only error; mirror failures degrade to warnings.
func (s *Session) Flush(ctx context.Context) error {
	doc := s.Document()

	backup, err := json.Marshal(s.archiveLargeMedia(doc))
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	if err := s.store.SaveBackup(s.cfg.BackupKey, backup); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}

	if s.mirror != nil {
		s.mirrorDocument(ctx, doc)
	}
	return nil
}

func (s *Session) mirrorDocument(ctx context.Context, doc models.Document) {
	entries, err := json.Marshal(doc.Entries)
	if err == nil {
		err = s.mirror.SaveState(ctx, cloudmirror.KeyPizzas, entries)
	}
	if err != nil && !errors.Is(err, cloudmirror.ErrTableMissing) {
		s.log.Warn("mirror state write failed", "key", cloudmirror.KeyPizzas, "error", err)
	}

	social, err := json.Marshal(doc.Social)
	if err == nil {
		err = s.mirror.SaveState(ctx, cloudmirror.KeySocial, social)
	}
	if err != nil && !errors.Is(err, cloudmirror.ErrTableMissing) {
		s.log.Warn("mirror state write failed", "key", cloudmirror.KeySocial, "error", err)
	}

	for _, u := range doc.Users {
		if err := s.mirror.SaveUser(ctx, u); err != nil {
			if errors.Is(err, cloudmirror.ErrTableMissing) {
				break
			}
			s.log.Warn("mirror user write failed", "nickname", u.Nickname, "error", err)
		}
	}
}
