package p2p

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/pizzanight/server/models"
	"github.com/pizzanight/server/sanitize"
)

// envelope wraps every broadcast payload with the sender's peer id so
// receivers can discard their own echo (pub/sub delivers to the publisher
// too).
type envelope struct {
	Sender  string          `json:"sender"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Callbacks wires the engine to its collaborator, one callback per
// message type. Nil callbacks are skipped. CurrentState is the pull-based
// accessor the engine reads when answering a sync-request; it must be
// safe to call from the engine goroutine.
type Callbacks struct {
	CurrentState      func() models.Document
	OnPeerCountChange func(int)

	OnFullSync           func(models.FullSync)
	OnVoteSet            func(models.VoteSet)
	OnVoteConfirm        func(models.VoteConfirm)
	OnGlobalNoteSet      func(models.GlobalNoteSet)
	OnReset              func(models.Reset)
	OnDeleteEntry        func(models.DeleteEntry)
	OnAddEntry           func(models.AddEntry)
	OnMediaAdd           func(models.MediaAdd)
	OnMediaUpdate        func(models.MediaUpdate)
	OnMediaDelete        func(models.MediaDelete)
	OnDateSet            func(models.DateSet)
	OnCommentAdd         func(models.CommentAdd)
	OnCommentEdit        func(models.CommentEdit)
	OnCommentDelete      func(models.CommentDelete)
	OnReactionSet        func(models.ReactionSet)
	OnCommentReactionSet func(models.CommentReactionSet)
	OnReplyAdd           func(models.ReplyAdd)
	OnReplyEdit          func(models.ReplyEdit)
	OnReplyDelete        func(models.ReplyDelete)
	OnReplyReactionSet   func(models.ReplyReactionSet)
	OnPollVoteSet        func(models.PollVoteSet)
	OnAppNotification    func(models.AppNotification)
	OnResetUserXP        func(models.ResetUserXP)
	OnUserUpdate         func(models.UserUpdate)
	OnPresence           func(models.Presence)
}

// Config holds engine configuration. Zero durations get defaults.
type Config struct {
	Room     Room
	PeerID   string
	Nickname string
	Logger   *slog.Logger

	Callbacks Callbacks

	// HeartbeatInterval paces the keep-alive broadcast.
	HeartbeatInterval time.Duration

	// SyncWindow bounds the "syncing" state after a sync-request: the
	// first full-sync inside it is authoritative, late ones still apply,
	// and the session suppresses persistence until it closes.
	SyncWindow time.Duration

	// SyncReplyJitter is the maximum randomized delay before answering a
	// sync-request. The jitter is backpressure against a broadcast storm
	// of simultaneous responders, not an optimization.
	SyncReplyJitter time.Duration

	// PeerPollInterval paces transport peer-registry polling.
	PeerPollInterval time.Duration
}

func (c *Config) validate() error {
	if c.Room == nil {
		return errors.New("room is required")
	}
	if c.PeerID == "" {
		return errors.New("peer ID is required")
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.SyncWindow <= 0 {
		c.SyncWindow = 3 * time.Second
	}
	if c.SyncReplyJitter <= 0 {
		c.SyncReplyJitter = time.Second
	}
	if c.PeerPollInterval <= 0 {
		c.PeerPollInterval = 5 * time.Second
	}
	return nil
}

// Engine maintains one peer's membership in the logical broadcast room:
// it delivers typed deltas both ways, answers join-time resync requests,
// and tracks presence. There is no server-side authority anywhere; every
// peer is symmetric.
type Engine struct {
	cfg Config
	log *slog.Logger

	mu           sync.Mutex
	syncDeadline time.Time
	synced       bool // first full-sync applied within the current window
	peerCount    int
}

// New validates the config and builds an engine. The engine does nothing
// until Run.
func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, log: cfg.Logger}, nil
}

// Run joins the room, announces presence, requests an initial resync and
// serves until ctx is canceled. Teardown leaves the room and stops every
// timer; a canceled context is a normal shutdown, not an error.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.cfg.Room.Join(ctx); err != nil {
		return fmt.Errorf("join room: %w", err)
	}
	defer e.cfg.Room.Leave()

	e.broadcast(ctx, models.Presence{
		PeerID:   e.cfg.PeerID,
		Nickname: e.cfg.Nickname,
		Date:     time.Now(),
	})
	e.ForceManualSync(ctx)

	heartbeat := time.NewTicker(e.cfg.HeartbeatInterval)
	defer heartbeat.Stop()
	peerPoll := time.NewTicker(e.cfg.PeerPollInterval)
	defer peerPoll.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-e.cfg.Room.Messages():
			if !ok {
				return nil
			}
			e.handle(ctx, msg)
		case <-heartbeat.C:
			e.broadcast(ctx, models.Heartbeat{Date: time.Now()})
		case <-peerPoll.C:
			e.refreshPeerCount(ctx)
		}
	}
}

// ForceManualSync re-issues a sync-request on demand: the initial join,
// an offline-to-online transition, or an admin action. It reopens the
// syncing window.
func (e *Engine) ForceManualSync(ctx context.Context) {
	e.mu.Lock()
	e.syncDeadline = time.Now().Add(e.cfg.SyncWindow)
	e.synced = false
	e.mu.Unlock()
	e.broadcast(ctx, models.SyncRequest{})
}

// Syncing reports whether the post-request window is still open. The
// session suppresses persistence while it is, to avoid persisting-again
// loops during a resync burst.
func (e *Engine) Syncing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Now().Before(e.syncDeadline)
}

// PeerCount returns the last observed live peer count.
func (e *Engine) PeerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.peerCount
}

func (e *Engine) refreshPeerCount(ctx context.Context) {
	n, err := e.cfg.Room.PeerCount(ctx)
	if err != nil {
		e.log.Debug("peer count unavailable", "error", err)
		return
	}
	e.mu.Lock()
	changed := n != e.peerCount
	e.peerCount = n
	e.mu.Unlock()
	if changed && e.cfg.Callbacks.OnPeerCountChange != nil {
		e.cfg.Callbacks.OnPeerCountChange(n)
	}
}

// handle processes one received broadcast. Errors here are logged and
// swallowed: a malformed message from one peer must never take down the
// room membership.
func (e *Engine) handle(ctx context.Context, msg Message) {
	var env envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		e.log.Warn("dropping malformed envelope", "kind", msg.Kind, "error", err)
		return
	}
	if env.Sender == e.cfg.PeerID {
		return // own echo
	}

	delta, err := models.DecodeDelta(msg.Kind, env.Payload)
	if err != nil {
		e.log.Warn("dropping undecodable delta", "kind", msg.Kind, "error", err)
		return
	}
	delta = sanitize.Delta(delta)

	switch v := delta.(type) {
	case models.SyncRequest:
		e.scheduleSyncReply(ctx)
	case models.FullSync:
		e.handleFullSync(v)
	case models.Heartbeat:
		// keep-alive only; no handler-side effect
	case models.Presence:
		call(e.cfg.Callbacks.OnPresence, v)
		e.refreshPeerCount(ctx)
	case models.VoteSet:
		call(e.cfg.Callbacks.OnVoteSet, v)
	case models.VoteConfirm:
		call(e.cfg.Callbacks.OnVoteConfirm, v)
	case models.GlobalNoteSet:
		call(e.cfg.Callbacks.OnGlobalNoteSet, v)
	case models.Reset:
		call(e.cfg.Callbacks.OnReset, v)
	case models.DeleteEntry:
		call(e.cfg.Callbacks.OnDeleteEntry, v)
	case models.AddEntry:
		call(e.cfg.Callbacks.OnAddEntry, v)
	case models.MediaAdd:
		call(e.cfg.Callbacks.OnMediaAdd, v)
	case models.MediaUpdate:
		call(e.cfg.Callbacks.OnMediaUpdate, v)
	case models.MediaDelete:
		call(e.cfg.Callbacks.OnMediaDelete, v)
	case models.DateSet:
		call(e.cfg.Callbacks.OnDateSet, v)
	case models.CommentAdd:
		call(e.cfg.Callbacks.OnCommentAdd, v)
	case models.CommentEdit:
		call(e.cfg.Callbacks.OnCommentEdit, v)
	case models.CommentDelete:
		call(e.cfg.Callbacks.OnCommentDelete, v)
	case models.ReactionSet:
		call(e.cfg.Callbacks.OnReactionSet, v)
	case models.CommentReactionSet:
		call(e.cfg.Callbacks.OnCommentReactionSet, v)
	case models.ReplyAdd:
		call(e.cfg.Callbacks.OnReplyAdd, v)
	case models.ReplyEdit:
		call(e.cfg.Callbacks.OnReplyEdit, v)
	case models.ReplyDelete:
		call(e.cfg.Callbacks.OnReplyDelete, v)
	case models.ReplyReactionSet:
		call(e.cfg.Callbacks.OnReplyReactionSet, v)
	case models.PollVoteSet:
		call(e.cfg.Callbacks.OnPollVoteSet, v)
	case models.AppNotification:
		call(e.cfg.Callbacks.OnAppNotification, v)
	case models.ResetUserXP:
		call(e.cfg.Callbacks.OnResetUserXP, v)
	case models.UserUpdate:
		call(e.cfg.Callbacks.OnUserUpdate, v)
	}
}

func call[T any](fn func(T), v T) {
	if fn != nil {
		fn(v)
	}
}

// scheduleSyncReply answers a sync-request with the full document after a
// randomized delay, so a room full of peers does not answer a joiner all
// at once. Peers with an empty document stay silent.
func (e *Engine) scheduleSyncReply(ctx context.Context) {
	if e.cfg.Callbacks.CurrentState == nil {
		return
	}
	delay := time.Duration(rand.Int63n(int64(e.cfg.SyncReplyJitter))) + 50*time.Millisecond
	timer := time.NewTimer(delay)
	go func() {
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		doc := e.cfg.Callbacks.CurrentState()
		if doc.IsEmpty() {
			return
		}
		e.broadcast(ctx, models.FullSync{Document: doc})
	}()
}

func (e *Engine) handleFullSync(v models.FullSync) {
	e.mu.Lock()
	inWindow := time.Now().Before(e.syncDeadline)
	first := inWindow && !e.synced
	if inWindow {
		e.synced = true
	}
	e.mu.Unlock()

	if first {
		e.log.Info("applying authoritative full-sync",
			"entries", len(v.Document.Entries), "users", len(v.Document.Users))
	}
	call(e.cfg.Callbacks.OnFullSync, v)
}

// broadcast sanitizes, wraps and publishes one delta. Transport failures
// are non-fatal: the peer keeps working in local-only mode and the next
// resync covers the gap.
func (e *Engine) broadcast(ctx context.Context, d models.Delta) {
	if err := e.send(ctx, d); err != nil {
		e.log.Warn("broadcast failed", "kind", d.DeltaKind(), "error", err)
	}
}

func (e *Engine) send(ctx context.Context, d models.Delta) error {
	d = sanitize.Delta(d)
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", d.DeltaKind(), err)
	}
	data, err := json.Marshal(envelope{Sender: e.cfg.PeerID, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return e.cfg.Room.Publish(ctx, d.DeltaKind(), data)
}

// Broadcast methods, one per delta type. Each runs the sanitization guard
// before transmission.

func (e *Engine) BroadcastVoteSet(ctx context.Context, p models.VoteSet) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastVoteConfirm(ctx context.Context, p models.VoteConfirm) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastGlobalNoteSet(ctx context.Context, p models.GlobalNoteSet) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastFullSync(ctx context.Context, p models.FullSync) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastReset(ctx context.Context) error {
	return e.send(ctx, models.Reset{})
}

func (e *Engine) BroadcastDeleteEntry(ctx context.Context, p models.DeleteEntry) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastAddEntry(ctx context.Context, p models.AddEntry) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastMediaAdd(ctx context.Context, p models.MediaAdd) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastMediaUpdate(ctx context.Context, p models.MediaUpdate) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastMediaDelete(ctx context.Context, p models.MediaDelete) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastDateSet(ctx context.Context, p models.DateSet) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastCommentAdd(ctx context.Context, p models.CommentAdd) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastCommentEdit(ctx context.Context, p models.CommentEdit) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastCommentDelete(ctx context.Context, p models.CommentDelete) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastReactionSet(ctx context.Context, p models.ReactionSet) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastCommentReactionSet(ctx context.Context, p models.CommentReactionSet) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastReplyAdd(ctx context.Context, p models.ReplyAdd) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastReplyEdit(ctx context.Context, p models.ReplyEdit) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastReplyDelete(ctx context.Context, p models.ReplyDelete) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastReplyReactionSet(ctx context.Context, p models.ReplyReactionSet) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastPollVoteSet(ctx context.Context, p models.PollVoteSet) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastAppNotification(ctx context.Context, p models.AppNotification) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastResetUserXP(ctx context.Context, p models.ResetUserXP) error {
	return e.send(ctx, p)
}

func (e *Engine) BroadcastUserUpdate(ctx context.Context, p models.UserUpdate) error {
	return e.send(ctx, p)
}
