package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies a delta message type. Each kind travels on its own
// channel and has its own reducer; routing by type lets every receiver
// apply the narrowest correct merge rule instead of a generic deep-merge,
// which would be unsound for append-only lists.
type Kind string

const (
	KindVoteSet            Kind = "vote-set"
	KindVoteConfirm        Kind = "vote-confirm"
	KindGlobalNoteSet      Kind = "global-note-set"
	KindFullSync           Kind = "full-sync"
	KindSyncRequest        Kind = "sync-request"
	KindReset              Kind = "reset"
	KindDeleteEntry        Kind = "delete-entry"
	KindAddEntry           Kind = "add-entry"
	KindMediaAdd           Kind = "media-add"
	KindMediaUpdate        Kind = "media-update"
	KindMediaDelete        Kind = "media-delete"
	KindDateSet            Kind = "date-set"
	KindCommentAdd         Kind = "comment-add"
	KindCommentEdit        Kind = "comment-edit"
	KindCommentDelete      Kind = "comment-delete"
	KindReactionSet        Kind = "reaction-set"
	KindCommentReactionSet Kind = "comment-reaction-set"
	KindReplyAdd           Kind = "reply-add"
	KindReplyEdit          Kind = "reply-edit"
	KindReplyDelete        Kind = "reply-delete"
	KindReplyReactionSet   Kind = "reply-reaction-set"
	KindPollVoteSet        Kind = "poll-vote-set"
	KindAppNotification    Kind = "app-notification"
	KindResetUserXP        Kind = "reset-user-xp"
	KindUserUpdate         Kind = "user-update"
	KindPresence           Kind = "presence"
	KindHeartbeat          Kind = "heartbeat"
)

// AllKinds lists every delta kind. The transport subscribes one channel
// per kind.
var AllKinds = []Kind{
	KindVoteSet, KindVoteConfirm, KindGlobalNoteSet, KindFullSync,
	KindSyncRequest, KindReset, KindDeleteEntry, KindAddEntry,
	KindMediaAdd, KindMediaUpdate, KindMediaDelete, KindDateSet,
	KindCommentAdd, KindCommentEdit, KindCommentDelete, KindReactionSet,
	KindCommentReactionSet, KindReplyAdd, KindReplyEdit, KindReplyDelete,
	KindReplyReactionSet, KindPollVoteSet, KindAppNotification,
	KindResetUserXP, KindUserUpdate, KindPresence, KindHeartbeat,
}

// Delta is the tagged union of every message payload.
type Delta interface {
	DeltaKind() Kind
}

// VoteSet replaces one (entry, user, category, field) score slot. Value
// DeleteScore removes the slot.
type VoteSet struct {
	EntryID  string  `json:"entryId"`
	UserID   string  `json:"userId"`
	Category string  `json:"category"`
	Field    string  `json:"field"`
	Value    float64 `json:"value"`
}

// VoteConfirm sets or clears a user's vote confirmation on an entry.
type VoteConfirm struct {
	EntryID   string `json:"entryId"`
	UserID    string `json:"userId"`
	Confirmed bool   `json:"confirmed"`
}

// GlobalNoteSet overwrites the shared notes of an entry (last writer wins).
type GlobalNoteSet struct {
	EntryID string `json:"entryId"`
	Notes   string `json:"notes"`
}

// FullSync carries the entire document, answering a SyncRequest.
type FullSync struct {
	Document Document `json:"document"`
}

// SyncRequest asks every peer with a non-empty document to respond with a
// FullSync. It carries no payload.
type SyncRequest struct{}

// Reset clears scores, bonuses and confirmations everywhere. Entries,
// media, social data and users persist.
type Reset struct{}

// DeleteEntry removes an entry wholesale.
type DeleteEntry struct {
	EntryID string `json:"entryId"`
}

// AddEntry appends a new entry.
type AddEntry struct {
	Entry Entry `json:"entry"`
}

// MediaAdd appends a media item to an entry.
type MediaAdd struct {
	EntryID string    `json:"entryId"`
	Item    MediaItem `json:"item"`
}

// MediaUpdate edits the mutable fields of a media item. Nil fields are
// left untouched.
type MediaUpdate struct {
	EntryID string  `json:"entryId"`
	MediaID string  `json:"mediaId"`
	Caption *string `json:"caption,omitempty"`
}

// MediaDelete removes a media item by id.
type MediaDelete struct {
	EntryID string `json:"entryId"`
	MediaID string `json:"mediaId"`
}

// DateSet overwrites an entry's scheduled date (administrator-owned).
type DateSet struct {
	EntryID       string `json:"entryId"`
	ScheduledDate string `json:"scheduledDate"`
}

// CommentAdd appends a comment to a media item's thread. Receivers dedup
// by Comment.ID.
type CommentAdd struct {
	MediaID string  `json:"mediaId"`
	Comment Comment `json:"comment"`
}

// CommentEdit replaces a comment's text, located by id.
type CommentEdit struct {
	MediaID   string `json:"mediaId"`
	CommentID string `json:"commentId"`
	Text      string `json:"text"`
}

// CommentDelete removes a comment by id.
type CommentDelete struct {
	MediaID   string `json:"mediaId"`
	CommentID string `json:"commentId"`
}

// ReactionSet toggles a user's reaction on a media item: same emoji
// clears, different emoji overwrites.
type ReactionSet struct {
	MediaID string `json:"mediaId"`
	UserID  string `json:"userId"`
	Emoji   string `json:"emoji"`
}

// CommentReactionSet toggles a user's reaction on a comment.
type CommentReactionSet struct {
	MediaID   string `json:"mediaId"`
	CommentID string `json:"commentId"`
	UserID    string `json:"userId"`
	Emoji     string `json:"emoji"`
}

// ReplyAdd appends a reply to a comment. Receivers dedup by Reply.ID.
type ReplyAdd struct {
	MediaID   string `json:"mediaId"`
	CommentID string `json:"commentId"`
	Reply     Reply  `json:"reply"`
}

// ReplyEdit replaces a reply's text, located by id.
type ReplyEdit struct {
	MediaID   string `json:"mediaId"`
	CommentID string `json:"commentId"`
	ReplyID   string `json:"replyId"`
	Text      string `json:"text"`
}

// ReplyDelete removes a reply by id.
type ReplyDelete struct {
	MediaID   string `json:"mediaId"`
	CommentID string `json:"commentId"`
	ReplyID   string `json:"replyId"`
}

// ReplyReactionSet toggles a user's reaction on a reply.
type ReplyReactionSet struct {
	MediaID   string `json:"mediaId"`
	CommentID string `json:"commentId"`
	ReplyID   string `json:"replyId"`
	UserID    string `json:"userId"`
	Emoji     string `json:"emoji"`
}

// PollVoteSet replaces a user's ballot on a poll wholesale: a
// resubmission is a full replacement, never a merge.
type PollVoteSet struct {
	MediaID   string   `json:"mediaId"`
	UserID    string   `json:"userId"`
	OptionIDs []string `json:"optionIds"`
}

// AppNotification is a transient broadcast message shown to users. It has
// no reducer effect on the document.
type AppNotification struct {
	From    string    `json:"from"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
}

// ResetUserXP signals the named user (or ResetAllUsers) to rebase their
// derivation on the updated offsets. XP history is never deleted; the
// offsets do the resetting.
type ResetUserXP struct {
	Target string `json:"target"`
}

// UserUpdate merges partial profile fields into the account matching
// Nickname case-insensitively. Nil fields are left untouched; an unknown
// nickname appends a new account (the registration path).
type UserUpdate struct {
	Nickname         string   `json:"nickname"`
	Phone            *string  `json:"phone,omitempty"`
	Password         *string  `json:"password,omitempty"`
	IsVerified       *bool    `json:"isVerified,omitempty"`
	Avatar           *string  `json:"avatar,omitempty"`
	Cover            *string  `json:"cover,omitempty"`
	XPOffset         *float64 `json:"xpOffset,omitempty"`
	PointsOffset     *float64 `json:"pointsOffset,omitempty"`
	MaxRegularPoints *float64 `json:"maxRegularPoints,omitempty"`
	MaxBonusPoints   *float64 `json:"maxBonusPoints,omitempty"`
}

// Presence announces a peer's identity to the room.
type Presence struct {
	PeerID   string    `json:"peerId"`
	Nickname string    `json:"nickname"`
	Date     time.Time `json:"date"`
}

// Heartbeat is a periodic keep-alive. It carries a timestamp and has no
// handler-side effect beyond proving the channel is alive.
type Heartbeat struct {
	Date time.Time `json:"date"`
}

func (VoteSet) DeltaKind() Kind            { return KindVoteSet }
func (VoteConfirm) DeltaKind() Kind        { return KindVoteConfirm }
func (GlobalNoteSet) DeltaKind() Kind      { return KindGlobalNoteSet }
func (FullSync) DeltaKind() Kind           { return KindFullSync }
func (SyncRequest) DeltaKind() Kind        { return KindSyncRequest }
func (Reset) DeltaKind() Kind              { return KindReset }
func (DeleteEntry) DeltaKind() Kind        { return KindDeleteEntry }
func (AddEntry) DeltaKind() Kind           { return KindAddEntry }
func (MediaAdd) DeltaKind() Kind           { return KindMediaAdd }
func (MediaUpdate) DeltaKind() Kind        { return KindMediaUpdate }
func (MediaDelete) DeltaKind() Kind        { return KindMediaDelete }
func (DateSet) DeltaKind() Kind            { return KindDateSet }
func (CommentAdd) DeltaKind() Kind         { return KindCommentAdd }
func (CommentEdit) DeltaKind() Kind        { return KindCommentEdit }
func (CommentDelete) DeltaKind() Kind      { return KindCommentDelete }
func (ReactionSet) DeltaKind() Kind        { return KindReactionSet }
func (CommentReactionSet) DeltaKind() Kind { return KindCommentReactionSet }
func (ReplyAdd) DeltaKind() Kind           { return KindReplyAdd }
func (ReplyEdit) DeltaKind() Kind          { return KindReplyEdit }
func (ReplyDelete) DeltaKind() Kind        { return KindReplyDelete }
func (ReplyReactionSet) DeltaKind() Kind   { return KindReplyReactionSet }
func (PollVoteSet) DeltaKind() Kind        { return KindPollVoteSet }
func (AppNotification) DeltaKind() Kind    { return KindAppNotification }
func (ResetUserXP) DeltaKind() Kind        { return KindResetUserXP }
func (UserUpdate) DeltaKind() Kind         { return KindUserUpdate }
func (Presence) DeltaKind() Kind           { return KindPresence }
func (Heartbeat) DeltaKind() Kind          { return KindHeartbeat }

// DecodeDelta unmarshals a payload into the concrete type for its kind.
func DecodeDelta(kind Kind, data []byte) (Delta, error) {
	var (
		d   Delta
		err error
	)
	switch kind {
	case KindVoteSet:
		d, err = decode[VoteSet](data)
	case KindVoteConfirm:
		d, err = decode[VoteConfirm](data)
	case KindGlobalNoteSet:
		d, err = decode[GlobalNoteSet](data)
	case KindFullSync:
		d, err = decode[FullSync](data)
	case KindSyncRequest:
		d, err = decode[SyncRequest](data)
	case KindReset:
		d, err = decode[Reset](data)
	case KindDeleteEntry:
		d, err = decode[DeleteEntry](data)
	case KindAddEntry:
		d, err = decode[AddEntry](data)
	case KindMediaAdd:
		d, err = decode[MediaAdd](data)
	case KindMediaUpdate:
		d, err = decode[MediaUpdate](data)
	case KindMediaDelete:
		d, err = decode[MediaDelete](data)
	case KindDateSet:
		d, err = decode[DateSet](data)
	case KindCommentAdd:
		d, err = decode[CommentAdd](data)
	case KindCommentEdit:
		d, err = decode[CommentEdit](data)
	case KindCommentDelete:
		d, err = decode[CommentDelete](data)
	case KindReactionSet:
		d, err = decode[ReactionSet](data)
	case KindCommentReactionSet:
		d, err = decode[CommentReactionSet](data)
	case KindReplyAdd:
		d, err = decode[ReplyAdd](data)
	case KindReplyEdit:
		d, err = decode[ReplyEdit](data)
	case KindReplyDelete:
		d, err = decode[ReplyDelete](data)
	case KindReplyReactionSet:
		d, err = decode[ReplyReactionSet](data)
	case KindPollVoteSet:
		d, err = decode[PollVoteSet](data)
	case KindAppNotification:
		d, err = decode[AppNotification](data)
	case KindResetUserXP:
		d, err = decode[ResetUserXP](data)
	case KindUserUpdate:
		d, err = decode[UserUpdate](data)
	case KindPresence:
		d, err = decode[Presence](data)
	case KindHeartbeat:
		d, err = decode[Heartbeat](data)
	default:
		return nil, fmt.Errorf("unknown delta kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return d, nil
}

func decode[T Delta](data []byte) (Delta, error) {
	var v T
	if len(data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
