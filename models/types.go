package models

import (
	"strings"
	"time"
)

// Score categories. Every entry is judged twice, once per category.
const (
	CategorySavory = "savory"
	CategorySweet  = "sweet"
)

// Score fields within a category.
const (
	FieldAppearance = "appearance"
	FieldTaste      = "taste"
)

// DeleteScore is the sentinel that removes a user's key from a score map.
// A literal 0 is a valid score, so deletion needs its own value.
const DeleteScore float64 = -1

// Media item types.
const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaAudio = "audio"
	MediaPoll  = "poll"
)

// Media item categories (which feed/gallery an item belongs to).
const (
	MediaCategoryPizza    = "pizza"
	MediaCategoryChampion = "champion"
	MediaCategoryTeam     = "team"
)

// ResetAllUsers is the ResetUserXP target that addresses every user.
const ResetAllUsers = "ALL"

// Entry is a single competition item. The ID is immutable after creation;
// entries are only appended or fully removed, never merged or split.
type Entry struct {
	ID               string             `json:"id"`
	SavoryAppearance map[string]float64 `json:"savoryAppearance,omitempty"`
	SavoryTaste      map[string]float64 `json:"savoryTaste,omitempty"`
	SweetAppearance  map[string]float64 `json:"sweetAppearance,omitempty"`
	SweetTaste       map[string]float64 `json:"sweetTaste,omitempty"`
	SavoryBonus      map[string]int     `json:"savoryBonus,omitempty"`
	SweetBonus       map[string]int     `json:"sweetBonus,omitempty"`
	ConfirmedVotes   map[string]bool    `json:"confirmedVotes,omitempty"`
	UserNotes        map[string]string  `json:"userNotes,omitempty"`
	Notes            string             `json:"notes,omitempty"`
	Media            []MediaItem        `json:"media,omitempty"`
	ScheduledDate    string             `json:"scheduledDate,omitempty"`
}

// Scores returns the score map for a category/field pair, or nil if the
// pair is unknown. The returned map is the live map, not a copy.
func (e *Entry) Scores(category, field string) map[string]float64 {
	switch {
	case category == CategorySavory && field == FieldAppearance:
		return e.SavoryAppearance
	case category == CategorySavory && field == FieldTaste:
		return e.SavoryTaste
	case category == CategorySweet && field == FieldAppearance:
		return e.SweetAppearance
	case category == CategorySweet && field == FieldTaste:
		return e.SweetTaste
	}
	return nil
}

// SetScores installs a score map for a category/field pair.
func (e *Entry) SetScores(category, field string, m map[string]float64) {
	switch {
	case category == CategorySavory && field == FieldAppearance:
		e.SavoryAppearance = m
	case category == CategorySavory && field == FieldTaste:
		e.SavoryTaste = m
	case category == CategorySweet && field == FieldAppearance:
		e.SweetAppearance = m
	case category == CategorySweet && field == FieldTaste:
		e.SweetTaste = m
	}
}

// Bonus returns the bonus map for a category, or nil for an unknown category.
func (e *Entry) Bonus(category string) map[string]int {
	switch category {
	case CategorySavory:
		return e.SavoryBonus
	case CategorySweet:
		return e.SweetBonus
	}
	return nil
}

// SumScores sums appearance and taste scores received across all users for
// one category. Deleted (absent) keys contribute nothing.
func (e *Entry) SumScores(category string) float64 {
	var sum float64
	for _, v := range e.Scores(category, FieldAppearance) {
		sum += v
	}
	for _, v := range e.Scores(category, FieldTaste) {
		sum += v
	}
	return sum
}

// HasVotes reports whether userID has both appearance and taste present for
// the category. This is the precondition for confirming a vote; it lives
// here so callers can check it, while the confirm reducer itself stays
// unconditional.
func (e *Entry) HasVotes(userID, category string) bool {
	_, hasAppearance := e.Scores(category, FieldAppearance)[userID]
	_, hasTaste := e.Scores(category, FieldTaste)[userID]
	return hasAppearance && hasTaste
}

// MediaItem is a feed/gallery attachment owned by an entry. URL is an
// opaque payload reference; large blobs live in the local media archive
// and are re-hydrated into URL on load.
type MediaItem struct {
	ID             string    `json:"id"`
	URL            string    `json:"url"`
	Type           string    `json:"type"`
	Category       string    `json:"category"`
	Date           time.Time `json:"date"`
	Caption        string    `json:"caption,omitempty"`
	HiddenFromFeed bool      `json:"hiddenFromFeed,omitempty"`
	Poll           *Poll     `json:"poll,omitempty"`
}

// PollOption is one selectable answer of a Poll.
type PollOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Poll is carried by a MediaItem of type MediaPoll. Options are append-only
// once votes reference them.
type Poll struct {
	Question      string              `json:"question"`
	Options       []PollOption        `json:"options"`
	Votes         map[string][]string `json:"votes,omitempty"`
	AllowMultiple bool                `json:"allowMultiple,omitempty"`
}

// Comment is an append-only feed comment. Edit and delete address it by ID,
// never by index.
type Comment struct {
	ID        string            `json:"id"`
	User      string            `json:"user"`
	Text      string            `json:"text"`
	Date      time.Time         `json:"date"`
	Reactions map[string]string `json:"reactions,omitempty"`
	Replies   []Reply           `json:"replies,omitempty"`
}

// Reply is a one-level-deep comment reply. No further nesting.
type Reply struct {
	ID        string            `json:"id"`
	User      string            `json:"user"`
	Text      string            `json:"text"`
	Date      time.Time         `json:"date"`
	Reactions map[string]string `json:"reactions,omitempty"`
}

// SocialData holds reactions and comment threads keyed by media item ID.
// Likes maps mediaID -> userID -> emoji; a user holds at most one reaction
// slot per media item.
type SocialData struct {
	Likes    map[string]map[string]string `json:"likes,omitempty"`
	Comments map[string][]Comment         `json:"comments,omitempty"`
}

// UserAccount is a participant profile. Nicknames start with "@" and
// compare case-insensitively. The password is a weak 4-digit PIN and is
// deliberately not hashed. MaxRegularPoints and MaxBonusPoints are the
// persisted high-water marks the XP derivation reads and updates.
type UserAccount struct {
	Nickname         string  `json:"nickname"`
	Phone            string  `json:"phone,omitempty"`
	Password         string  `json:"password,omitempty"`
	IsVerified       bool    `json:"isVerified,omitempty"`
	Avatar           string  `json:"avatar,omitempty"`
	Cover            string  `json:"cover,omitempty"`
	XPOffset         float64 `json:"xpOffset,omitempty"`
	PointsOffset     float64 `json:"pointsOffset,omitempty"`
	MaxRegularPoints float64 `json:"maxRegularPoints,omitempty"`
	MaxBonusPoints   float64 `json:"maxBonusPoints,omitempty"`
}

// ErrorResponse is the JSON error body of the HTTP surface.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Document is the whole shared tournament state: the unit of snapshot,
// persistence and replication.
type Document struct {
	Entries        []Entry       `json:"entries"`
	Social         SocialData    `json:"social"`
	Users          []UserAccount `json:"users"`
	VotingReleased bool          `json:"votingReleased"`
}

// IsEmpty reports whether the document carries no state worth answering a
// sync-request with.
func (d Document) IsEmpty() bool {
	return len(d.Entries) == 0 && len(d.Users) == 0 &&
		len(d.Social.Likes) == 0 && len(d.Social.Comments) == 0
}

// EntryByID returns a pointer into Entries, or nil.
func (d *Document) EntryByID(id string) *Entry {
	for i := range d.Entries {
		if d.Entries[i].ID == id {
			return &d.Entries[i]
		}
	}
	return nil
}

// UserByNickname returns a pointer into Users, matching case-insensitively,
// or nil.
func (d *Document) UserByNickname(nickname string) *UserAccount {
	for i := range d.Users {
		if strings.EqualFold(d.Users[i].Nickname, nickname) {
			return &d.Users[i]
		}
	}
	return nil
}

// Clone deep-copies the document. Reducers never mutate their input; they
// clone and return a new document so readers can never observe a
// half-applied delta.
func (d Document) Clone() Document {
	out := Document{
		VotingReleased: d.VotingReleased,
		Social: SocialData{
			Likes:    cloneLikes(d.Social.Likes),
			Comments: cloneComments(d.Social.Comments),
		},
	}
	if d.Entries != nil {
		out.Entries = make([]Entry, len(d.Entries))
		for i, e := range d.Entries {
			out.Entries[i] = e.clone()
		}
	}
	if d.Users != nil {
		out.Users = append([]UserAccount(nil), d.Users...)
	}
	return out
}

func (e Entry) clone() Entry {
	out := e
	out.SavoryAppearance = cloneFloatMap(e.SavoryAppearance)
	out.SavoryTaste = cloneFloatMap(e.SavoryTaste)
	out.SweetAppearance = cloneFloatMap(e.SweetAppearance)
	out.SweetTaste = cloneFloatMap(e.SweetTaste)
	out.SavoryBonus = cloneIntMap(e.SavoryBonus)
	out.SweetBonus = cloneIntMap(e.SweetBonus)
	out.ConfirmedVotes = cloneBoolMap(e.ConfirmedVotes)
	out.UserNotes = cloneStringMap(e.UserNotes)
	if e.Media != nil {
		out.Media = make([]MediaItem, len(e.Media))
		for i, m := range e.Media {
			out.Media[i] = m.clone()
		}
	}
	return out
}

func (m MediaItem) clone() MediaItem {
	out := m
	if m.Poll != nil {
		p := Poll{
			Question:      m.Poll.Question,
			AllowMultiple: m.Poll.AllowMultiple,
			Options:       append([]PollOption(nil), m.Poll.Options...),
		}
		if m.Poll.Votes != nil {
			p.Votes = make(map[string][]string, len(m.Poll.Votes))
			for k, v := range m.Poll.Votes {
				p.Votes[k] = append([]string(nil), v...)
			}
		}
		out.Poll = &p
	}
	return out
}

func (c Comment) clone() Comment {
	out := c
	out.Reactions = cloneStringMap(c.Reactions)
	if c.Replies != nil {
		out.Replies = make([]Reply, len(c.Replies))
		for i, r := range c.Replies {
			rr := r
			rr.Reactions = cloneStringMap(r.Reactions)
			out.Replies[i] = rr
		}
	}
	return out
}

func cloneLikes(in map[string]map[string]string) map[string]map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]map[string]string, len(in))
	for k, v := range in {
		out[k] = cloneStringMap(v)
	}
	return out
}

func cloneComments(in map[string][]Comment) map[string][]Comment {
	if in == nil {
		return nil
	}
	out := make(map[string][]Comment, len(in))
	for k, list := range in {
		cp := make([]Comment, len(list))
		for i, c := range list {
			cp[i] = c.clone()
		}
		out[k] = cp
	}
	return out
}

func cloneFloatMap(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneIntMap(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneBoolMap(in map[string]bool) map[string]bool {
	if in == nil {
		return nil
	}
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
