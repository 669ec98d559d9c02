package reducer

import (
	"github.com/pizzanight/server/auth"
	"github.com/pizzanight/server/models"
)

// Apply computes the next document from a delta. It is pure and
// copy-on-write: the input document is never mutated, and the same
// function serves local (pre-broadcast) and remote (post-receipt)
// application. Every branch is idempotent under redelivery.
func Apply(doc models.Document, d models.Delta) models.Document {
	switch v := d.(type) {
	case models.VoteSet:
		return applyVoteSet(doc, v)
	case models.VoteConfirm:
		return applyVoteConfirm(doc, v)
	case models.GlobalNoteSet:
		return applyGlobalNoteSet(doc, v)
	case models.FullSync:
		return MergeFullSync(doc, v.Document)
	case models.Reset:
		return ResetVotes(doc)
	case models.DeleteEntry:
		return applyDeleteEntry(doc, v)
	case models.AddEntry:
		return applyAddEntry(doc, v)
	case models.MediaAdd:
		return applyMediaAdd(doc, v)
	case models.MediaUpdate:
		return applyMediaUpdate(doc, v)
	case models.MediaDelete:
		return applyMediaDelete(doc, v)
	case models.DateSet:
		return applyDateSet(doc, v)
	case models.CommentAdd:
		return applyCommentAdd(doc, v)
	case models.CommentEdit:
		return applyCommentEdit(doc, v)
	case models.CommentDelete:
		return applyCommentDelete(doc, v)
	case models.ReactionSet:
		return applyReactionSet(doc, v)
	case models.CommentReactionSet:
		return applyCommentReactionSet(doc, v)
	case models.ReplyAdd:
		return applyReplyAdd(doc, v)
	case models.ReplyEdit:
		return applyReplyEdit(doc, v)
	case models.ReplyDelete:
		return applyReplyDelete(doc, v)
	case models.ReplyReactionSet:
		return applyReplyReactionSet(doc, v)
	case models.PollVoteSet:
		return applyPollVoteSet(doc, v)
	case models.UserUpdate:
		return applyUserUpdate(doc, v)
	default:
		// sync-request, presence, heartbeat, app-notification and
		// reset-user-xp have no document effect.
		return doc
	}
}

// applyVoteSet replaces one (entry, user, category, field) slot. The
// DeleteScore sentinel removes the key instead of storing a literal
// value. Editing a score revokes the user's prior confirmation: a change
// requires a fresh confirm.
func applyVoteSet(doc models.Document, v models.VoteSet) models.Document {
	out := doc.Clone()
	e := out.EntryByID(v.EntryID)
	if e == nil {
		return out
	}
	m := e.Scores(v.Category, v.Field)
	if m == nil {
		if v.Value == models.DeleteScore {
			return out
		}
		m = make(map[string]float64)
		e.SetScores(v.Category, v.Field, m)
	}
	if v.Value == models.DeleteScore {
		delete(m, v.UserID)
	} else {
		m[v.UserID] = v.Value
	}
	delete(e.ConfirmedVotes, v.UserID)
	return out
}

// applyVoteConfirm is unconditional so that remote replays of a confirm
// can never be rejected by local precondition drift; the hasMyVotes
// precondition is enforced by the mutation caller.
func applyVoteConfirm(doc models.Document, v models.VoteConfirm) models.Document {
	out := doc.Clone()
	e := out.EntryByID(v.EntryID)
	if e == nil {
		return out
	}
	if v.Confirmed {
		if e.ConfirmedVotes == nil {
			e.ConfirmedVotes = make(map[string]bool)
		}
		e.ConfirmedVotes[v.UserID] = true
	} else {
		delete(e.ConfirmedVotes, v.UserID)
	}
	return out
}

func applyGlobalNoteSet(doc models.Document, v models.GlobalNoteSet) models.Document {
	out := doc.Clone()
	if e := out.EntryByID(v.EntryID); e != nil {
		e.Notes = v.Notes
	}
	return out
}

func applyDateSet(doc models.Document, v models.DateSet) models.Document {
	out := doc.Clone()
	if e := out.EntryByID(v.EntryID); e != nil {
		e.ScheduledDate = v.ScheduledDate
	}
	return out
}

func applyAddEntry(doc models.Document, v models.AddEntry) models.Document {
	out := doc.Clone()
	if v.Entry.ID == "" || out.EntryByID(v.Entry.ID) != nil {
		return out
	}
	out.Entries = append(out.Entries, v.Entry)
	return out
}

func applyDeleteEntry(doc models.Document, v models.DeleteEntry) models.Document {
	out := doc.Clone()
	for i := range out.Entries {
		if out.Entries[i].ID == v.EntryID {
			out.Entries = append(out.Entries[:i], out.Entries[i+1:]...)
			break
		}
	}
	return out
}

// ResetVotes clears scores, bonuses, confirmations and the released flag.
// Entries, media, social data and users persist; this is the literal
// contract of the admin reset dialog.
func ResetVotes(doc models.Document) models.Document {
	out := doc.Clone()
	for i := range out.Entries {
		e := &out.Entries[i]
		e.SavoryAppearance = nil
		e.SavoryTaste = nil
		e.SweetAppearance = nil
		e.SweetTaste = nil
		e.SavoryBonus = nil
		e.SweetBonus = nil
		e.ConfirmedVotes = nil
	}
	out.VotingReleased = false
	return out
}

func applyMediaAdd(doc models.Document, v models.MediaAdd) models.Document {
	out := doc.Clone()
	e := out.EntryByID(v.EntryID)
	if e == nil || v.Item.ID == "" {
		return out
	}
	for i := range e.Media {
		if e.Media[i].ID == v.Item.ID {
			return out // duplicate delivery
		}
	}
	e.Media = append(e.Media, v.Item)
	return out
}

func applyMediaUpdate(doc models.Document, v models.MediaUpdate) models.Document {
	out := doc.Clone()
	e := out.EntryByID(v.EntryID)
	if e == nil {
		return out
	}
	for i := range e.Media {
		if e.Media[i].ID == v.MediaID {
			if v.Caption != nil {
				e.Media[i].Caption = *v.Caption
			}
			break
		}
	}
	return out
}

func applyMediaDelete(doc models.Document, v models.MediaDelete) models.Document {
	out := doc.Clone()
	e := out.EntryByID(v.EntryID)
	if e == nil {
		return out
	}
	for i := range e.Media {
		if e.Media[i].ID == v.MediaID {
			e.Media = append(e.Media[:i], e.Media[i+1:]...)
			break
		}
	}
	return out
}

// applyPollVoteSet replaces the user's ballot wholesale; a resubmission
// is a full replacement, never a merge. An empty option list withdraws
// the ballot. The poll is located by media id across all entries.
func applyPollVoteSet(doc models.Document, v models.PollVoteSet) models.Document {
	out := doc.Clone()
	for i := range out.Entries {
		media := out.Entries[i].Media
		for j := range media {
			if media[j].ID != v.MediaID || media[j].Poll == nil {
				continue
			}
			p := media[j].Poll
			if len(v.OptionIDs) == 0 {
				delete(p.Votes, v.UserID)
				return out
			}
			if p.Votes == nil {
				p.Votes = make(map[string][]string)
			}
			p.Votes[v.UserID] = append([]string(nil), v.OptionIDs...)
			return out
		}
	}
	return out
}

// applyUserUpdate merges partial fields into the account matching the
// nickname case-insensitively; an unknown nickname appends a new account
// (registration). Nil fields stay untouched.
func applyUserUpdate(doc models.Document, v models.UserUpdate) models.Document {
	out := doc.Clone()
	nickname := auth.NormalizeNickname(v.Nickname)
	if nickname == "" {
		return out
	}
	u := out.UserByNickname(nickname)
	if u == nil {
		out.Users = append(out.Users, models.UserAccount{Nickname: nickname})
		u = &out.Users[len(out.Users)-1]
	}
	if v.Phone != nil {
		u.Phone = *v.Phone
	}
	if v.Password != nil {
		u.Password = *v.Password
	}
	if v.IsVerified != nil {
		u.IsVerified = *v.IsVerified
	}
	if v.Avatar != nil {
		u.Avatar = *v.Avatar
	}
	if v.Cover != nil {
		u.Cover = *v.Cover
	}
	if v.XPOffset != nil {
		u.XPOffset = *v.XPOffset
	}
	if v.PointsOffset != nil {
		u.PointsOffset = *v.PointsOffset
	}
	if v.MaxRegularPoints != nil {
		u.MaxRegularPoints = *v.MaxRegularPoints
	}
	if v.MaxBonusPoints != nil {
		u.MaxBonusPoints = *v.MaxBonusPoints
	}
	return out
}
