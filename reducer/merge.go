package reducer

import (
	"github.com/pizzanight/server/models"
)

// MergeFullSync reconciles the local document against a full-sync payload.
// The remote document is authoritative for every scalar field and map
// value, but append-only collections are unioned by id: entries, media
// items, comments and replies present only locally survive the merge.
// This is what lets two peers that each wrote a comment while partitioned
// end up with both comments exactly once after the full-sync exchange.
func MergeFullSync(local, remote models.Document) models.Document {
	out := remote.Clone()
	lc := local.Clone()

	// Entries: remote version wins per id, local-only entries survive,
	// and within an entry present on both sides the media lists union.
	for i := range lc.Entries {
		le := &lc.Entries[i]
		re := out.EntryByID(le.ID)
		if re == nil {
			out.Entries = append(out.Entries, *le)
			continue
		}
		re.Media = unionMedia(re.Media, le.Media)
	}

	// Comment threads: remote comment wins per id, local-only comments
	// and replies survive.
	if len(lc.Social.Comments) > 0 && out.Social.Comments == nil {
		out.Social.Comments = make(map[string][]models.Comment)
	}
	for mediaID, localList := range lc.Social.Comments {
		out.Social.Comments[mediaID] = unionComments(out.Social.Comments[mediaID], localList)
	}

	// Users: remote account wins per nickname, local-only accounts
	// survive, and high-water marks never regress.
	for i := range lc.Users {
		lu := &lc.Users[i]
		ru := out.UserByNickname(lu.Nickname)
		if ru == nil {
			out.Users = append(out.Users, *lu)
			continue
		}
		if lu.MaxRegularPoints > ru.MaxRegularPoints {
			ru.MaxRegularPoints = lu.MaxRegularPoints
		}
		if lu.MaxBonusPoints > ru.MaxBonusPoints {
			ru.MaxBonusPoints = lu.MaxBonusPoints
		}
	}

	return out
}

func unionMedia(remote, local []models.MediaItem) []models.MediaItem {
	seen := make(map[string]bool, len(remote))
	for i := range remote {
		seen[remote[i].ID] = true
	}
	for i := range local {
		if !seen[local[i].ID] {
			remote = append(remote, local[i])
		}
	}
	return remote
}

func unionComments(remote, local []models.Comment) []models.Comment {
	index := make(map[string]int, len(remote))
	for i := range remote {
		index[remote[i].ID] = i
	}
	for i := range local {
		j, ok := index[local[i].ID]
		if !ok {
			remote = append(remote, local[i])
			continue
		}
		remote[j].Replies = unionReplies(remote[j].Replies, local[i].Replies)
	}
	return remote
}

func unionReplies(remote, local []models.Reply) []models.Reply {
	seen := make(map[string]bool, len(remote))
	for i := range remote {
		seen[remote[i].ID] = true
	}
	for i := range local {
		if !seen[local[i].ID] {
			remote = append(remote, local[i])
		}
	}
	return remote
}
