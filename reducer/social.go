package reducer

import (
	"github.com/pizzanight/server/models"
)

// applyCommentAdd appends to the media item's thread, deduplicating by
// comment id: the transport is at-least-once and a duplicate delivery
// must not create a visible duplicate comment.
func applyCommentAdd(doc models.Document, v models.CommentAdd) models.Document {
	out := doc.Clone()
	if v.Comment.ID == "" {
		return out
	}
	if out.Social.Comments == nil {
		out.Social.Comments = make(map[string][]models.Comment)
	}
	list := out.Social.Comments[v.MediaID]
	for i := range list {
		if list[i].ID == v.Comment.ID {
			return out
		}
	}
	out.Social.Comments[v.MediaID] = append(list, v.Comment)
	return out
}

func applyCommentEdit(doc models.Document, v models.CommentEdit) models.Document {
	out := doc.Clone()
	list := out.Social.Comments[v.MediaID]
	for i := range list {
		if list[i].ID == v.CommentID {
			list[i].Text = v.Text
			break
		}
	}
	return out
}

func applyCommentDelete(doc models.Document, v models.CommentDelete) models.Document {
	out := doc.Clone()
	list := out.Social.Comments[v.MediaID]
	for i := range list {
		if list[i].ID == v.CommentID {
			out.Social.Comments[v.MediaID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return out
}

// applyReactionSet toggles the user's single reaction slot on a media
// item: setting the emoji that is already stored clears it, anything else
// overwrites it.
func applyReactionSet(doc models.Document, v models.ReactionSet) models.Document {
	out := doc.Clone()
	if out.Social.Likes == nil {
		out.Social.Likes = make(map[string]map[string]string)
	}
	byUser := out.Social.Likes[v.MediaID]
	if byUser == nil {
		byUser = make(map[string]string)
		out.Social.Likes[v.MediaID] = byUser
	}
	toggleReaction(byUser, v.UserID, v.Emoji)
	if len(byUser) == 0 {
		delete(out.Social.Likes, v.MediaID)
	}
	return out
}

func applyCommentReactionSet(doc models.Document, v models.CommentReactionSet) models.Document {
	out := doc.Clone()
	list := out.Social.Comments[v.MediaID]
	for i := range list {
		if list[i].ID == v.CommentID {
			if list[i].Reactions == nil {
				list[i].Reactions = make(map[string]string)
			}
			toggleReaction(list[i].Reactions, v.UserID, v.Emoji)
			break
		}
	}
	return out
}

func applyReplyAdd(doc models.Document, v models.ReplyAdd) models.Document {
	out := doc.Clone()
	if v.Reply.ID == "" {
		return out
	}
	list := out.Social.Comments[v.MediaID]
	for i := range list {
		if list[i].ID != v.CommentID {
			continue
		}
		for j := range list[i].Replies {
			if list[i].Replies[j].ID == v.Reply.ID {
				return out
			}
		}
		list[i].Replies = append(list[i].Replies, v.Reply)
		break
	}
	return out
}

func applyReplyEdit(doc models.Document, v models.ReplyEdit) models.Document {
	out := doc.Clone()
	if r := findReply(out, v.MediaID, v.CommentID, v.ReplyID); r != nil {
		r.Text = v.Text
	}
	return out
}

func applyReplyDelete(doc models.Document, v models.ReplyDelete) models.Document {
	out := doc.Clone()
	list := out.Social.Comments[v.MediaID]
	for i := range list {
		if list[i].ID != v.CommentID {
			continue
		}
		for j := range list[i].Replies {
			if list[i].Replies[j].ID == v.ReplyID {
				list[i].Replies = append(list[i].Replies[:j], list[i].Replies[j+1:]...)
				break
			}
		}
		break
	}
	return out
}

func applyReplyReactionSet(doc models.Document, v models.ReplyReactionSet) models.Document {
	out := doc.Clone()
	if r := findReply(out, v.MediaID, v.CommentID, v.ReplyID); r != nil {
		if r.Reactions == nil {
			r.Reactions = make(map[string]string)
		}
		toggleReaction(r.Reactions, v.UserID, v.Emoji)
	}
	return out
}

func findReply(doc models.Document, mediaID, commentID, replyID string) *models.Reply {
	list := doc.Social.Comments[mediaID]
	for i := range list {
		if list[i].ID != commentID {
			continue
		}
		for j := range list[i].Replies {
			if list[i].Replies[j].ID == replyID {
				return &list[i].Replies[j]
			}
		}
		return nil
	}
	return nil
}

func toggleReaction(m map[string]string, userID, emoji string) {
	if m[userID] == emoji {
		delete(m, userID)
		return
	}
	m[userID] = emoji
}
