package handlers

import (
	"net/http"
	"time"

	"github.com/pizzanight/server/auth"
	"github.com/pizzanight/server/cliparse"
	"github.com/pizzanight/server/middleware"
	"github.com/pizzanight/server/models"
	"github.com/pizzanight/server/session"
)

type SocialHandler struct {
	sess *session.Session
	cfg  cliparse.Config
}

func NewSocialHandler(sess *session.Session, cfg cliparse.Config) *SocialHandler {
	return &SocialHandler{sess: sess, cfg: cfg}
}

// AddMedia handles POST /entries/{id}/media
func (h *SocialHandler) AddMedia(w http.ResponseWriter, r *http.Request) {
	var req models.MediaAdd
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.EntryID = r.PathValue("id")

	if req.Item.ID == "" {
		req.Item.ID = auth.MustToken(10)
	}
	if req.Item.Date.IsZero() {
		req.Item.Date = time.Now()
	}

	if err := h.sess.AddMedia(r.Context(), req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, req.Item)
}

// UpdateMedia handles PUT /media/{mediaId}
func (h *SocialHandler) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	var req models.MediaUpdate
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.MediaID = r.PathValue("mediaId")

	if req.EntryID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "entryId is required")
		return
	}

	h.sess.UpdateMedia(r.Context(), req)
	middleware.JSONResponse(w, http.StatusOK, req)
}

// DeleteMedia handles DELETE /media/{mediaId}
func (h *SocialHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	var req models.MediaDelete
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.MediaID = r.PathValue("mediaId")

	if req.EntryID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "entryId is required")
		return
	}

	h.sess.DeleteMedia(r.Context(), req)
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"deleted": req.MediaID})
}

// AddComment handles POST /media/{mediaId}/comments
func (h *SocialHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req models.CommentAdd
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.MediaID = r.PathValue("mediaId")

	if req.Comment.User == "" || req.Comment.Text == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user and text are required")
		return
	}
	if req.Comment.ID == "" {
		req.Comment.ID = auth.MustToken(10)
	}
	if req.Comment.Date.IsZero() {
		req.Comment.Date = time.Now()
	}

	h.sess.AddComment(r.Context(), req)
	middleware.JSONResponse(w, http.StatusCreated, req.Comment)
}

// EditComment handles PUT /media/{mediaId}/comments/{commentId}
func (h *SocialHandler) EditComment(w http.ResponseWriter, r *http.Request) {
	var req models.CommentEdit
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.MediaID = r.PathValue("mediaId")
	req.CommentID = r.PathValue("commentId")

	h.sess.EditComment(r.Context(), req)
	middleware.JSONResponse(w, http.StatusOK, req)
}

// DeleteComment handles DELETE /media/{mediaId}/comments/{commentId}
func (h *SocialHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	req := models.CommentDelete{
		MediaID:   r.PathValue("mediaId"),
		CommentID: r.PathValue("commentId"),
	}
	h.sess.DeleteComment(r.Context(), req)
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"deleted": req.CommentID})
}

// SetReaction handles PUT /media/{mediaId}/reactions
func (h *SocialHandler) SetReaction(w http.ResponseWriter, r *http.Request) {
	var req models.ReactionSet
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.MediaID = r.PathValue("mediaId")

	if req.UserID == "" || req.Emoji == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId and emoji are required")
		return
	}

	h.sess.SetReaction(r.Context(), req)
	middleware.JSONResponse(w, http.StatusOK, req)
}

// SetCommentReaction handles PUT /media/{mediaId}/comments/{commentId}/reactions
func (h *SocialHandler) SetCommentReaction(w http.ResponseWriter, r *http.Request) {
	var req models.CommentReactionSet
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.MediaID = r.PathValue("mediaId")
	req.CommentID = r.PathValue("commentId")

	if req.UserID == "" || req.Emoji == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId and emoji are required")
		return
	}

	h.sess.SetCommentReaction(r.Context(), req)
	middleware.JSONResponse(w, http.StatusOK, req)
}

// AddReply handles POST /media/{mediaId}/comments/{commentId}/replies
func (h *SocialHandler) AddReply(w http.ResponseWriter, r *http.Request) {
	var req models.ReplyAdd
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.MediaID = r.PathValue("mediaId")
	req.CommentID = r.PathValue("commentId")

	if req.Reply.User == "" || req.Reply.Text == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user and text are required")
		return
	}
	if req.Reply.ID == "" {
		req.Reply.ID = auth.MustToken(10)
	}
	if req.Reply.Date.IsZero() {
		req.Reply.Date = time.Now()
	}

	h.sess.AddReply(r.Context(), req)
	middleware.JSONResponse(w, http.StatusCreated, req.Reply)
}

// EditReply handles PUT /media/{mediaId}/comments/{commentId}/replies/{replyId}
func (h *SocialHandler) EditReply(w http.ResponseWriter, r *http.Request) {
	var req models.ReplyEdit
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.MediaID = r.PathValue("mediaId")
	req.CommentID = r.PathValue("commentId")
	req.ReplyID = r.PathValue("replyId")

	h.sess.EditReply(r.Context(), req)
	middleware.JSONResponse(w, http.StatusOK, req)
}

// DeleteReply handles DELETE /media/{mediaId}/comments/{commentId}/replies/{replyId}
func (h *SocialHandler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	req := models.ReplyDelete{
		MediaID:   r.PathValue("mediaId"),
		CommentID: r.PathValue("commentId"),
		ReplyID:   r.PathValue("replyId"),
	}
	h.sess.DeleteReply(r.Context(), req)
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"deleted": req.ReplyID})
}

// SetReplyReaction handles PUT /media/{mediaId}/comments/{commentId}/replies/{replyId}/reactions
func (h *SocialHandler) SetReplyReaction(w http.ResponseWriter, r *http.Request) {
	var req models.ReplyReactionSet
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.MediaID = r.PathValue("mediaId")
	req.CommentID = r.PathValue("commentId")
	req.ReplyID = r.PathValue("replyId")

	if req.UserID == "" || req.Emoji == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId and emoji are required")
		return
	}

	h.sess.SetReplyReaction(r.Context(), req)
	middleware.JSONResponse(w, http.StatusOK, req)
}

// SetPollVote handles PUT /media/{mediaId}/poll-votes
func (h *SocialHandler) SetPollVote(w http.ResponseWriter, r *http.Request) {
	var req models.PollVoteSet
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.MediaID = r.PathValue("mediaId")

	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId is required")
		return
	}

	h.sess.SetPollVote(r.Context(), req)
	middleware.JSONResponse(w, http.StatusOK, req)
}
