package handlers

import (
	"errors"
	"net/http"

	"github.com/pizzanight/server/cliparse"
	"github.com/pizzanight/server/middleware"
	"github.com/pizzanight/server/models"
	"github.com/pizzanight/server/session"
)

type EntriesHandler struct {
	sess *session.Session
	cfg  cliparse.Config
}

func NewEntriesHandler(sess *session.Session, cfg cliparse.Config) *EntriesHandler {
	return &EntriesHandler{sess: sess, cfg: cfg}
}

// GetDocument handles GET /document
func (h *EntriesHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.sess.Document())
}

// AddEntry handles POST /entries
func (h *EntriesHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req models.AddEntry
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Entry.ID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "entry id is required")
		return
	}

	if err := h.sess.AddEntry(r.Context(), req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, req.Entry)
}

// DeleteEntry handles DELETE /entries/{id}
func (h *EntriesHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "entry id is required")
		return
	}

	h.sess.DeleteEntry(r.Context(), models.DeleteEntry{EntryID: id})
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"deleted": id})
}

// SetVote handles PUT /entries/{id}/votes
func (h *EntriesHandler) SetVote(w http.ResponseWriter, r *http.Request) {
	var req models.VoteSet
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.EntryID = r.PathValue("id")

	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId is required")
		return
	}
	if req.Category != models.CategorySavory && req.Category != models.CategorySweet {
		middleware.ErrorResponse(w, http.StatusBadRequest, "category must be savory or sweet")
		return
	}
	if req.Field != models.FieldAppearance && req.Field != models.FieldTaste {
		middleware.ErrorResponse(w, http.StatusBadRequest, "field must be appearance or taste")
		return
	}

	h.sess.SetVote(r.Context(), req)
	middleware.JSONResponse(w, http.StatusOK, req)
}

// ConfirmVote handles PUT /entries/{id}/confirm
func (h *EntriesHandler) ConfirmVote(w http.ResponseWriter, r *http.Request) {
	var req models.VoteConfirm
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.EntryID = r.PathValue("id")

	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId is required")
		return
	}

	if err := h.sess.ConfirmVote(r.Context(), req); err != nil {
		if errors.Is(err, session.ErrNoVotes) {
			middleware.ErrorResponse(w, http.StatusConflict, "cannot confirm without both scores on record")
			return
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to confirm vote")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, req)
}

// SetGlobalNote handles PUT /entries/{id}/notes
func (h *EntriesHandler) SetGlobalNote(w http.ResponseWriter, r *http.Request) {
	var req models.GlobalNoteSet
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.EntryID = r.PathValue("id")

	h.sess.SetGlobalNote(r.Context(), req)
	middleware.JSONResponse(w, http.StatusOK, req)
}

// SetDate handles PUT /entries/{id}/date
func (h *EntriesHandler) SetDate(w http.ResponseWriter, r *http.Request) {
	var req models.DateSet
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.EntryID = r.PathValue("id")

	h.sess.SetDate(r.Context(), req)
	middleware.JSONResponse(w, http.StatusOK, req)
}
