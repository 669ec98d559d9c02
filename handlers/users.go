package handlers

import (
	"errors"
	"net/http"

	"github.com/pizzanight/server/auth"
	"github.com/pizzanight/server/cliparse"
	"github.com/pizzanight/server/middleware"
	"github.com/pizzanight/server/models"
	"github.com/pizzanight/server/session"
)

type UsersHandler struct {
	sess *session.Session
	cfg  cliparse.Config
}

func NewUsersHandler(sess *session.Session, cfg cliparse.Config) *UsersHandler {
	return &UsersHandler{sess: sess, cfg: cfg}
}

type registerRequest struct {
	Nickname string `json:"nickname"`
	PIN      string `json:"pin"`
	Phone    string `json:"phone,omitempty"`
}

// Register handles POST /users
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	nickname := auth.NormalizeNickname(req.Nickname)
	if err := auth.ValidateNickname(nickname); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := auth.ValidatePIN(req.PIN); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	doc := h.sess.Document()
	if doc.UserByNickname(nickname) != nil {
		middleware.ErrorResponse(w, http.StatusConflict, "nickname already taken")
		return
	}

	update := models.UserUpdate{Nickname: nickname, Password: &req.PIN}
	if req.Phone != "" {
		update.Phone = &req.Phone
	}
	h.sess.UpdateUser(r.Context(), update)

	middleware.JSONResponse(w, http.StatusCreated, map[string]string{"nickname": nickname})
}

type loginRequest struct {
	Nickname string `json:"nickname"`
	PIN      string `json:"pin"`
}

// Login handles POST /users/login
func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	nickname := auth.NormalizeNickname(req.Nickname)
	doc := h.sess.Document()
	u := doc.UserByNickname(nickname)
	if u == nil || u.Password != req.PIN {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "unknown nickname or wrong PIN")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, u)
}

// Update handles PUT /users/{nickname}
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UserUpdate
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Nickname = auth.NormalizeNickname(r.PathValue("nickname"))

	if req.Password != nil {
		if err := auth.ValidatePIN(*req.Password); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	h.sess.UpdateUser(r.Context(), req)
	middleware.JSONResponse(w, http.StatusOK, req)
}

type statsRequest struct {
	OwnerMap map[string]string `json:"ownerMap"`
}

// Stats handles POST /users/{nickname}/xp
//
// The body carries the entry ownership map; ownership is presentation
// state the client assembles, not something the shared document tracks.
func (h *UsersHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var req statsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	stats, err := h.sess.Stats(auth.NormalizeNickname(r.PathValue("nickname")), req.OwnerMap)
	if err != nil {
		if errors.Is(err, session.ErrUnknownUser) {
			middleware.ErrorResponse(w, http.StatusNotFound, "user not found")
			return
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to derive stats")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, stats)
}

type notifyRequest struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// Notify handles POST /notifications
func (h *UsersHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Message == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "message is required")
		return
	}

	h.sess.Notify(r.Context(), models.AppNotification{From: req.From, Message: req.Message})
	middleware.JSONResponse(w, http.StatusAccepted, map[string]string{"message": "sent"})
}
