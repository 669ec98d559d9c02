package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pizzanight/server/cliparse"
	"github.com/pizzanight/server/localstore"
	"github.com/pizzanight/server/middleware"
	"github.com/pizzanight/server/session"
)

type AdminHandler struct {
	sess *session.Session
	cfg  cliparse.Config
}

func NewAdminHandler(sess *session.Session, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{sess: sess, cfg: cfg}
}

// authorized checks the X-Admin-PIN header. An empty configured PIN
// leaves the admin surface open, which is the single-household default.
func (h *AdminHandler) authorized(w http.ResponseWriter, r *http.Request) bool {
	if h.cfg.AdminPIN == "" {
		return true
	}
	if r.Header.Get("X-Admin-PIN") != h.cfg.AdminPIN {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid admin PIN")
		return false
	}
	return true
}

// ResetVotes handles POST /admin/reset
func (h *AdminHandler) ResetVotes(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	h.sess.ResetAllVotes(r.Context())
	slog.Info("votes reset", "remote", middleware.GetClientIP(r))
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "votes reset"})
}

// ReleaseVoting handles POST /admin/release
func (h *AdminHandler) ReleaseVoting(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	h.sess.ReleaseVoting(r.Context())
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "voting released"})
}

// ResetUserXP handles POST /admin/users/{nickname}/reset-xp
// The {nickname} segment accepts the literal ALL target.
func (h *AdminHandler) ResetUserXP(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	target := r.PathValue("nickname")
	if target == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "nickname is required")
		return
	}

	h.sess.ResetUserXP(r.Context(), target)
	slog.Info("user XP reset", "target", target)
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"reset": target})
}

type createSnapshotRequest struct {
	Name string `json:"name"`
}

// CreateSnapshot handles POST /admin/snapshots
func (h *AdminHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	var req createSnapshotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	snap, err := h.sess.CreateSnapshot(req.Name)
	if err != nil {
		slog.Error("failed to create snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create snapshot")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, snap)
}

// ListSnapshots handles GET /admin/snapshots
func (h *AdminHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	snaps, err := h.sess.ListSnapshots()
	if err != nil {
		slog.Error("failed to list snapshots", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list snapshots")
		return
	}
	if snaps == nil {
		snaps = []localstore.Snapshot{}
	}
	middleware.JSONResponse(w, http.StatusOK, snaps)
}

// DeleteSnapshot handles DELETE /admin/snapshots/{id}
func (h *AdminHandler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	id := r.PathValue("id")
	if err := h.sess.DeleteSnapshot(id); err != nil {
		if errors.Is(err, localstore.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "snapshot not found")
			return
		}
		slog.Error("failed to delete snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete snapshot")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"deleted": id})
}

// RestoreSnapshot handles POST /admin/snapshots/{id}/restore
func (h *AdminHandler) RestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	id := r.PathValue("id")
	if err := h.sess.RestoreSnapshot(r.Context(), id); err != nil {
		if errors.Is(err, localstore.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "snapshot not found")
			return
		}
		slog.Error("failed to restore snapshot", "error", err, "id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to restore snapshot")
		return
	}
	slog.Info("snapshot restored", "id", id, "remote", middleware.GetClientIP(r))
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"restored": id})
}
