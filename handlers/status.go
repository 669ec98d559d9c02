package handlers

import (
	"net/http"

	"github.com/pizzanight/server/cliparse"
	"github.com/pizzanight/server/middleware"
	"github.com/pizzanight/server/session"
)

type StatusHandler struct {
	sess *session.Session
	cfg  cliparse.Config
}

func NewStatusHandler(sess *session.Session, cfg cliparse.Config) *StatusHandler {
	return &StatusHandler{sess: sess, cfg: cfg}
}

// Health handles GET /health
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	PeerCount int  `json:"peerCount"`
	Syncing   bool `json:"syncing"`
	Online    bool `json:"online"`

	MirrorConfigured  bool `json:"mirrorConfigured"`
	StateTableMissing bool `json:"stateTableMissing,omitempty"`
	UsersTableMissing bool `json:"usersTableMissing,omitempty"`
}

// Status handles GET /status
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		PeerCount: h.sess.PeerCount(),
		Syncing:   h.sess.Syncing(),
		Online:    h.sess.Online(),
	}
	if mirror, ok := h.sess.MirrorStatus(); ok {
		resp.MirrorConfigured = true
		resp.StateTableMissing = mirror.StateTableMissing
		resp.UsersTableMissing = mirror.UsersTableMissing
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// ForceSync handles POST /sync
func (h *StatusHandler) ForceSync(w http.ResponseWriter, r *http.Request) {
	h.sess.ForceManualSync(r.Context())
	middleware.JSONResponse(w, http.StatusAccepted, map[string]string{"message": "sync requested"})
}

type setOnlineRequest struct {
	Online bool `json:"online"`
}

// SetOnline handles PUT /online
func (h *StatusHandler) SetOnline(w http.ResponseWriter, r *http.Request) {
	var req setOnlineRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	h.sess.SetOnline(r.Context(), req.Online)
	middleware.JSONResponse(w, http.StatusOK, map[string]bool{"online": req.Online})
}
