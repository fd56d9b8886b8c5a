package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/magolabs/aimaster/internal/actuar"
	"github.com/magolabs/aimaster/internal/auth"
	"github.com/magolabs/aimaster/internal/store"
	"github.com/magolabs/aimaster/internal/websocket"
)

type ActuarHandler struct {
	actuarStore *store.ActuarStore
	publisher   *actuar.Publisher
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewActuarHandler(as *store.ActuarStore, pub *actuar.Publisher, hub *websocket.Hub, logger *slog.Logger) *ActuarHandler {
	return &ActuarHandler{actuarStore: as, publisher: pub, hub: hub, logger: logger}
}

type actuarRequest struct {
	Text string `json:"text"`
}

// Post overwrites the caller's broadcast text and republishes the static
// page. The database row is the source of truth; a failed page write
// leaves a stale cache but does not fail the post.
func (h *ActuarHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req actuarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	ac, _ := auth.FromContext(r.Context())

	a, err := h.actuarStore.Upsert(ac.UserID, req.Text)
	if err != nil {
		h.logger.Error("upsert actuar", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save text"})
		return
	}

	var page *actuar.Page
	page, err = h.publisher.Publish(a.Username, a.Text, a.UpdatedAt)
	if err != nil {
		h.logger.Warn("publish actuar page", "username", a.Username, "error", err)
		page = nil
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("actuar", "updated", a.UserID))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"username":   a.Username,
		"text":       a.Text,
		"updated_at": a.UpdatedAt,
		"static":     page,
	})
}

// Get is the public, unauthenticated read path.
func (h *ActuarHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	a, err := h.actuarStore.GetByUsername(username)
	if err != nil {
		h.logger.Error("get actuar", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if a == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, a)
}
