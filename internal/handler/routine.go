package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/magolabs/aimaster/internal/auth"
	"github.com/magolabs/aimaster/internal/model"
	"github.com/magolabs/aimaster/internal/store"
	"github.com/magolabs/aimaster/internal/websocket"
)

type RoutineHandler struct {
	routineStore *store.RoutineStore
	deckStore    *store.DeckStore
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewRoutineHandler(rs *store.RoutineStore, ds *store.DeckStore, hub *websocket.Hub, logger *slog.Logger) *RoutineHandler {
	return &RoutineHandler{routineStore: rs, deckStore: ds, hub: hub, logger: logger}
}

func (h *RoutineHandler) broadcast(action string, id int64) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("routine", action, id))
	}
}

type routineRequest struct {
	Name *string `json:"name"`
	// Raw fields where an absent key and an explicit null mean
	// different things
	Stack     json.RawMessage `json:"stack"`
	DeckName  json.RawMessage `json:"deck_name"`
	DeckID    json.RawMessage `json:"deck_id"`
	Nodes     json.RawMessage `json:"nodes"`
	DeckOrder json.RawMessage `json:"deck_order"`
}

// stackAlias returns the deck-name alias: "stack" wins over "deck_name",
// with a null stack falling through to the alias.
func (req *routineRequest) stackAlias() (*string, error) {
	s, err := parseOptionalString(req.Stack)
	if err != nil || s != nil {
		return s, err
	}
	return parseOptionalString(req.DeckName)
}

func (h *RoutineHandler) List(w http.ResponseWriter, r *http.Request) {
	routines, err := h.routineStore.ListByOwner(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list routines", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list routines"})
		return
	}
	if routines == nil {
		routines = []model.Routine{}
	}
	writeJSON(w, http.StatusOK, routines)
}

func (h *RoutineHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.UserID(r.Context())

	var req routineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	name := firstNonEmpty(req.Name)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}

	nodes, err := parseNodeList(jsonValue(req.Nodes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nodes must be a list"})
		return
	}

	deckOrder, ok := h.parseDeckOrder(w, req.DeckOrder)
	if !ok {
		return
	}

	deckID, err := parseOptionalID(req.DeckID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "deck_id must be a number"})
		return
	}

	stack, err := req.stackAlias()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "stack must be a string"})
		return
	}
	if deckID != nil {
		// Referenced deck must belong to the caller; a foreign deck is
		// indistinguishable from a missing one
		if !h.requireOwnedDeck(w, *deckID, ownerID) {
			return
		}
	} else if stack != nil {
		deck, err := h.deckStore.GetByName(ownerID, *stack)
		if err != nil {
			h.logger.Error("resolve deck by name", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create routine"})
			return
		}
		if deck != nil {
			deckID = &deck.ID
		}
	}

	routine, err := h.routineStore.Create(ownerID, name, stack, deckID, nodes, deckOrder)
	if err != nil {
		h.logger.Error("create routine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create routine"})
		return
	}

	h.broadcast("created", routine.ID)

	writeJSON(w, http.StatusCreated, routine)
}

func (h *RoutineHandler) Get(w http.ResponseWriter, r *http.Request) {
	routine, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

func (h *RoutineHandler) Update(w http.ResponseWriter, r *http.Request) {
	routine, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req routineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	// An empty body is a no-op; an explicit null clears nullable fields
	name := routine.Name
	if req.Name != nil {
		name = *req.Name
	}
	stack := routine.Stack
	if len(req.Stack) > 0 {
		parsed, err := parseOptionalString(req.Stack)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "stack must be a string"})
			return
		}
		stack = parsed
	}

	nodes := routine.Nodes
	if len(req.Nodes) > 0 {
		parsed, err := parseNodeList(jsonValue(req.Nodes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nodes must be a list"})
			return
		}
		nodes = parsed
	}

	deckOrder := routine.DeckOrder
	if len(req.DeckOrder) > 0 {
		parsed, ok := h.parseDeckOrder(w, req.DeckOrder)
		if !ok {
			return
		}
		deckOrder = parsed
	}

	deckID := routine.DeckID
	if len(req.DeckID) > 0 {
		parsed, err := parseOptionalID(req.DeckID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "deck_id must be a number"})
			return
		}
		if parsed != nil && !h.requireOwnedDeck(w, *parsed, routine.OwnerID) {
			return
		}
		deckID = parsed
	}

	updated, err := h.routineStore.Update(routine.ID, routine.OwnerID, name, stack, deckID, nodes, deckOrder)
	if err != nil {
		h.logger.Error("update routine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update routine"})
		return
	}

	h.broadcast("updated", routine.ID)

	writeJSON(w, http.StatusOK, updated)
}

func (h *RoutineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	deleted, err := h.routineStore.Delete(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("delete routine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete routine"})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	h.broadcast("deleted", id)

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *RoutineHandler) lookup(w http.ResponseWriter, r *http.Request) (*model.Routine, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, false
	}

	routine, err := h.routineStore.GetByID(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get routine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get routine"})
		return nil, false
	}
	if routine == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return nil, false
	}
	return routine, true
}

// requireOwnedDeck writes the conflated 404 and returns false when the
// deck does not exist or belongs to another user.
func (h *RoutineHandler) requireOwnedDeck(w http.ResponseWriter, deckID, ownerID int64) bool {
	deck, err := h.deckStore.GetByID(deckID, ownerID)
	if err != nil {
		h.logger.Error("check deck ownership", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return false
	}
	if deck == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "deck not found or unauthorized"})
		return false
	}
	return true
}

// parseDeckOrder accepts a JSON array or an explicit null (which clears
// the order). ok is false when the error response was already written.
func (h *RoutineHandler) parseDeckOrder(w http.ResponseWriter, raw json.RawMessage) (*model.NodeList, bool) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, true
	}
	order, err := parseNodeList(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "deck_order must be a list"})
		return nil, false
	}
	return &order, true
}

// parseOptionalID decodes deck_id, mapping null and 0 to nil.
func parseOptionalID(raw json.RawMessage) (*int64, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, nil
	}
	return &id, nil
}
