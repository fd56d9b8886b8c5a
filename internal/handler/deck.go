package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/magolabs/aimaster/internal/auth"
	"github.com/magolabs/aimaster/internal/model"
	"github.com/magolabs/aimaster/internal/store"
	"github.com/magolabs/aimaster/internal/websocket"
)

type DeckHandler struct {
	deckStore *store.DeckStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewDeckHandler(ds *store.DeckStore, hub *websocket.Hub, logger *slog.Logger) *DeckHandler {
	return &DeckHandler{deckStore: ds, hub: hub, logger: logger}
}

func (h *DeckHandler) broadcast(action string, id int64) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("deck", action, id))
	}
}

// deckRequest uses raw JSON for node fields so handlers can tell an
// absent field from an explicit null.
type deckRequest struct {
	Name        *string         `json:"name"`
	Stack       *string         `json:"stack"`
	Description json.RawMessage `json:"description"`
	Nodes       json.RawMessage `json:"nodes"`
	Order       json.RawMessage `json:"order"`
}

// deckWithOrder echoes the nodes back under "order" when the client sent
// a card order rather than a node list.
type deckWithOrder struct {
	model.Deck
	Order model.NodeList `json:"order"`
}

func (h *DeckHandler) List(w http.ResponseWriter, r *http.Request) {
	decks, err := h.deckStore.ListByOwner(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list decks", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list decks"})
		return
	}
	if decks == nil {
		decks = []model.Deck{}
	}
	writeJSON(w, http.StatusOK, decks)
}

func (h *DeckHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req deckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	name := firstNonEmpty(req.Name, req.Stack)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}

	description, err := parseOptionalString(req.Description)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "description must be a string"})
		return
	}

	// Card orders arrive under "order"; node decks under "nodes".
	// An explicit null counts as absent.
	raw := jsonValue(req.Nodes)
	usedOrder := false
	if len(raw) == 0 {
		if order := jsonValue(req.Order); len(order) > 0 {
			raw = order
			usedOrder = true
		}
	}
	nodes, err := parseNodeList(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nodes must be a list"})
		return
	}

	deck, err := h.deckStore.Create(auth.UserID(r.Context()), name, description, nodes)
	if err != nil {
		h.logger.Error("create deck", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create deck"})
		return
	}

	h.broadcast("created", deck.ID)

	if usedOrder {
		writeJSON(w, http.StatusCreated, deckWithOrder{Deck: *deck, Order: deck.Nodes})
		return
	}
	writeJSON(w, http.StatusCreated, deck)
}

func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
	deck, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (h *DeckHandler) Update(w http.ResponseWriter, r *http.Request) {
	deck, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req deckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	// Partial update: only supplied fields change. An empty body is a
	// no-op; an explicit null clears nullable fields.
	name := deck.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := deck.Description
	if len(req.Description) > 0 {
		parsed, err := parseOptionalString(req.Description)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "description must be a string"})
			return
		}
		description = parsed
	}
	nodes := deck.Nodes
	if len(req.Nodes) > 0 {
		parsed, err := parseNodeList(jsonValue(req.Nodes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nodes must be a list"})
			return
		}
		nodes = parsed
	}

	updated, err := h.deckStore.Update(deck.ID, deck.OwnerID, name, description, nodes)
	if err != nil {
		h.logger.Error("update deck", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update deck"})
		return
	}

	h.broadcast("updated", deck.ID)

	writeJSON(w, http.StatusOK, updated)
}

func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	deleted, err := h.deckStore.Delete(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("delete deck", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete deck"})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	h.broadcast("deleted", id)

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// lookup fetches the deck named in the path, owner-scoped. A deck owned
// by someone else reports the same 404 as a nonexistent id.
func (h *DeckHandler) lookup(w http.ResponseWriter, r *http.Request) (*model.Deck, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, false
	}

	deck, err := h.deckStore.GetByID(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get deck", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get deck"})
		return nil, false
	}
	if deck == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return nil, false
	}
	return deck, true
}

// parseNodeList decodes a raw JSON value into a node list. Empty input
// yields an empty list; anything other than a JSON array is an error.
func parseNodeList(raw json.RawMessage) (model.NodeList, error) {
	if len(raw) == 0 {
		return model.NodeList{}, nil
	}
	var nodes model.NodeList
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, err
	}
	if nodes == nil {
		// JSON null is not a list
		return nil, errNotAList
	}
	return nodes, nil
}

var errNotAList = jsonListError{}

type jsonListError struct{}

func (jsonListError) Error() string { return "value is not a JSON array" }

// jsonValue normalizes an explicit JSON null to an absent field.
func jsonValue(raw json.RawMessage) json.RawMessage {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return raw
}

// parseOptionalString decodes a nullable string field. Absent and null
// both yield nil.
func parseOptionalString(raw json.RawMessage) (*string, error) {
	raw = jsonValue(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return strings.TrimSpace(*v)
		}
	}
	return ""
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
