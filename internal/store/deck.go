package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/magolabs/aimaster/internal/model"
)

type DeckStore struct {
	db *sql.DB
}

func NewDeckStore(db *sql.DB) *DeckStore {
	return &DeckStore{db: db}
}

const deckCols = `id, name, description, owner_id, nodes, created_at`

func scanDeck(scanner interface{ Scan(...any) error }) (*model.Deck, error) {
	var d model.Deck
	var description sql.NullString
	var nodes string
	err := scanner.Scan(&d.ID, &d.Name, &description, &d.OwnerID, &nodes, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		d.Description = &description.String
	}
	d.Nodes, err = decodeNodes(nodes)
	if err != nil {
		return nil, fmt.Errorf("decode deck nodes: %w", err)
	}
	return &d, nil
}

// encodeNodes serializes a node list for storage, normalizing nil to the
// empty array so responses never carry a null node list.
func encodeNodes(nodes model.NodeList) (string, error) {
	if nodes == nil {
		nodes = model.NodeList{}
	}
	data, err := json.Marshal(nodes)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeNodes(raw string) (model.NodeList, error) {
	if raw == "" {
		return model.NodeList{}, nil
	}
	var nodes model.NodeList
	if err := json.Unmarshal([]byte(raw), &nodes); err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = model.NodeList{}
	}
	return nodes, nil
}

// Create inserts a deck for the given owner. A nil nodes list becomes an
// empty list.
func (s *DeckStore) Create(ownerID int64, name string, description *string, nodes model.NodeList) (*model.Deck, error) {
	encoded, err := encodeNodes(nodes)
	if err != nil {
		return nil, fmt.Errorf("encode deck nodes: %w", err)
	}
	result, err := s.db.Exec(
		`INSERT INTO decks (name, description, owner_id, nodes) VALUES (?, ?, ?, ?)`,
		name, description, ownerID, encoded,
	)
	if err != nil {
		return nil, fmt.Errorf("insert deck: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, ownerID)
}

// GetByID returns the deck only if it belongs to ownerID. Rows owned by
// other users are reported as absent, the same as nonexistent ids.
func (s *DeckStore) GetByID(id, ownerID int64) (*model.Deck, error) {
	row := s.db.QueryRow(
		`SELECT `+deckCols+` FROM decks WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	d, err := scanDeck(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get deck: %w", err)
	}
	return d, nil
}

// GetByName returns the owner's first deck with the given name, or nil.
func (s *DeckStore) GetByName(ownerID int64, name string) (*model.Deck, error) {
	row := s.db.QueryRow(
		`SELECT `+deckCols+` FROM decks WHERE name = ? AND owner_id = ? ORDER BY id LIMIT 1`,
		name, ownerID,
	)
	d, err := scanDeck(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get deck by name: %w", err)
	}
	return d, nil
}

func (s *DeckStore) ListByOwner(ownerID int64) ([]model.Deck, error) {
	rows, err := s.db.Query(
		`SELECT `+deckCols+` FROM decks WHERE owner_id = ? ORDER BY id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	defer rows.Close()

	var decks []model.Deck
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deck: %w", err)
		}
		decks = append(decks, *d)
	}
	return decks, rows.Err()
}

// Update writes the full field set; handlers merge partial requests into
// the existing row before calling it.
func (s *DeckStore) Update(id, ownerID int64, name string, description *string, nodes model.NodeList) (*model.Deck, error) {
	encoded, err := encodeNodes(nodes)
	if err != nil {
		return nil, fmt.Errorf("encode deck nodes: %w", err)
	}
	_, err = s.db.Exec(
		`UPDATE decks SET name = ?, description = ?, nodes = ? WHERE id = ? AND owner_id = ?`,
		name, description, encoded, id, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("update deck: %w", err)
	}
	return s.GetByID(id, ownerID)
}

// Delete removes the deck if owned by ownerID and reports whether a row
// was deleted.
func (s *DeckStore) Delete(id, ownerID int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM decks WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete deck: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
