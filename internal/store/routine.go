package store

import (
	"database/sql"
	"fmt"

	"github.com/magolabs/aimaster/internal/model"
)

type RoutineStore struct {
	db *sql.DB
}

func NewRoutineStore(db *sql.DB) *RoutineStore {
	return &RoutineStore{db: db}
}

const routineCols = `id, name, stack, deck_id, nodes, deck_order, owner_id, created_at, last_run_at`

func scanRoutine(scanner interface{ Scan(...any) error }) (*model.Routine, error) {
	var r model.Routine
	var stack sql.NullString
	var deckID sql.NullInt64
	var nodes string
	var deckOrder sql.NullString
	var lastRunAt sql.NullTime
	err := scanner.Scan(&r.ID, &r.Name, &stack, &deckID, &nodes, &deckOrder, &r.OwnerID, &r.CreatedAt, &lastRunAt)
	if err != nil {
		return nil, err
	}
	if stack.Valid {
		r.Stack = &stack.String
	}
	if deckID.Valid {
		r.DeckID = &deckID.Int64
	}
	r.Nodes, err = decodeNodes(nodes)
	if err != nil {
		return nil, fmt.Errorf("decode routine nodes: %w", err)
	}
	if deckOrder.Valid {
		order, err := decodeNodes(deckOrder.String)
		if err != nil {
			return nil, fmt.Errorf("decode deck order: %w", err)
		}
		r.DeckOrder = &order
	}
	if lastRunAt.Valid {
		r.LastRunAt = &lastRunAt.Time
	}
	return &r, nil
}

func encodeDeckOrder(order *model.NodeList) (any, error) {
	if order == nil {
		return nil, nil
	}
	encoded, err := encodeNodes(*order)
	if err != nil {
		return nil, err
	}
	return encoded, nil
}

func (s *RoutineStore) Create(ownerID int64, name string, stack *string, deckID *int64, nodes model.NodeList, deckOrder *model.NodeList) (*model.Routine, error) {
	encoded, err := encodeNodes(nodes)
	if err != nil {
		return nil, fmt.Errorf("encode routine nodes: %w", err)
	}
	order, err := encodeDeckOrder(deckOrder)
	if err != nil {
		return nil, fmt.Errorf("encode deck order: %w", err)
	}
	result, err := s.db.Exec(
		`INSERT INTO routines (name, stack, deck_id, nodes, deck_order, owner_id) VALUES (?, ?, ?, ?, ?, ?)`,
		name, stack, deckID, encoded, order, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert routine: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, ownerID)
}

// GetByID returns the routine only if it belongs to ownerID.
func (s *RoutineStore) GetByID(id, ownerID int64) (*model.Routine, error) {
	row := s.db.QueryRow(
		`SELECT `+routineCols+` FROM routines WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	r, err := scanRoutine(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get routine: %w", err)
	}
	return r, nil
}

func (s *RoutineStore) ListByOwner(ownerID int64) ([]model.Routine, error) {
	rows, err := s.db.Query(
		`SELECT `+routineCols+` FROM routines WHERE owner_id = ? ORDER BY id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	defer rows.Close()

	var routines []model.Routine
	for rows.Next() {
		r, err := scanRoutine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan routine: %w", err)
		}
		routines = append(routines, *r)
	}
	return routines, rows.Err()
}

func (s *RoutineStore) Update(id, ownerID int64, name string, stack *string, deckID *int64, nodes model.NodeList, deckOrder *model.NodeList) (*model.Routine, error) {
	encoded, err := encodeNodes(nodes)
	if err != nil {
		return nil, fmt.Errorf("encode routine nodes: %w", err)
	}
	order, err := encodeDeckOrder(deckOrder)
	if err != nil {
		return nil, fmt.Errorf("encode deck order: %w", err)
	}
	_, err = s.db.Exec(
		`UPDATE routines SET name = ?, stack = ?, deck_id = ?, nodes = ?, deck_order = ? WHERE id = ? AND owner_id = ?`,
		name, stack, deckID, encoded, order, id, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("update routine: %w", err)
	}
	return s.GetByID(id, ownerID)
}

func (s *RoutineStore) Delete(id, ownerID int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM routines WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete routine: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
