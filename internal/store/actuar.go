package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/magolabs/aimaster/internal/model"
)

type ActuarStore struct {
	db *sql.DB
}

func NewActuarStore(db *sql.DB) *ActuarStore {
	return &ActuarStore{db: db}
}

func scanActuar(scanner interface{ Scan(...any) error }) (*model.Actuar, error) {
	var a model.Actuar
	err := scanner.Scan(&a.ID, &a.UserID, &a.Username, &a.Text, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const actuarCols = `a.id, a.user_id, u.email, a.text, a.updated_at`

// Upsert overwrites the user's broadcast text. The row is created on the
// first post; later posts replace text and bump updated_at.
func (s *ActuarStore) Upsert(userID int64, text string) (*model.Actuar, error) {
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO actuar (user_id, text, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET text = excluded.text, updated_at = excluded.updated_at`,
		userID, text, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert actuar: %w", err)
	}
	return s.GetByUserID(userID)
}

func (s *ActuarStore) GetByUserID(userID int64) (*model.Actuar, error) {
	row := s.db.QueryRow(
		`SELECT `+actuarCols+` FROM actuar a JOIN users u ON u.id = a.user_id WHERE a.user_id = ?`,
		userID,
	)
	a, err := scanActuar(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get actuar: %w", err)
	}
	return a, nil
}

// GetByUsername is the public lookup path; username is the user's email.
func (s *ActuarStore) GetByUsername(username string) (*model.Actuar, error) {
	row := s.db.QueryRow(
		`SELECT `+actuarCols+` FROM actuar a JOIN users u ON u.id = a.user_id WHERE u.email = ?`,
		username,
	)
	a, err := scanActuar(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get actuar by username: %w", err)
	}
	return a, nil
}
