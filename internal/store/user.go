package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/magolabs/aimaster/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Credits, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, email, password_hash, credits, created_at`

// Create inserts a user with a zero credit balance.
func (s *UserStore) Create(email, passwordHash string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (email, password_hash) VALUES (?, ?)`,
		email, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// AddCredits atomically adds the given amount to the user's balance and
// returns the new total. Amount validation happens at the handler.
func (s *UserStore) AddCredits(id, amount int64) (int64, error) {
	_, err := s.db.Exec(`UPDATE users SET credits = credits + ? WHERE id = ?`, amount, id)
	if err != nil {
		return 0, fmt.Errorf("add credits: %w", err)
	}
	return s.GetCredits(id)
}

func (s *UserStore) GetCredits(id int64) (int64, error) {
	var credits int64
	err := s.db.QueryRow(`SELECT credits FROM users WHERE id = ?`, id).Scan(&credits)
	if err != nil {
		return 0, fmt.Errorf("get credits: %w", err)
	}
	return credits, nil
}

// IsUniqueViolation reports whether err is the SQLite unique-constraint
// failure, used to turn duplicate registrations into client errors.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
