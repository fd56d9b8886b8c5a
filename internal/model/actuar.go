package model

import "time"

// Actuar is a user's public broadcast text. One row per user, overwritten
// on every post.
type Actuar struct {
	ID        int64     `json:"-"`
	UserID    int64     `json:"-"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	UpdatedAt time.Time `json:"updated_at"`
}
