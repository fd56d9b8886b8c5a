package model

import (
	"encoding/json"
	"time"
)

// NodeList is an ordered list of opaque node definitions. The server never
// interprets individual nodes; clients own their shape.
type NodeList []json.RawMessage

// Deck is a named, ordered collection of nodes owned by a single user.
type Deck struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	OwnerID     int64     `json:"owner_id"`
	Nodes       NodeList  `json:"nodes"`
	CreatedAt   time.Time `json:"created_at"`
}
