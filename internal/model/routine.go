package model

import "time"

// Routine is a performable sequence of nodes. It may reference one of the
// owner's decks by id; Stack carries the deck name the client used.
type Routine struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Stack     *string    `json:"stack"`
	DeckID    *int64     `json:"deck_id"`
	Nodes     NodeList   `json:"nodes"`
	DeckOrder *NodeList  `json:"deck_order"`
	OwnerID   int64      `json:"owner_id"`
	CreatedAt time.Time  `json:"created_at"`
	LastRunAt *time.Time `json:"last_run_at"`
}
