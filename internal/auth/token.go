package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
)

// TokenStore holds opaque bearer tokens minted at login. Tokens are valid
// until explicitly deleted; the in-memory implementation loses them on
// restart, which is the intended lifecycle. The interface exists so a
// shared store could replace it without touching handlers.
type TokenStore interface {
	// Create mints a new token bound to the given user.
	Create(userID int64) (string, error)
	// Lookup resolves a token to its user id.
	Lookup(token string) (int64, bool)
	// Delete invalidates a token. Deleting an unknown token is a no-op.
	Delete(token string)
}

// MemoryTokenStore is a process-local TokenStore backed by a map. It is
// not shared across processes; running more than one instance behind a
// load balancer is unsupported.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]int64
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]int64)}
}

func (s *MemoryTokenStore) Create(userID int64) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	s.tokens[token] = userID
	s.mu.Unlock()
	return token, nil
}

func (s *MemoryTokenStore) Lookup(token string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.tokens[token]
	return userID, ok
}

func (s *MemoryTokenStore) Delete(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}
