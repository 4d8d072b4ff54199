// Package tokenstore is the process-wide mapping of player id to session
// token, shared by the reliable and unreliable channels. It is a pure
// mapping: it owns no other references and never expires entries on its
// own — callers decide when a token is revoked.
package tokenstore

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// Store is a mutex-guarded map[uint32]string, safe for concurrent use from
// both the session layer and the datagram layer.
type Store struct {
	mu     sync.RWMutex
	tokens map[uint32]string
}

// New creates an empty token store.
func New() *Store {
	return &Store{tokens: make(map[uint32]string)}
}

// Mint generates a fresh 128-bit hex token by hashing a random seed
// together with playerID. It does not register the token; callers pass
// it to Register.
func Mint(playerID uint32) (string, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return "", fmt.Errorf("tokenstore: reading random seed: %w", err)
	}

	h, err := blake2b.New(16, nil)
	if err != nil {
		return "", fmt.Errorf("tokenstore: creating hash: %w", err)
	}
	h.Write(seed[:])
	var idBuf [4]byte
	binary.BigEndian.PutUint32(idBuf[:], playerID)
	h.Write(idBuf[:])

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Register stores token for playerID, overwriting any prior value.
func (s *Store) Register(playerID uint32, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[playerID] = token
}

// Verify reports whether token matches the currently registered token for
// playerID. Constant-time comparison is not required by spec.
func (s *Store) Verify(playerID uint32, token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	got, ok := s.tokens[playerID]
	return ok && got == token
}

// Revoke removes the token for playerID. Safe to call when absent.
func (s *Store) Revoke(playerID uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, playerID)
}

// Lookup returns the currently registered token, if any.
func (s *Store) Lookup(playerID uint32) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[playerID]
	return t, ok
}
