package memory

import (
	"sync"
	"time"
)

type tokenRecord struct {
	email     string
	expiresAt time.Time
}

// tokenStore maps hashed opaque tokens to their owner. It backs both access
// sessions and refresh identifiers. Expiry is the caller's concern; the store
// only removes entries on explicit delete.
type tokenStore struct {
	mu    sync.Mutex
	items map[string]tokenRecord
}

func newTokenStore() *tokenStore {
	return &tokenStore{items: make(map[string]tokenRecord)}
}

func (s *tokenStore) put(tokenHash, email string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[tokenHash] = tokenRecord{email: email, expiresAt: expiresAt}
}

func (s *tokenStore) get(tokenHash string) (tokenRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.items[tokenHash]
	return rec, ok
}

func (s *tokenStore) delete(tokenHash string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, tokenHash)
}
