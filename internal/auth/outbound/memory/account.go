package memory

import (
	"sync"
	"time"

	"github.com/hlmsyhb/authgate/internal/auth/entity"
)

// accountStore holds accounts keyed by email. Emails are stored as given
// (case-sensitive); callers trim whitespace before reaching this layer.
type accountStore struct {
	mu      sync.Mutex
	byEmail map[string]entity.Account
}

func newAccountStore() *accountStore {
	return &accountStore{byEmail: make(map[string]entity.Account)}
}

func (s *accountStore) getByEmail(email string) (entity.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.byEmail[email]
	return acc, ok
}

// create is an atomic check-and-insert; it reports false when the email is
// already taken.
func (s *accountStore) create(acc entity.Account) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[acc.Email]; ok {
		return false
	}

	s.byEmail[acc.Email] = acc
	return true
}

func (s *accountStore) markVerified(email string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.byEmail[email]
	if !ok {
		return false
	}

	acc.Verified = true
	acc.UpdatedAt = at
	s.byEmail[email] = acc
	return true
}

func (s *accountStore) updateCredential(email, credential string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.byEmail[email]
	if !ok {
		return false
	}

	acc.Credential = credential
	acc.UpdatedAt = at
	s.byEmail[email] = acc
	return true
}
