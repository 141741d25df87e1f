package memory

import (
	"sync"

	"github.com/hlmsyhb/authgate/internal/auth/entity"
)

type challengeKey struct {
	purpose entity.ChallengePurpose
	email   string
}

// challengeStore holds at most one live challenge per (purpose, email).
// Saving over an existing key replaces the prior challenge outright.
type challengeStore struct {
	mu    sync.Mutex
	items map[challengeKey]entity.Challenge
}

func newChallengeStore() *challengeStore {
	return &challengeStore{items: make(map[challengeKey]entity.Challenge)}
}

func (s *challengeStore) save(ch entity.Challenge) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[challengeKey{purpose: ch.Purpose, email: ch.Email}] = ch
}

func (s *challengeStore) peek(purpose entity.ChallengePurpose, email string) (entity.Challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.items[challengeKey{purpose: purpose, email: email}]
	return ch, ok
}

func (s *challengeStore) delete(purpose entity.ChallengePurpose, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, challengeKey{purpose: purpose, email: email})
}

// consume is an atomic lookup-and-delete, so two concurrent verifies with the
// correct code produce exactly one success.
func (s *challengeStore) consume(purpose entity.ChallengePurpose, email string) (entity.Challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := challengeKey{purpose: purpose, email: email}
	ch, ok := s.items[key]
	if ok {
		delete(s.items, key)
	}
	return ch, ok
}
