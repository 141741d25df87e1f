package memory

import (
	"sync"
	"time"

	"github.com/hlmsyhb/authgate/internal/auth/entity"
)

// cooldownStore remembers when a challenge was last issued per (purpose,
// email) so resends can be throttled.
type cooldownStore struct {
	mu   sync.Mutex
	last map[challengeKey]time.Time
}

func newCooldownStore() *cooldownStore {
	return &cooldownStore{last: make(map[challengeKey]time.Time)}
}

// tryMark is an atomic check-and-set. When the previous mark is still inside
// the window it returns the remaining duration and false; otherwise it records
// now as the new mark and returns true. A missing entry means "never issued"
// and always succeeds.
func (s *cooldownStore) tryMark(purpose entity.ChallengePurpose, email string, now time.Time, window time.Duration) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := challengeKey{purpose: purpose, email: email}
	if last, ok := s.last[key]; ok {
		if remaining := window - now.Sub(last); remaining > 0 {
			return remaining, false
		}
	}

	s.last[key] = now
	return 0, true
}
