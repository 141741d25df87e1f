// Package memory is the authoritative store for the auth module. Everything
// lives in process-local maps behind per-store mutexes; durability is an
// explicit non-goal.
package memory

import (
	"context"
	"time"

	"github.com/hlmsyhb/authgate/internal/auth/entity"
	"github.com/hlmsyhb/authgate/internal/pkg/goerror"
	"github.com/hlmsyhb/authgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/trace"
)

// Store bundles the account, challenge, cooldown and token stores behind the
// repository surface the usecase layer depends on.
type Store struct {
	accounts   *accountStore
	challenges *challengeStore
	cooldowns  *cooldownStore
	sessions   *tokenStore
	refreshes  *tokenStore
	ins        instrument.Instrumentation
}

func NewStore(ins instrument.Instrumentation) *Store {
	return &Store{
		accounts:   newAccountStore(),
		challenges: newChallengeStore(),
		cooldowns:  newCooldownStore(),
		sessions:   newTokenStore(),
		refreshes:  newTokenStore(),
		ins:        ins,
	}
}

func (s *Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.outbound.memory").Start(ctx, name)
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*entity.Account, error) {
	_, span := s.startSpan(ctx, "GetAccountByEmail")
	defer span.End()

	acc, ok := s.accounts.getByEmail(email)
	if !ok {
		return nil, goerror.ErrNotFound
	}

	return &acc, nil
}

func (s *Store) CreateAccount(ctx context.Context, acc entity.Account) error {
	_, span := s.startSpan(ctx, "CreateAccount")
	defer span.End()

	if !s.accounts.create(acc) {
		return goerror.ErrConflict
	}

	return nil
}

func (s *Store) MarkAccountVerified(ctx context.Context, email string, at time.Time) error {
	_, span := s.startSpan(ctx, "MarkAccountVerified")
	defer span.End()

	if !s.accounts.markVerified(email, at) {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *Store) UpdateAccountCredential(ctx context.Context, email, credential string, at time.Time) error {
	_, span := s.startSpan(ctx, "UpdateAccountCredential")
	defer span.End()

	if !s.accounts.updateCredential(email, credential, at) {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *Store) SaveChallenge(ctx context.Context, ch entity.Challenge) error {
	_, span := s.startSpan(ctx, "SaveChallenge")
	defer span.End()

	s.challenges.save(ch)

	return nil
}

func (s *Store) GetChallenge(ctx context.Context, purpose entity.ChallengePurpose, email string) (*entity.Challenge, error) {
	_, span := s.startSpan(ctx, "GetChallenge")
	defer span.End()

	ch, ok := s.challenges.peek(purpose, email)
	if !ok {
		return nil, goerror.ErrNotFound
	}

	return &ch, nil
}

func (s *Store) DeleteChallenge(ctx context.Context, purpose entity.ChallengePurpose, email string) error {
	_, span := s.startSpan(ctx, "DeleteChallenge")
	defer span.End()

	s.challenges.delete(purpose, email)

	return nil
}

func (s *Store) ConsumeChallenge(ctx context.Context, purpose entity.ChallengePurpose, email string) (*entity.Challenge, error) {
	_, span := s.startSpan(ctx, "ConsumeChallenge")
	defer span.End()

	ch, ok := s.challenges.consume(purpose, email)
	if !ok {
		return nil, goerror.ErrNotFound
	}

	return &ch, nil
}

// TryMarkCooldown records now as the last issuance for (purpose, email) when
// the window has elapsed. It returns the remaining duration and false when
// the caller must keep waiting.
func (s *Store) TryMarkCooldown(ctx context.Context, purpose entity.ChallengePurpose, email string, now time.Time, window time.Duration) (time.Duration, bool, error) {
	_, span := s.startSpan(ctx, "TryMarkCooldown")
	defer span.End()

	remaining, ok := s.cooldowns.tryMark(purpose, email, now, window)

	return remaining, ok, nil
}

func (s *Store) CreateSession(ctx context.Context, sess entity.Session) error {
	_, span := s.startSpan(ctx, "CreateSession")
	defer span.End()

	s.sessions.put(sess.TokenHash, sess.Email, sess.ExpiresAt)

	return nil
}

func (s *Store) GetSession(ctx context.Context, tokenHash string) (*entity.Session, error) {
	_, span := s.startSpan(ctx, "GetSession")
	defer span.End()

	rec, ok := s.sessions.get(tokenHash)
	if !ok {
		return nil, goerror.ErrNotFound
	}

	return &entity.Session{TokenHash: tokenHash, Email: rec.email, ExpiresAt: rec.expiresAt}, nil
}

func (s *Store) DeleteSession(ctx context.Context, tokenHash string) error {
	_, span := s.startSpan(ctx, "DeleteSession")
	defer span.End()

	s.sessions.delete(tokenHash)

	return nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, rt entity.RefreshToken) error {
	_, span := s.startSpan(ctx, "CreateRefreshToken")
	defer span.End()

	s.refreshes.put(rt.TokenHash, rt.Email, rt.ExpiresAt)

	return nil
}

func (s *Store) GetRefreshToken(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	_, span := s.startSpan(ctx, "GetRefreshToken")
	defer span.End()

	rec, ok := s.refreshes.get(tokenHash)
	if !ok {
		return nil, goerror.ErrNotFound
	}

	return &entity.RefreshToken{TokenHash: tokenHash, Email: rec.email, ExpiresAt: rec.expiresAt}, nil
}

func (s *Store) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	_, span := s.startSpan(ctx, "DeleteRefreshToken")
	defer span.End()

	s.refreshes.delete(tokenHash)

	return nil
}
