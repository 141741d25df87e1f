package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hlmsyhb/authgate/internal/auth/entity"
	"github.com/hlmsyhb/authgate/internal/pkg/goerror"
	"github.com/hlmsyhb/authgate/internal/pkg/instrument"
)

func newTestStore() *Store {
	return NewStore(instrument.NewNoop())
}

func TestAccountLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if _, err := s.GetAccountByEmail(ctx, "ann@example.com"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	acc := entity.Account{
		ID:         1,
		Email:      "ann@example.com",
		FullName:   "Ann Moore",
		Credential: "hashed",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateAccount(ctx, acc); !errors.Is(err, goerror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	later := now.Add(time.Minute)
	if err := s.MarkAccountVerified(ctx, "ann@example.com", later); err != nil {
		t.Fatalf("mark verified: %v", err)
	}
	if err := s.MarkAccountVerified(ctx, "ghost@example.com", later); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.UpdateAccountCredential(ctx, "ann@example.com", "rehashed", later); err != nil {
		t.Fatalf("update credential: %v", err)
	}

	got, err := s.GetAccountByEmail(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Verified || got.Credential != "rehashed" || !got.UpdatedAt.Equal(later) {
		t.Fatalf("unexpected account state: %+v", got)
	}
}

func TestChallengesAreKeyedByPurpose(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	verify := entity.Challenge{
		Email:     "ann@example.com",
		Purpose:   entity.ChallengePurposeEmailVerify,
		CodeHash:  "hash-verify",
		IssuedAt:  now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
	reset := verify
	reset.Purpose = entity.ChallengePurposePasswordReset
	reset.CodeHash = "hash-reset"

	if err := s.SaveChallenge(ctx, verify); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveChallenge(ctx, reset); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.ConsumeChallenge(ctx, entity.ChallengePurposeEmailVerify, "ann@example.com")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if got.CodeHash != "hash-verify" {
		t.Fatalf("consumed the wrong challenge: %+v", got)
	}

	// The reset challenge for the same email survives.
	if _, err := s.GetChallenge(ctx, entity.ChallengePurposePasswordReset, "ann@example.com"); err != nil {
		t.Fatalf("reset challenge should survive: %v", err)
	}
}

func TestConsumeChallengeIsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := s.SaveChallenge(ctx, entity.Challenge{
		Email:     "ann@example.com",
		Purpose:   entity.ChallengePurposeEmailVerify,
		CodeHash:  "hash",
		IssuedAt:  now,
		ExpiresAt: now.Add(10 * time.Minute),
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	const workers = 32
	var wins atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			if _, err := s.ConsumeChallenge(ctx, entity.ChallengePurposeEmailVerify, "ann@example.com"); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("expected exactly one successful consume, got %d", wins.Load())
	}
}

func TestCreateAccountIsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	const workers = 32
	var wins atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := range workers {
		go func() {
			defer wg.Done()
			err := s.CreateAccount(ctx, entity.Account{ID: int64(i + 1), Email: "ann@example.com"})
			if err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("expected exactly one successful create, got %d", wins.Load())
	}
}

func TestTryMarkCooldown(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	window := time.Minute

	if _, ok, err := s.TryMarkCooldown(ctx, entity.ChallengePurposeEmailVerify, "ann@example.com", now, window); err != nil || !ok {
		t.Fatalf("first mark should succeed: ok=%v err=%v", ok, err)
	}

	remaining, ok, err := s.TryMarkCooldown(ctx, entity.ChallengePurposeEmailVerify, "ann@example.com", now.Add(20*time.Second), window)
	if err != nil || ok {
		t.Fatalf("mark inside window should fail: ok=%v err=%v", ok, err)
	}
	if remaining != 40*time.Second {
		t.Fatalf("expected 40s remaining, got %v", remaining)
	}

	// A different purpose for the same email is tracked independently.
	if _, ok, err := s.TryMarkCooldown(ctx, entity.ChallengePurposePasswordReset, "ann@example.com", now, window); err != nil || !ok {
		t.Fatalf("other purpose should not share the window: ok=%v err=%v", ok, err)
	}

	if _, ok, err := s.TryMarkCooldown(ctx, entity.ChallengePurposeEmailVerify, "ann@example.com", now.Add(window), window); err != nil || !ok {
		t.Fatalf("mark at window boundary should succeed: ok=%v err=%v", ok, err)
	}
}

func TestTryMarkCooldownConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	const workers = 32
	var wins atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			if _, ok, _ := s.TryMarkCooldown(ctx, entity.ChallengePurposeEmailVerify, "ann@example.com", now, time.Minute); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins.Load())
	}
}

func TestSessionAndRefreshStoresAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	exp := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := s.CreateSession(ctx, entity.Session{TokenHash: "h1", Email: "ann@example.com", ExpiresAt: exp}); err != nil {
		t.Fatalf("create session: %v", err)
	}

	// Same hash in the refresh store must miss.
	if _, err := s.GetRefreshToken(ctx, "h1"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got, err := s.GetSession(ctx, "h1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Email != "ann@example.com" || !got.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := s.DeleteSession(ctx, "h1"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := s.GetSession(ctx, "h1"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if err := s.CreateRefreshToken(ctx, entity.RefreshToken{TokenHash: "r1", Email: "ann@example.com", ExpiresAt: exp}); err != nil {
		t.Fatalf("create refresh: %v", err)
	}
	if err := s.DeleteRefreshToken(ctx, "r1"); err != nil {
		t.Fatalf("delete refresh: %v", err)
	}
	if _, err := s.GetRefreshToken(ctx, "r1"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
