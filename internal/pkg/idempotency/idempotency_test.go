package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestTracker(t *testing.T) (*StateTracker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(client), mr
}

func TestExecRunsOnce(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	calls := 0
	fn := func(context.Context) error {
		calls++
		return nil
	}

	if err := tracker.Exec(ctx, "send-email", fn, WithStateTTL(time.Minute)); err != nil {
		t.Fatalf("first exec: %v", err)
	}
	if err := tracker.Exec(ctx, "send-email", fn, WithStateTTL(time.Minute)); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
}

func TestExecReportsInProgress(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	state, err := tracker.Acquire(ctx, "send-email", time.Minute)
	if err != nil || state != StateNone {
		t.Fatalf("acquire: state=%v err=%v", state, err)
	}

	err = tracker.Exec(ctx, "send-email", func(context.Context) error { return nil })
	if !errors.Is(err, ErrAlreadyInProgress) {
		t.Fatalf("expected ErrAlreadyInProgress, got %v", err)
	}
}

func TestExecMarksFailureAndBlocksRetry(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tracker.Exec(ctx, "send-email", func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected the callback error, got %v", err)
	}

	err = tracker.Exec(ctx, "send-email", func(context.Context) error { return nil })
	if !errors.Is(err, ErrAlreadyFailed) {
		t.Fatalf("expected ErrAlreadyFailed, got %v", err)
	}
}

func TestExecAllowsRerunAfterStateExpiry(t *testing.T) {
	tracker, mr := newTestTracker(t)
	ctx := context.Background()

	calls := 0
	fn := func(context.Context) error {
		calls++
		return nil
	}

	if err := tracker.Exec(ctx, "send-email", fn, WithStateTTL(time.Second)); err != nil {
		t.Fatalf("first exec: %v", err)
	}

	mr.FastForward(2 * time.Second)

	if err := tracker.Exec(ctx, "send-email", fn, WithStateTTL(time.Second)); err != nil {
		t.Fatalf("exec after expiry: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected two calls, got %d", calls)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	calls := 0
	fn := func(context.Context) error {
		calls++
		return nil
	}

	if err := tracker.Exec(ctx, "key-a", fn); err != nil {
		t.Fatalf("exec key-a: %v", err)
	}
	if err := tracker.Exec(ctx, "key-b", fn); err != nil {
		t.Fatalf("exec key-b: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected two calls, got %d", calls)
	}
}
