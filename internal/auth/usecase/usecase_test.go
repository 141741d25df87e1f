package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hlmsyhb/authgate/internal/auth/entity"
	"github.com/hlmsyhb/authgate/internal/auth/outbound/memory"
	"github.com/hlmsyhb/authgate/internal/auth/usecase"
	"github.com/hlmsyhb/authgate/internal/pkg/config"
	"github.com/hlmsyhb/authgate/internal/pkg/goerror"
	"github.com/hlmsyhb/authgate/internal/pkg/hash"
	"github.com/hlmsyhb/authgate/internal/pkg/instrument"
	"github.com/hlmsyhb/authgate/internal/pkg/validator"
)

const testConfigYAML = `
modules:
  auth:
    challenge_ttl_minutes: 10
    resend_cooldown_seconds: 60
    session_ttl_minutes: 60
    refresh_ttl_days: 7
`

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

type seqNumberID struct {
	n int64
}

func (s *seqNumberID) Generate() int64 {
	s.n++
	return s.n
}

type seqStringID struct {
	prefix string
	n      int
}

func (s *seqStringID) Generate() string {
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}

// scriptedCodes returns the queued codes in order, then repeats "000000".
type scriptedCodes struct {
	codes []string
	i     int
}

func (s *scriptedCodes) Generate() (string, error) {
	if s.i < len(s.codes) {
		c := s.codes[s.i]
		s.i++
		return c, nil
	}
	return "000000", nil
}

type pubRecorder struct {
	events []usecase.ChallengeIssuedEvent
}

func (p *pubRecorder) PublishChallengeIssued(_ context.Context, msg usecase.ChallengeIssuedEvent) error {
	p.events = append(p.events, msg)
	return nil
}

func (p *pubRecorder) lastCode(t *testing.T) string {
	t.Helper()
	if len(p.events) == 0 {
		t.Fatal("expected at least one published challenge event")
	}
	return p.events[len(p.events)-1].Code
}

type engine struct {
	uc     *usecase.Usecase
	clk    *fakeClock
	codes  *scriptedCodes
	events *pubRecorder
}

func newEngine(t *testing.T, scripted ...string) *engine {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfigYAML))
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}

	clk := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	codes := &scriptedCodes{codes: scripted}
	events := &pubRecorder{}
	ins := instrument.NewNoop()

	uc := usecase.New(usecase.Dependency{
		RepoStore:     memory.NewStore(ins),
		RepoMessaging: events,
		Validator:     v10,
		Config:        cfg,
		HMAC:          hash.NewHMACSHA256("test-hmac-secret"),
		Bcrypt:        hash.NewBcrypt(4, ""),
		Codes:         codes,
		UID:           &seqNumberID{},
		UUID:          &seqStringID{prefix: "access"},
		OID:           &seqStringID{prefix: "refresh"},
		Clock:         clk,
		Instrument:    ins,
	})

	return &engine{uc: uc, clk: clk, codes: codes, events: events}
}

func (e *engine) register(t *testing.T, email, password, name string) {
	t.Helper()
	if _, err := e.uc.Register(context.Background(), usecase.RegisterInput{
		Email:    email,
		Password: password,
		FullName: name,
	}); err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
}

func (e *engine) verify(t *testing.T, email, code string) {
	t.Helper()
	if _, err := e.uc.VerifyEmail(context.Background(), usecase.VerifyEmailInput{
		Email: email,
		Code:  code,
	}); err != nil {
		t.Fatalf("verify %s: %v", email, err)
	}
}

func (e *engine) registerVerified(t *testing.T, email, password, name string) {
	t.Helper()
	e.register(t, email, password, name)
	e.verify(t, email, e.events.lastCode(t))
}

func assertBusiness(t *testing.T, err error, msg string, code goerror.Code) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected business error %q, got nil", msg)
	}

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *goerror.Error, got %T: %v", err, err)
	}

	if gerr.Msg() != msg {
		t.Fatalf("expected message %q, got %q", msg, gerr.Msg())
	}
	if gerr.Code() != code {
		t.Fatalf("expected code %v, got %v", code, gerr.Code())
	}
}

func TestRegisterIssuesChallengeAndRejectsDuplicates(t *testing.T) {
	e := newEngine(t, "123456")

	out, err := e.uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "ann@example.com",
		Password: "hunter2hunter2",
		FullName: "Ann Moore",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if out.Email != "ann@example.com" || out.FullName != "Ann Moore" {
		t.Fatalf("unexpected output: %+v", out)
	}

	if len(e.events.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(e.events.events))
	}
	ev := e.events.events[0]
	if ev.Purpose != entity.ChallengePurposeEmailVerify || ev.Code != "123456" {
		t.Fatalf("unexpected event: %+v", ev)
	}

	_, err = e.uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "ann@example.com",
		Password: "anotherpassword",
		FullName: "Ann Moore",
	})
	assertBusiness(t, err, "Email already registered", goerror.CodeConflict)
}

func TestRegisterRejectsMalformedInput(t *testing.T) {
	e := newEngine(t)

	cases := []usecase.RegisterInput{
		{Email: "not-an-email", Password: "hunter2hunter2", FullName: "Ann Moore"},
		{Email: "ann@example.com", Password: "short", FullName: "Ann Moore"},
		{Email: "ann@example.com", Password: "hunter2hunter2", FullName: "A"},
	}

	for _, in := range cases {
		if _, err := e.uc.Register(context.Background(), in); err == nil {
			t.Fatalf("expected validation error for %+v", in)
		}
	}
}

func TestLoginEnumerationResistance(t *testing.T) {
	e := newEngine(t)
	e.registerVerified(t, "ann@example.com", "hunter2hunter2", "Ann Moore")

	_, errAbsent := e.uc.Login(context.Background(), usecase.LoginInput{
		Email:    "ghost@example.com",
		Password: "hunter2hunter2",
	})
	_, errWrong := e.uc.Login(context.Background(), usecase.LoginInput{
		Email:    "ann@example.com",
		Password: "wrongpassword",
	})

	assertBusiness(t, errAbsent, "Invalid credentials", goerror.CodeUnauthorized)
	assertBusiness(t, errWrong, "Invalid credentials", goerror.CodeUnauthorized)

	// The two failures must be indistinguishable to the caller.
	if errAbsent.Error() != errWrong.Error() {
		t.Fatalf("absent-account and wrong-password responses differ: %q vs %q", errAbsent, errWrong)
	}
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	e := newEngine(t)
	e.register(t, "ann@example.com", "hunter2hunter2", "Ann Moore")

	_, err := e.uc.Login(context.Background(), usecase.LoginInput{
		Email:    "ann@example.com",
		Password: "hunter2hunter2",
	})
	assertBusiness(t, err, "Please verify your email first", goerror.CodeForbidden)

	e.verify(t, "ann@example.com", e.events.lastCode(t))

	out, err := e.uc.Login(context.Background(), usecase.LoginInput{
		Email:    "ann@example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("login after verify: %v", err)
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		t.Fatalf("expected tokens, got %+v", out)
	}
}

func TestVerifyEmailFailureOrder(t *testing.T) {
	e := newEngine(t, "123456")

	_, err := e.uc.VerifyEmail(context.Background(), usecase.VerifyEmailInput{
		Email: "ghost@example.com", Code: "123456",
	})
	assertBusiness(t, err, "User not found", goerror.CodeNotFound)

	e.register(t, "ann@example.com", "hunter2hunter2", "Ann Moore")

	_, err = e.uc.VerifyEmail(context.Background(), usecase.VerifyEmailInput{
		Email: "ann@example.com", Code: "654321",
	})
	assertBusiness(t, err, "Invalid verification code", goerror.CodeUnauthorized)

	e.verify(t, "ann@example.com", "123456")

	// The challenge is consumed; the same code must not verify twice.
	_, err = e.uc.VerifyEmail(context.Background(), usecase.VerifyEmailInput{
		Email: "ann@example.com", Code: "123456",
	})
	assertBusiness(t, err, "No verification code found. Please request a new one.", goerror.CodeNotFound)
}

func TestVerifyEmailExpiryBoundary(t *testing.T) {
	e := newEngine(t, "123456")
	e.register(t, "ann@example.com", "hunter2hunter2", "Ann Moore")

	// Exactly at the deadline the code is still valid.
	e.clk.Advance(10 * time.Minute)
	e.verify(t, "ann@example.com", "123456")
}

func TestVerifyEmailExpiredChallengeIsDiscarded(t *testing.T) {
	e := newEngine(t, "123456")
	e.register(t, "ann@example.com", "hunter2hunter2", "Ann Moore")

	e.clk.Advance(10*time.Minute + time.Second)

	_, err := e.uc.VerifyEmail(context.Background(), usecase.VerifyEmailInput{
		Email: "ann@example.com", Code: "123456",
	})
	assertBusiness(t, err, "Verification code expired. Please request a new one.", goerror.CodeUnauthorized)

	// The expired challenge was removed on detection, so a retry reports the
	// absence rather than expiry.
	_, err = e.uc.VerifyEmail(context.Background(), usecase.VerifyEmailInput{
		Email: "ann@example.com", Code: "123456",
	})
	assertBusiness(t, err, "No verification code found. Please request a new one.", goerror.CodeNotFound)
}

func TestResendVerificationCooldown(t *testing.T) {
	e := newEngine(t, "111111", "222222", "333333")
	e.register(t, "ann@example.com", "hunter2hunter2", "Ann Moore")

	if _, err := e.uc.ResendVerification(context.Background(), usecase.ResendVerificationInput{
		Email: "ann@example.com",
	}); err != nil {
		t.Fatalf("first resend: %v", err)
	}

	e.clk.Advance(20 * time.Second)
	_, err := e.uc.ResendVerification(context.Background(), usecase.ResendVerificationInput{
		Email: "ann@example.com",
	})
	assertBusiness(t, err, "Please wait 40 seconds before requesting a new code", goerror.CodeTooManyRequest)

	e.clk.Advance(40 * time.Second)
	if _, err := e.uc.ResendVerification(context.Background(), usecase.ResendVerificationInput{
		Email: "ann@example.com",
	}); err != nil {
		t.Fatalf("resend after cooldown: %v", err)
	}

	// The replacement invalidates the earlier code outright.
	_, err = e.uc.VerifyEmail(context.Background(), usecase.VerifyEmailInput{
		Email: "ann@example.com", Code: "222222",
	})
	assertBusiness(t, err, "Invalid verification code", goerror.CodeUnauthorized)

	e.verify(t, "ann@example.com", "333333")
}

func TestResendVerificationGuards(t *testing.T) {
	e := newEngine(t)

	_, err := e.uc.ResendVerification(context.Background(), usecase.ResendVerificationInput{
		Email: "ghost@example.com",
	})
	assertBusiness(t, err, "User not found", goerror.CodeNotFound)

	e.registerVerified(t, "ann@example.com", "hunter2hunter2", "Ann Moore")

	_, err = e.uc.ResendVerification(context.Background(), usecase.ResendVerificationInput{
		Email: "ann@example.com",
	})
	assertBusiness(t, err, "Email already verified", goerror.CodeConflict)
}

func TestForgotPasswordIsEnumerationProof(t *testing.T) {
	e := newEngine(t)
	e.registerVerified(t, "ann@example.com", "hunter2hunter2", "Ann Moore")
	published := len(e.events.events)

	// Unknown email: generic success, no challenge issued.
	if _, err := e.uc.ForgotPassword(context.Background(), usecase.ForgotPasswordInput{
		Email: "ghost@example.com",
	}); err != nil {
		t.Fatalf("forgot for unknown email: %v", err)
	}
	if len(e.events.events) != published {
		t.Fatal("no event should be published for an unknown email")
	}

	// Known email: same success, challenge issued.
	if _, err := e.uc.ForgotPassword(context.Background(), usecase.ForgotPasswordInput{
		Email: "ann@example.com",
	}); err != nil {
		t.Fatalf("forgot for known email: %v", err)
	}
	if len(e.events.events) != published+1 {
		t.Fatal("expected a published event for a known email")
	}
	if got := e.events.events[len(e.events.events)-1].Purpose; got != entity.ChallengePurposePasswordReset {
		t.Fatalf("expected password reset purpose, got %v", got)
	}
}

func TestResetPasswordFlow(t *testing.T) {
	e := newEngine(t)
	e.registerVerified(t, "ann@example.com", "hunter2hunter2", "Ann Moore")

	_, err := e.uc.ResetPassword(context.Background(), usecase.ResetPasswordInput{
		Email: "ghost@example.com", Code: "123456", NewPassword: "freshpassword",
	})
	assertBusiness(t, err, "Invalid reset request", goerror.CodeNotFound)

	_, err = e.uc.ResetPassword(context.Background(), usecase.ResetPasswordInput{
		Email: "ann@example.com", Code: "123456", NewPassword: "freshpassword",
	})
	assertBusiness(t, err, "No reset code found. Please request a new one.", goerror.CodeNotFound)

	if _, err := e.uc.ForgotPassword(context.Background(), usecase.ForgotPasswordInput{
		Email: "ann@example.com",
	}); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	code := e.events.lastCode(t)

	_, err = e.uc.ResetPassword(context.Background(), usecase.ResetPasswordInput{
		Email: "ann@example.com", Code: "999999", NewPassword: "freshpassword",
	})
	assertBusiness(t, err, "Invalid reset code", goerror.CodeUnauthorized)

	if _, err := e.uc.ResetPassword(context.Background(), usecase.ResetPasswordInput{
		Email: "ann@example.com", Code: code, NewPassword: "freshpassword",
	}); err != nil {
		t.Fatalf("reset: %v", err)
	}

	// Old credential no longer works, new one does.
	_, err = e.uc.Login(context.Background(), usecase.LoginInput{
		Email: "ann@example.com", Password: "hunter2hunter2",
	})
	assertBusiness(t, err, "Invalid credentials", goerror.CodeUnauthorized)

	if _, err := e.uc.Login(context.Background(), usecase.LoginInput{
		Email: "ann@example.com", Password: "freshpassword",
	}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	// The reset code is single use.
	_, err = e.uc.ResetPassword(context.Background(), usecase.ResetPasswordInput{
		Email: "ann@example.com", Code: code, NewPassword: "anotherpassword",
	})
	assertBusiness(t, err, "No reset code found. Please request a new one.", goerror.CodeNotFound)
}

func TestResetPasswordKeepsExistingSessions(t *testing.T) {
	e := newEngine(t)
	e.registerVerified(t, "ann@example.com", "hunter2hunter2", "Ann Moore")

	login, err := e.uc.Login(context.Background(), usecase.LoginInput{
		Email: "ann@example.com", Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := e.uc.ForgotPassword(context.Background(), usecase.ForgotPasswordInput{
		Email: "ann@example.com",
	}); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if _, err := e.uc.ResetPassword(context.Background(), usecase.ResetPasswordInput{
		Email: "ann@example.com", Code: e.events.lastCode(t), NewPassword: "freshpassword",
	}); err != nil {
		t.Fatalf("reset: %v", err)
	}

	// Sessions issued before the reset stay valid.
	if _, err := e.uc.Me(context.Background(), usecase.MeInput{AccessToken: login.AccessToken}); err != nil {
		t.Fatalf("me after reset: %v", err)
	}
}

func TestMeResolvesAndExpiresSessions(t *testing.T) {
	e := newEngine(t)
	e.registerVerified(t, "ann@example.com", "hunter2hunter2", "Ann Moore")
	createdAt := e.clk.Now()

	login, err := e.uc.Login(context.Background(), usecase.LoginInput{
		Email: "ann@example.com", Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	out, err := e.uc.Me(context.Background(), usecase.MeInput{AccessToken: login.AccessToken})
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if out.Email != "ann@example.com" || out.FullName != "Ann Moore" || !out.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected me output: %+v", out)
	}

	_, err = e.uc.Me(context.Background(), usecase.MeInput{AccessToken: "not-a-real-token"})
	assertBusiness(t, err, "Invalid token", goerror.CodeUnauthorized)

	e.clk.Advance(60*time.Minute + time.Second)
	_, err = e.uc.Me(context.Background(), usecase.MeInput{AccessToken: login.AccessToken})
	assertBusiness(t, err, "Token expired", goerror.CodeUnauthorized)
}

func TestRefreshIssuesUsableAccessToken(t *testing.T) {
	e := newEngine(t)
	e.registerVerified(t, "ann@example.com", "hunter2hunter2", "Ann Moore")

	login, err := e.uc.Login(context.Background(), usecase.LoginInput{
		Email: "ann@example.com", Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = e.uc.Refresh(context.Background(), usecase.RefreshInput{RefreshToken: "bogus-token"})
	assertBusiness(t, err, "Invalid token", goerror.CodeUnauthorized)

	// Refresh remains valid after the access session expired.
	e.clk.Advance(60*time.Minute + time.Second)

	out, err := e.uc.Refresh(context.Background(), usecase.RefreshInput{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if out.RefreshToken != login.RefreshToken {
		t.Fatal("refresh identifier must be returned unchanged")
	}
	if out.AccessToken == login.AccessToken {
		t.Fatal("expected a fresh access token")
	}

	if _, err := e.uc.Me(context.Background(), usecase.MeInput{AccessToken: out.AccessToken}); err != nil {
		t.Fatalf("me with refreshed token: %v", err)
	}
}

func TestRefreshExpiry(t *testing.T) {
	e := newEngine(t)
	e.registerVerified(t, "ann@example.com", "hunter2hunter2", "Ann Moore")

	login, err := e.uc.Login(context.Background(), usecase.LoginInput{
		Email: "ann@example.com", Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	e.clk.Advance(7*24*time.Hour + time.Second)

	_, err = e.uc.Refresh(context.Background(), usecase.RefreshInput{RefreshToken: login.RefreshToken})
	assertBusiness(t, err, "Token expired", goerror.CodeUnauthorized)
}
