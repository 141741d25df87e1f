package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/hlmsyhb/authgate/internal/auth/entity"
	"github.com/hlmsyhb/authgate/internal/pkg/clock"
	"github.com/hlmsyhb/authgate/internal/pkg/config"
	"github.com/hlmsyhb/authgate/internal/pkg/goerror"
	"github.com/hlmsyhb/authgate/internal/pkg/hash"
	"github.com/hlmsyhb/authgate/internal/pkg/instrument"
	"github.com/hlmsyhb/authgate/internal/pkg/otp"
	"github.com/hlmsyhb/authgate/internal/pkg/uid"
	"github.com/hlmsyhb/authgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type ChallengeIssuedEvent struct {
	AccountID int64
	Email     string
	FullName  string
	Purpose   entity.ChallengePurpose
	Code      string
}

type repoMessaging interface {
	PublishChallengeIssued(ctx context.Context, msg ChallengeIssuedEvent) error
}

type repoStore interface {
	GetAccountByEmail(ctx context.Context, email string) (*entity.Account, error)
	CreateAccount(ctx context.Context, acc entity.Account) error
	MarkAccountVerified(ctx context.Context, email string, at time.Time) error
	UpdateAccountCredential(ctx context.Context, email, credential string, at time.Time) error

	SaveChallenge(ctx context.Context, ch entity.Challenge) error
	GetChallenge(ctx context.Context, purpose entity.ChallengePurpose, email string) (*entity.Challenge, error)
	DeleteChallenge(ctx context.Context, purpose entity.ChallengePurpose, email string) error
	ConsumeChallenge(ctx context.Context, purpose entity.ChallengePurpose, email string) (*entity.Challenge, error)

	TryMarkCooldown(ctx context.Context, purpose entity.ChallengePurpose, email string, now time.Time, window time.Duration) (time.Duration, bool, error)

	CreateSession(ctx context.Context, sess entity.Session) error
	GetSession(ctx context.Context, tokenHash string) (*entity.Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error

	CreateRefreshToken(ctx context.Context, rt entity.RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, tokenHash string) error
}

type Usecase struct {
	repoStore     repoStore
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	bcrypt        hash.Hash
	codes         otp.Generator
	uid           uid.NumberID
	uuid          uid.StringID
	oid           uid.StringID
	clock         clock.Clocker
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoStore     repoStore
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Bcrypt        hash.Hash
	Codes         otp.Generator
	UID           uid.NumberID
	UUID          uid.StringID
	OID           uid.StringID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoStore:     dep.RepoStore,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		bcrypt:        dep.Bcrypt,
		codes:         dep.Codes,
		uid:           dep.UID,
		uuid:          dep.UUID,
		oid:           dep.OID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

// issueChallenge generates a fresh code, stores its hash under (purpose,
// email) replacing any prior challenge, and returns the plaintext code for
// the delivery collaborator.
func (s *Usecase) issueChallenge(ctx context.Context, purpose entity.ChallengePurpose, email string) (string, error) {
	code, err := s.codes.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate challenge code", "error", err)
		return "", goerror.NewServer(err)
	}

	codeHash, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash challenge code", "error", err)
		return "", goerror.NewServer(err)
	}

	now := s.clock.Now()
	ch := entity.Challenge{
		Email:     email,
		Purpose:   purpose,
		CodeHash:  string(codeHash),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.GetMinute("modules.auth.challenge_ttl_minutes")),
	}

	if err := s.repoStore.SaveChallenge(ctx, ch); err != nil {
		slog.ErrorContext(ctx, "failed to repo save challenge", "email", email, "purpose", purpose.String(), "error", err)
		return "", goerror.NewServer(err)
	}

	return code, nil
}

// publishChallengeIssued hands the plaintext code to the notification module.
// Delivery is best effort; the auth operation already succeeded.
func (s *Usecase) publishChallengeIssued(ctx context.Context, msg ChallengeIssuedEvent) {
	if err := s.repoMessaging.PublishChallengeIssued(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish challenge issued",
			"email", msg.Email, "purpose", msg.Purpose.String(), "error", err)
	}
}
