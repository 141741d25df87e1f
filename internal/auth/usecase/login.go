package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hlmsyhb/authgate/internal/auth/entity"
	"github.com/hlmsyhb/authgate/internal/pkg/goerror"
)

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
}

type LoginOutput struct {
	AccessToken  string
	RefreshToken string
	Email        string
	FullName     string
}

func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	in.Email = strings.TrimSpace(in.Email)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	// Absent account and wrong password must be indistinguishable to prevent
	// account enumeration.
	acc, err := s.repoStore.GetAccountByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "login attempt for unknown email", "email", in.Email)
		return nil, goerror.NewBusiness("Invalid credentials", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.bcrypt.Verify(acc.Credential, in.Password) {
		slog.WarnContext(ctx, "login attempt with wrong password", "email", in.Email)
		return nil, goerror.NewBusiness("Invalid credentials", goerror.CodeUnauthorized)
	}

	if !acc.Verified {
		return nil, goerror.NewBusiness("Please verify your email first", goerror.CodeForbidden)
	}

	accessToken, err := s.issueSession(ctx, acc.Email)
	if err != nil {
		return nil, err
	}

	refreshToken := s.oid.Generate()
	refreshHash, err := s.hmac.Hash(refreshToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoStore.CreateRefreshToken(ctx, entity.RefreshToken{
		TokenHash: string(refreshHash),
		Email:     acc.Email,
		ExpiresAt: s.clock.Now().Add(s.cfg.GetDay("modules.auth.refresh_ttl_days")),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create refresh token", "email", acc.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &LoginOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Email:        acc.Email,
		FullName:     acc.FullName,
	}, nil
}

// issueSession mints a fresh opaque access token, stores its hash and returns
// the plaintext. Multiple concurrent sessions per account are allowed.
func (s *Usecase) issueSession(ctx context.Context, email string) (string, error) {
	token := s.uuid.Generate()

	tokenHash, err := s.hmac.Hash(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash access token", "error", err)
		return "", goerror.NewServer(err)
	}

	if err := s.repoStore.CreateSession(ctx, entity.Session{
		TokenHash: string(tokenHash),
		Email:     email,
		ExpiresAt: s.clock.Now().Add(s.cfg.GetMinute("modules.auth.session_ttl_minutes")),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create session", "email", email, "error", err)
		return "", goerror.NewServer(err)
	}

	return token, nil
}
