package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hlmsyhb/authgate/internal/auth/entity"
	"github.com/hlmsyhb/authgate/internal/pkg/goerror"
)

type VerifyEmailInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required,otpcode"`
}

type VerifyEmailOutput struct {
	Email string
}

func (s *Usecase) VerifyEmail(ctx context.Context, in VerifyEmailInput) (*VerifyEmailOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyEmail")
	defer span.End()

	in.Email = strings.TrimSpace(in.Email)
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if _, err := s.repoStore.GetAccountByEmail(ctx, in.Email); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo get account by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	ch, err := s.repoStore.GetChallenge(ctx, entity.ChallengePurposeEmailVerify, in.Email)
	if err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("No verification code found. Please request a new one.", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo get challenge", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	// An expired challenge is discarded on detection so the dead code can
	// never match again.
	if s.clock.Now().After(ch.ExpiresAt) {
		if err := s.repoStore.DeleteChallenge(ctx, entity.ChallengePurposeEmailVerify, in.Email); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete expired challenge", "email", in.Email, "error", err)
		}

		return nil, goerror.NewBusiness("Verification code expired. Please request a new one.", goerror.CodeUnauthorized)
	}

	if !s.hmac.Verify(ch.CodeHash, in.Code) {
		slog.WarnContext(ctx, "verification attempt with wrong code", "email", in.Email)
		return nil, goerror.NewBusiness("Invalid verification code", goerror.CodeUnauthorized)
	}

	// Consume atomically; of two concurrent verifies with the correct code
	// only one wins the challenge.
	if _, err := s.repoStore.ConsumeChallenge(ctx, entity.ChallengePurposeEmailVerify, in.Email); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("No verification code found. Please request a new one.", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo consume challenge", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoStore.MarkAccountVerified(ctx, in.Email, s.clock.Now()); err != nil {
		slog.ErrorContext(ctx, "failed to repo mark account verified", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &VerifyEmailOutput{Email: in.Email}, nil
}
