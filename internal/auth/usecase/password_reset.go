package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hlmsyhb/authgate/internal/auth/entity"
	"github.com/hlmsyhb/authgate/internal/pkg/goerror"
)

type ResetPasswordInput struct {
	Email       string `validate:"required,email"`
	Code        string `validate:"required,otpcode"`
	NewPassword string `validate:"required,password"`
}

type ResetPasswordOutput struct {
	Email string
}

// ResetPassword overwrites the credential after a valid reset challenge.
// Unlike ForgotPassword this path does reveal account absence; existing
// sessions stay valid after the reset.
func (s *Usecase) ResetPassword(ctx context.Context, in ResetPasswordInput) (*ResetPasswordOutput, error) {
	ctx, span := s.startSpan(ctx, "ResetPassword")
	defer span.End()

	in.Email = strings.TrimSpace(in.Email)
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if _, err := s.repoStore.GetAccountByEmail(ctx, in.Email); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("Invalid reset request", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo get account by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	ch, err := s.repoStore.GetChallenge(ctx, entity.ChallengePurposePasswordReset, in.Email)
	if err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("No reset code found. Please request a new one.", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo get challenge", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if s.clock.Now().After(ch.ExpiresAt) {
		if err := s.repoStore.DeleteChallenge(ctx, entity.ChallengePurposePasswordReset, in.Email); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete expired challenge", "email", in.Email, "error", err)
		}

		return nil, goerror.NewBusiness("Reset code expired. Please request a new one.", goerror.CodeUnauthorized)
	}

	if !s.hmac.Verify(ch.CodeHash, in.Code) {
		slog.WarnContext(ctx, "reset attempt with wrong code", "email", in.Email)
		return nil, goerror.NewBusiness("Invalid reset code", goerror.CodeUnauthorized)
	}

	if _, err := s.repoStore.ConsumeChallenge(ctx, entity.ChallengePurposePasswordReset, in.Email); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("No reset code found. Please request a new one.", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo consume challenge", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	hashedPassword, err := s.bcrypt.Hash(in.NewPassword)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash new password", "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoStore.UpdateAccountCredential(ctx, in.Email, string(hashedPassword), s.clock.Now()); err != nil {
		slog.ErrorContext(ctx, "failed to repo update account credential", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ResetPasswordOutput{Email: in.Email}, nil
}
