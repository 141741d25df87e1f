package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hlmsyhb/authgate/internal/auth/entity"
	"github.com/hlmsyhb/authgate/internal/pkg/goerror"
)

type ForgotPasswordInput struct {
	Email string `validate:"required,email"`
}

type ForgotPasswordOutput struct{}

// ForgotPassword always reports the same generic success whether or not the
// account exists; only existing accounts get a challenge. Enumeration-proofing
// on this endpoint is deliberate.
func (s *Usecase) ForgotPassword(ctx context.Context, in ForgotPasswordInput) (*ForgotPasswordOutput, error) {
	ctx, span := s.startSpan(ctx, "ForgotPassword")
	defer span.End()

	in.Email = strings.TrimSpace(in.Email)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	acc, err := s.repoStore.GetAccountByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		return &ForgotPasswordOutput{}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	code, err := s.issueChallenge(ctx, entity.ChallengePurposePasswordReset, in.Email)
	if err != nil {
		return nil, err
	}

	s.publishChallengeIssued(ctx, ChallengeIssuedEvent{
		AccountID: acc.ID,
		Email:     acc.Email,
		FullName:  acc.FullName,
		Purpose:   entity.ChallengePurposePasswordReset,
		Code:      code,
	})

	return &ForgotPasswordOutput{}, nil
}
