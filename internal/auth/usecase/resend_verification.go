package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/hlmsyhb/authgate/internal/auth/entity"
	"github.com/hlmsyhb/authgate/internal/pkg/goerror"
)

type ResendVerificationInput struct {
	Email string `validate:"required,email"`
}

type ResendVerificationOutput struct {
	Email string
}

func (s *Usecase) ResendVerification(ctx context.Context, in ResendVerificationInput) (*ResendVerificationOutput, error) {
	ctx, span := s.startSpan(ctx, "ResendVerification")
	defer span.End()

	in.Email = strings.TrimSpace(in.Email)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	acc, err := s.repoStore.GetAccountByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo get account by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if acc.Verified {
		return nil, goerror.NewBusiness("Email already verified", goerror.CodeConflict)
	}

	window := s.cfg.GetSecond("modules.auth.resend_cooldown_seconds")
	remaining, ok, err := s.repoStore.TryMarkCooldown(ctx, entity.ChallengePurposeEmailVerify, in.Email, s.clock.Now(), window)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo try mark cooldown", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		seconds := int64(math.Ceil(remaining.Seconds()))
		return nil, goerror.NewBusiness(
			fmt.Sprintf("Please wait %d seconds before requesting a new code", seconds),
			goerror.CodeTooManyRequest,
		)
	}

	code, err := s.issueChallenge(ctx, entity.ChallengePurposeEmailVerify, in.Email)
	if err != nil {
		return nil, err
	}

	s.publishChallengeIssued(ctx, ChallengeIssuedEvent{
		AccountID: acc.ID,
		Email:     acc.Email,
		FullName:  acc.FullName,
		Purpose:   entity.ChallengePurposeEmailVerify,
		Code:      code,
	})

	return &ResendVerificationOutput{Email: in.Email}, nil
}
