package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hlmsyhb/authgate/internal/pkg/goerror"
)

type RefreshInput struct {
	RefreshToken string `validate:"required"`
}

type RefreshOutput struct {
	AccessToken  string
	RefreshToken string
}

// Refresh exchanges a stored refresh identifier for a fresh access token.
// The identifier is validated for membership and returned unchanged; there is
// no rotation.
func (s *Usecase) Refresh(ctx context.Context, in RefreshInput) (*RefreshOutput, error) {
	ctx, span := s.startSpan(ctx, "Refresh")
	defer span.End()

	in.RefreshToken = strings.TrimSpace(in.RefreshToken)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	tokenHash, err := s.hmac.Hash(in.RefreshToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	rt, err := s.repoStore.GetRefreshToken(ctx, string(tokenHash))
	if err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "refresh attempt with unknown token")
			return nil, goerror.NewBusiness("Invalid token", goerror.CodeUnauthorized)
		}

		slog.ErrorContext(ctx, "failed to repo get refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	if s.clock.Now().After(rt.ExpiresAt) {
		if err := s.repoStore.DeleteRefreshToken(ctx, string(tokenHash)); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete expired refresh token", "error", err)
		}

		return nil, goerror.NewBusiness("Token expired", goerror.CodeUnauthorized)
	}

	accessToken, err := s.issueSession(ctx, rt.Email)
	if err != nil {
		return nil, err
	}

	return &RefreshOutput{AccessToken: accessToken, RefreshToken: in.RefreshToken}, nil
}
