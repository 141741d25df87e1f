package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hlmsyhb/authgate/internal/pkg/goerror"
)

type MeInput struct {
	AccessToken string `validate:"required"`
}

type MeOutput struct {
	Email     string
	FullName  string
	CreatedAt time.Time
}

// Me resolves an access token to the public account view. Expired sessions
// are cleaned up lazily on this read.
func (s *Usecase) Me(ctx context.Context, in MeInput) (*MeOutput, error) {
	ctx, span := s.startSpan(ctx, "Me")
	defer span.End()

	in.AccessToken = strings.TrimSpace(in.AccessToken)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	tokenHash, err := s.hmac.Hash(in.AccessToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash access token", "error", err)
		return nil, goerror.NewServer(err)
	}

	sess, err := s.repoStore.GetSession(ctx, string(tokenHash))
	if err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("Invalid token", goerror.CodeUnauthorized)
		}

		slog.ErrorContext(ctx, "failed to repo get session", "error", err)
		return nil, goerror.NewServer(err)
	}

	if s.clock.Now().After(sess.ExpiresAt) {
		if err := s.repoStore.DeleteSession(ctx, string(tokenHash)); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete expired session", "error", err)
		}

		return nil, goerror.NewBusiness("Token expired", goerror.CodeUnauthorized)
	}

	acc, err := s.repoStore.GetAccountByEmail(ctx, sess.Email)
	if err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo get account by email", "email", sess.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &MeOutput{Email: acc.Email, FullName: acc.FullName, CreatedAt: acc.CreatedAt}, nil
}
