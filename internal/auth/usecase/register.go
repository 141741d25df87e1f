package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hlmsyhb/authgate/internal/auth/entity"
	"github.com/hlmsyhb/authgate/internal/pkg/goerror"
)

type RegisterInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
	FullName string `validate:"required,min=2,max=100"`
}

type RegisterOutput struct {
	Email    string
	FullName string
}

func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	_, err := s.repoStore.GetAccountByEmail(ctx, in.Email)
	if err == nil {
		return nil, goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get account by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	hashedPassword, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	acc := entity.Account{
		ID:         s.uid.Generate(),
		Email:      in.Email,
		FullName:   in.FullName,
		Credential: string(hashedPassword),
		Verified:   false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repoStore.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			return nil, goerror.NewBusiness("Email already registered", goerror.CodeConflict)
		}

		slog.ErrorContext(ctx, "failed to repo create account", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
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

	return &RegisterOutput{Email: acc.Email, FullName: acc.FullName}, nil
}
