package usecase

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hlmsyhb/authgate/internal/pkg/idempotency"
	"github.com/hlmsyhb/authgate/internal/pkg/mail"
)

const verifyEmailTemplate = `<p>Hi {{.full_name}},</p>
<p>Your verification code is <strong>{{.code}}</strong>.</p>
<p>It expires in {{.ttl_minutes}} minutes. If you did not create an account, you can ignore this email.</p>`

const resetPasswordTemplate = `<p>Hi {{.full_name}},</p>
<p>Your password reset code is <strong>{{.code}}</strong>.</p>
<p>It expires in {{.ttl_minutes}} minutes. If you did not request a reset, you can ignore this email.</p>`

type ConsumeChallengeIssuedInput struct {
	AccountID int64  `validate:"required,gt=0"`
	Email     string `validate:"required,email"`
	FullName  string `validate:"required,min=2,max=100"`
	Purpose   string `validate:"required,oneof=email_verify password_reset"`
	Code      string `validate:"required,otpcode"`
}

// ConsumeChallengeIssued emails the one-time code to its owner. Malformed
// payloads are dropped (acked) since redelivery cannot fix them; duplicate
// deliveries of the same challenge are suppressed via the idempotency
// tracker.
func (s *Usecase) ConsumeChallengeIssued(ctx context.Context, in ConsumeChallengeIssuedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeChallengeIssued")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "dropping invalid challenge issued payload", "error", err)
		return nil
	}

	subject := "Verify your email"
	tpl := verifyEmailTemplate
	if in.Purpose == "password_reset" {
		subject = "Reset your password"
		tpl = resetPasswordTemplate
	}

	ttl := s.cfg.GetMinute("modules.auth.challenge_ttl_minutes")
	body, err := s.renderTemplate(in.Purpose, tpl, map[string]any{
		"full_name":   in.FullName,
		"code":        in.Code,
		"ttl_minutes": int(ttl.Minutes()),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to render challenge email template", "purpose", in.Purpose, "error", err)
		return err
	}

	// Key on a digest of the code so the plaintext never reaches redis.
	key := fmt.Sprintf("challenge-email:%s:%s:%x", in.Purpose, in.Email, sha256.Sum256([]byte(in.Code)))

	err = s.idemp.Exec(ctx, key, func(ctx context.Context) error {
		return s.repoMail.Send(ctx, mail.Message{
			To:       []string{in.Email},
			Subject:  subject,
			HTMLBody: body,
		})
	}, idempotency.WithStateTTL(ttl))

	switch {
	case errors.Is(err, idempotency.ErrAlreadyCompleted),
		errors.Is(err, idempotency.ErrAlreadyInProgress):
		slog.InfoContext(ctx, "challenge email already handled", "email", in.Email, "purpose", in.Purpose)
		return nil
	case err != nil:
		slog.ErrorContext(ctx, "failed to send challenge email", "email", in.Email, "purpose", in.Purpose, "error", err)
		return err
	}

	return nil
}
