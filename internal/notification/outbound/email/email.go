package email

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/hlmsyhb/authgate/internal/pkg/instrument"
	"github.com/hlmsyhb/authgate/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

// Mail delivers messages through the mail client, retrying transient failures
// with exponential backoff.
type Mail struct {
	client     mail.Mail
	ins        instrument.Instrumentation
	maxRetries uint64
	backoff    time.Duration
}

func New(client mail.Mail, ins instrument.Instrumentation, maxRetries uint64, backoff time.Duration) *Mail {
	if backoff <= 0 {
		backoff = time.Second
	}

	return &Mail{client: client, ins: ins, maxRetries: maxRetries, backoff: backoff}
}

func (m *Mail) Send(ctx context.Context, msg mail.Message) error {
	ctx, span := m.ins.Tracer("notification.outbound.email").Start(ctx, "Send")
	defer span.End()

	err := retry.Do(ctx, retry.WithMaxRetries(m.maxRetries, retry.NewExponential(m.backoff)), func(ctx context.Context) error {
		if err := m.client.Send(ctx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
