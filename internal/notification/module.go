package notification

import (
	"context"

	"github.com/hlmsyhb/authgate/internal/notification/inbound"
	"github.com/hlmsyhb/authgate/internal/notification/outbound/email"
	"github.com/hlmsyhb/authgate/internal/notification/usecase"
	"github.com/hlmsyhb/authgate/internal/pkg/clock"
	"github.com/hlmsyhb/authgate/internal/pkg/config"
	"github.com/hlmsyhb/authgate/internal/pkg/goroutine"
	"github.com/hlmsyhb/authgate/internal/pkg/idempotency"
	"github.com/hlmsyhb/authgate/internal/pkg/instrument"
	"github.com/hlmsyhb/authgate/internal/pkg/mail"
	"github.com/hlmsyhb/authgate/internal/pkg/messaging"
	"github.com/hlmsyhb/authgate/internal/pkg/uid"
	"github.com/hlmsyhb/authgate/internal/pkg/validator"
)

type Dependency struct {
	Ctx         context.Context
	Messaging   messaging.Messaging
	Config      config.Config
	Instrument  instrument.Instrumentation
	UUID        uid.StringID
	Clock       clock.Clocker
	Goroutine   *goroutine.Manager
	Validator   validator.Validator
	Mail        mail.Mail
	Idempotency idempotency.Idempotency
}

func New(dep Dependency) error {
	repoMail := email.New(
		dep.Mail,
		dep.Instrument,
		uint64(dep.Config.GetInt("modules.notification.mail_max_retries")),
		dep.Config.GetSecond("modules.notification.mail_retry_backoff_seconds"),
	)

	uc := usecase.NewNotification(usecase.Dependency{
		Config:      dep.Config,
		Clock:       dep.Clock,
		Validator:   dep.Validator,
		Idempotency: dep.Idempotency,
		RepoMail:    repoMail,
		Instrument:  dep.Instrument,
	})

	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
