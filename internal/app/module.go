package app

import (
	"log/slog"
	"os"

	"github.com/hlmsyhb/authgate/internal/auth"
	"github.com/hlmsyhb/authgate/internal/notification"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.auth.enabled") {
		if err := auth.New(auth.Dependency{
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			OID:        a.oid,
			Bcrypt:     a.bcrypt,
			HMAC:       a.hmac,
			Codes:      a.otp,
			Clock:      a.clock,
			Validator:  a.validator,
			Router:     a.router,
			Messaging:  a.messaging,
		}); err != nil {
			slog.Error("failed to init module auth", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:         a.ctx,
			Messaging:   a.messaging,
			Config:      a.config,
			Instrument:  a.ins,
			UUID:        a.uuid,
			Clock:       a.clock,
			Goroutine:   a.goroutine,
			Validator:   a.validator,
			Mail:        a.mail,
			Idempotency: a.idemp,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
