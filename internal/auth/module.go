package auth

import (
	"github.com/hlmsyhb/authgate/internal/auth/inbound"
	"github.com/hlmsyhb/authgate/internal/auth/outbound/memory"
	"github.com/hlmsyhb/authgate/internal/auth/outbound/mq"
	"github.com/hlmsyhb/authgate/internal/auth/usecase"
	"github.com/hlmsyhb/authgate/internal/pkg/clock"
	"github.com/hlmsyhb/authgate/internal/pkg/config"
	"github.com/hlmsyhb/authgate/internal/pkg/hash"
	"github.com/hlmsyhb/authgate/internal/pkg/instrument"
	"github.com/hlmsyhb/authgate/internal/pkg/messaging"
	"github.com/hlmsyhb/authgate/internal/pkg/otp"
	"github.com/hlmsyhb/authgate/internal/pkg/router"
	"github.com/hlmsyhb/authgate/internal/pkg/uid"
	"github.com/hlmsyhb/authgate/internal/pkg/validator"
)

type Dependency struct {
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	OID        uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Bcrypt     hash.Hash                  `validate:"required"`
	Codes      otp.Generator              `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	store := memory.NewStore(dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoStore:     store,
		RepoMessaging: repoMsg,
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		Bcrypt:        dep.Bcrypt,
		Codes:         dep.Codes,
		UID:           dep.UID,
		UUID:          dep.UUID,
		OID:           dep.OID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
