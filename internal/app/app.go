package app

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/hlmsyhb/authgate/internal/pkg/clock"
	"github.com/hlmsyhb/authgate/internal/pkg/config"
	"github.com/hlmsyhb/authgate/internal/pkg/goroutine"
	"github.com/hlmsyhb/authgate/internal/pkg/hash"
	"github.com/hlmsyhb/authgate/internal/pkg/idempotency"
	"github.com/hlmsyhb/authgate/internal/pkg/instrument"
	"github.com/hlmsyhb/authgate/internal/pkg/mail"
	"github.com/hlmsyhb/authgate/internal/pkg/messaging"
	"github.com/hlmsyhb/authgate/internal/pkg/otp"
	"github.com/hlmsyhb/authgate/internal/pkg/router"
	"github.com/hlmsyhb/authgate/internal/pkg/uid"
	"github.com/hlmsyhb/authgate/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	bcrypt    hash.Hash
	uid       uid.NumberID
	oid       uid.StringID
	uuid      uid.StringID
	otp       otp.Generator

	// resources
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	mail      mail.Mail
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initCache()
	app.initMail()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
