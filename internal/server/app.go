// Package server wires configuration, storage, mail and the HTTP API into a
// runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/projectmanager/internal/logging"
	"github.com/dmitrijs2005/projectmanager/internal/server/auth"
	"github.com/dmitrijs2005/projectmanager/internal/server/config"
	"github.com/dmitrijs2005/projectmanager/internal/server/ephemeral"
	"github.com/dmitrijs2005/projectmanager/internal/server/httpapi"
	"github.com/dmitrijs2005/projectmanager/internal/server/mail"
	"github.com/dmitrijs2005/projectmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/projectmanager/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	closers []io.Closer
	users   *services.UserService
	http    *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open(repomanager.DriverName, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app := &App{config: c, logger: logger, db: db, closers: []io.Closer{db}}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		app.close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	tokens, err := app.ephemeralStore(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	sender, err := mail.NewSender(mail.Settings{
		Provider:      c.MailProvider,
		From:          c.MailFrom,
		SMTPHost:      c.SMTPHost,
		SMTPPort:      c.SMTPPort,
		SMTPUsername:  c.SMTPUsername,
		SMTPPassword:  c.SMTPPassword,
		MailgunDomain: c.MailgunDomain,
		MailgunAPIKey: c.MailgunAPIKey,
	}, logger)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("mail init error: %w", err)
	}
	notifier := mail.NewNotifier(sender, logger)

	codec := auth.NewTokenCodec([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	hasher := auth.NewBcryptHasher(c.BcryptCost)
	deps := services.Deps{DB: db, Repos: repos, Logger: logger}

	app.users = services.NewUserService(deps, hasher, tokens, notifier)
	app.http = httpapi.NewServer(c.HTTPAddr, c.BaseURL, logger, codec, httpapi.Services{
		Auth:     services.NewAuthService(deps, codec, hasher, tokens, notifier, c),
		Users:    app.users,
		Projects: services.NewProjectService(deps),
		Steps:    services.NewStepService(deps),
		Tasks:    services.NewTaskService(deps, notifier),
	})

	return app, nil
}

// ephemeralStore picks Redis when an address is configured, memory otherwise.
func (app *App) ephemeralStore(ctx context.Context) (ephemeral.Store, error) {
	if app.config.RedisAddr == "" {
		app.logger.Warn(ctx, "Using in-memory ephemeral token store; tokens are lost on restart")
		return ephemeral.NewMemoryStore(app.config.EphemeralTokenTTL), nil
	}

	client, err := ephemeral.NewRedisClient(ctx, app.config.RedisAddr, app.config.RedisPassword, app.config.RedisDB)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, client)
	return ephemeral.NewRedisStore(client, app.config.EphemeralTokenTTL), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) bootstrapAdmin(ctx context.Context) error {
	created, err := app.users.EnsureAdmin(ctx, app.config.AdminEmail, app.config.AdminName, app.config.AdminPassword)
	if err != nil {
		return fmt.Errorf("admin bootstrap: %w", err)
	}
	if created {
		app.logger.Info(ctx, "Admin account created", "email", app.config.AdminEmail)
	}
	return nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		_ = app.closers[i].Close()
	}
}

// Run serves until SIGINT/SIGTERM or until the server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.close()

	app.logger.Info(ctx, "Starting app...")

	if err := app.bootstrapAdmin(ctx); err != nil {
		return err
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.logger.Info(ctx, "App stopped")
	return nil
}
