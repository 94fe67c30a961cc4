// Package identityd wires and runs the development identity service: the
// user store, the token service and the HTTP API the console talks to.
package identityd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"

	"github.com/dmitrijs2005/videotec/internal/identityd/config"
	"github.com/dmitrijs2005/videotec/internal/identityd/httpapi"
	"github.com/dmitrijs2005/videotec/internal/identityd/repositories/repomanager"
	"github.com/dmitrijs2005/videotec/internal/identityd/services"
	"github.com/dmitrijs2005/videotec/internal/logging"
	"github.com/dmitrijs2005/videotec/internal/telemetry"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	users   *services.UserService
	closers []func() error
}

// NewApp builds the service from c. Postgres storage is connected and
// migrated here.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, closeLog, err := logging.New(c.Log)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	app := &App{config: c, logger: logger, closers: []func() error{closeLog}}

	shutdown, err := telemetry.Setup(ctx, c.Telemetry)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	app.closers = append(app.closers, func() error { return shutdown(context.Background()) })

	var rm repomanager.RepositoryManager
	switch c.Storage {
	case config.StoragePostgres:
		db, pm, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		app.closers = append(app.closers, db.Close)
		rm = pm
	default:
		rm = repomanager.NewMemoryRepositoryManager()
	}

	app.users, err = services.NewUserService(app.db, rm, services.Options{
		SecretKey:      []byte(c.SecretKey),
		AccessTokenTTL: c.AccessTokenTTL.Duration,
		ResetTokenTTL:  c.ResetTokenTTL.Duration,
	}, logger)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

// Users exposes the user service, e.g. to seed accounts.
func (app *App) Users() *services.UserService {
	return app.users
}

// Run serves the HTTP API until ctx is cancelled.
func (app *App) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", app.config.Address)
	if err != nil {
		return err
	}
	return app.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (app *App) Serve(ctx context.Context, listen net.Listener) error {
	app.logger.Info(ctx, "Starting app...", "storage", app.config.Storage)

	router := httpapi.NewRouter(app.users, app.logger)
	return httpapi.NewServer(app.config.Address, router, app.logger).Serve(ctx, listen)
}

// Close releases the database, telemetry and log output in reverse order
// of acquisition.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		errs = append(errs, app.closers[i]())
	}
	app.closers = nil
	return errors.Join(errs...)
}
