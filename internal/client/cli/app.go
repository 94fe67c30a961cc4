package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/videotec/internal/client/auth"
	"github.com/dmitrijs2005/videotec/internal/client/config"
	"github.com/dmitrijs2005/videotec/internal/client/identity"
	"github.com/dmitrijs2005/videotec/internal/client/services"
	"github.com/dmitrijs2005/videotec/internal/client/session"
	"github.com/dmitrijs2005/videotec/internal/logging"
	"github.com/dmitrijs2005/videotec/internal/telemetry"
)

type App struct {
	ctrl     *auth.Controller
	accounts services.AccountService
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer

	mu     sync.Mutex
	status string

	unsubscribe func()
	closers     []func() error
}

// NewApp builds the console from cfg: logger, telemetry, session store
// and identity client.
func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) (*App, error) {
	log, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	store, closeStore, err := session.Open(ctx, cfg.Session, log)
	if err != nil {
		_ = shutdown(ctx)
		_ = closeLog()
		return nil, err
	}

	idp := identity.NewHTTPClient(cfg.Identity, nil, log)

	a := newApp(store, idp, idp, log, in, out)
	a.closers = append(a.closers,
		closeStore,
		func() error { return shutdown(context.Background()) },
		closeLog,
	)
	return a, nil
}

func newApp(store session.Store, idp identity.Client, accounts identity.AccountClient, log logging.Logger, in io.Reader, out io.Writer) *App {
	a := &App{
		ctrl:     auth.NewController(store, idp, log),
		accounts: services.NewAccountService(accounts),
		log:      log,
		reader:   bufio.NewReader(in),
		out:      out,
		status:   statusFor(auth.UninitializedState()),
	}
	a.unsubscribe = a.ctrl.Subscribe(a.onStateChange)
	return a
}

func (a *App) onStateChange(s auth.State) {
	a.mu.Lock()
	a.status = statusFor(s)
	a.mu.Unlock()
}

// statusFor renders the prompt status of s: "(email online)" for a
// session, "(anonymous)" otherwise.
func statusFor(s auth.State) string {
	settled := s.Settled()
	switch settled.Kind {
	case auth.Authenticated:
		return fmt.Sprintf("(%s online)", settled.Session.Profile.Email)
	case auth.Anonymous:
		return "(anonymous)"
	default:
		return "(...)"
	}
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *App) isLoggedIn() bool {
	return a.ctrl.State().Settled().IsAuthenticated()
}

// Restore resolves the persisted session of the scope.
func (a *App) Restore(ctx context.Context) error {
	return a.ctrl.Restore(ctx)
}

// Close releases the store, telemetry and log output, in that order.
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
