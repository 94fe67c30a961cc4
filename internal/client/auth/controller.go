// Package auth owns the session lifecycle of the console: restoring a
// persisted session, login, logout and ending a session locally. It is the only component that
// reads or writes the session store and the only one that validates
// credentials.
//
// Operations are single-flight. A call made while another operation is in
// flight, or from a state it cannot start from, fails immediately with a
// models.ErrOperationInProgress error; nothing is queued.
package auth

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/dmitrijs2005/videotec/internal/client/identity"
	"github.com/dmitrijs2005/videotec/internal/client/models"
	"github.com/dmitrijs2005/videotec/internal/client/session"
	"github.com/dmitrijs2005/videotec/internal/logging"
	"github.com/dmitrijs2005/videotec/internal/telemetry"
)

// ErrAlreadyRestored is returned by a second Restore call.
var ErrAlreadyRestored = models.NewAuthError(models.KindOperationInProgress, "Session restore already ran", nil)

func errInProgress() error {
	return models.NewAuthError(models.KindOperationInProgress, "Another authentication operation is in progress", nil)
}

// Listener receives every state the controller enters, in order.
// It may read State but must not start an operation synchronously.
type Listener func(State)

type subscriber struct {
	id uint64
	fn Listener
}

type notification struct {
	state State
	subs  []Listener
}

type Controller struct {
	store session.Store
	idp   identity.Client
	log   logging.Logger

	transitions metric.Int64Counter

	// mu guards state, subs and pending. Transitions are queued on pending
	// under mu and delivered under notifyMu alone, so listeners run one
	// transition at a time, in order, and may call State.
	// Lock order: notifyMu before mu.
	mu       sync.Mutex
	notifyMu sync.Mutex
	state    State
	subs     []subscriber
	pending  []notification
	nextID   uint64
}

func NewController(store session.Store, idp identity.Client, log logging.Logger) *Controller {
	c := &Controller{
		store: store,
		idp:   idp,
		log:   log.With("component", "auth"),
		state: UninitializedState(),
	}

	counter, err := telemetry.Meter().Int64Counter("videotec.session.transitions",
		metric.WithDescription("Number of session state transitions"),
	)
	if err != nil {
		c.log.Warn(context.Background(), "create transitions counter", "error", err)
		counter = noop.Int64Counter{}
	}
	c.transitions = counter

	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Credential returns the bearer credential to authorize an outbound
// request with, if the settled state is authenticated. A credential that
// is being discarded by an in-flight logout is not handed out.
func (c *Controller) Credential() (string, bool) {
	st := c.State()
	if st.Kind == InFlight && st.Op != OpLogin {
		return "", false
	}
	s := st.Settled()
	if !s.IsAuthenticated() {
		return "", false
	}
	return s.Session.Credential, true
}

// Subscribe registers fn and returns a function that removes it.
func (c *Controller) Subscribe(fn Listener) func() {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// transitionLocked enters next. It must be called with mu held and
// returns with mu released, after the listeners have seen next.
func (c *Controller) transitionLocked(ctx context.Context, next State) {
	c.state = next
	subs := make([]Listener, len(c.subs))
	for i, s := range c.subs {
		subs[i] = s.fn
	}
	c.pending = append(c.pending, notification{state: next, subs: subs})
	c.mu.Unlock()

	c.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("to", next.Kind.String())))
	c.log.Debug(ctx, "session state changed", "state", next.String())

	c.deliver()
}

// deliver drains pending in order. Whoever holds notifyMu delivers every
// queued notification, including ones queued by other goroutines while it
// was busy.
func (c *Controller) deliver() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.mu.Unlock()
			return
		}
		n := c.pending[0]
		c.pending[0] = notification{}
		c.pending = c.pending[1:]
		c.mu.Unlock()

		for _, fn := range n.subs {
			fn(n.state)
		}
	}
}

func (c *Controller) transition(ctx context.Context, next State) {
	c.mu.Lock()
	c.transitionLocked(ctx, next)
}

// Restore resolves the initial state from the persisted record. It runs
// once; the resulting state is Authenticated or Anonymous and a failed
// validation is never reported as an error.
func (c *Controller) Restore(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Kind != Uninitialized {
		c.mu.Unlock()
		return ErrAlreadyRestored
	}
	c.transitionLocked(ctx, RestoringState())

	rec := c.store.Load(ctx)
	if rec == nil {
		c.transition(ctx, AnonymousState())
		return nil
	}

	fresh, err := c.idp.FetchProfile(ctx, rec.Credential)
	if err != nil {
		c.log.Info(ctx, "persisted session rejected", "error", err)
		c.store.Clear(ctx)
		c.transition(ctx, AnonymousState())
		return nil
	}

	sess := models.Session{
		Credential: rec.Credential,
		Profile:    fresh.WithFallback(rec.ProfileSnapshot),
	}
	c.log.Info(ctx, "session restored", "email", sess.Profile.Email)
	c.transition(ctx, AuthenticatedState(sess))
	return nil
}

// Login exchanges email and password for a credential. Logging in while
// authenticated replaces the current session; the replaced credential is
// not invalidated.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	c.mu.Lock()
	prev := c.state
	if prev.Kind != Anonymous && prev.Kind != Authenticated {
		c.mu.Unlock()
		return errInProgress()
	}
	c.transitionLocked(ctx, InFlightState(OpLogin, prev))

	credential, err := c.idp.Authenticate(ctx, email, password)
	if err != nil {
		c.transition(ctx, prev)
		return asAuthError(err)
	}

	fallback := models.FallbackProfile(email)
	profile, err := c.idp.FetchProfile(ctx, credential)
	if err != nil {
		c.log.Warn(ctx, "profile unavailable after login, using fallback", "error", err)
		profile = fallback
	} else {
		profile = profile.WithFallback(fallback)
	}

	sess := models.Session{Credential: credential, Profile: profile}
	c.store.Save(ctx, sess.Record())

	c.log.Info(ctx, "logged in", "email", profile.Email)
	c.transition(ctx, AuthenticatedState(sess))
	return nil
}

// Logout ends the current session. Once admitted it always ends in
// Anonymous: the server-side outcome is only logged. From Anonymous it is a
// no-op.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	prev := c.state
	switch prev.Kind {
	case Anonymous:
		c.mu.Unlock()
		return nil
	case Authenticated:
	default:
		c.mu.Unlock()
		return errInProgress()
	}
	c.transitionLocked(ctx, InFlightState(OpLogout, prev))

	res := c.idp.Invalidate(ctx, prev.Session.Credential)
	if !res.OK() {
		c.log.Warn(ctx, "server-side logout failed", "status", res.StatusCode, "error", res.Err)
	}

	c.store.Clear(ctx)
	c.log.Info(ctx, "logged out", "email", prev.Session.Profile.Email)
	c.transition(ctx, AnonymousState())
	return nil
}

func asAuthError(err error) error {
	var ae *models.AuthError
	if errors.As(err, &ae) {
		return err
	}
	return models.NewAuthError(models.KindNetwork, "Login failed", err)
}

// EndSession forgets the persisted session without contacting the server,
// the way closing a browser tab does. The credential stays valid on the
// server until it expires.
func (c *Controller) EndSession(ctx context.Context) error {
	c.mu.Lock()
	prev := c.state
	switch prev.Kind {
	case Anonymous:
		c.mu.Unlock()
		c.store.Clear(ctx)
		return nil
	case Authenticated:
	default:
		c.mu.Unlock()
		return errInProgress()
	}
	c.transitionLocked(ctx, InFlightState(OpEndSession, prev))

	c.store.Clear(ctx)
	c.log.Info(ctx, "session ended", "email", prev.Session.Profile.Email)
	c.transition(ctx, AnonymousState())
	return nil
}
