package viewstate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"jewelshot/internal/domain"
	"jewelshot/internal/ledger"
	"jewelshot/internal/photoshoot"
	"jewelshot/internal/session"
)

// Sessions is the slice of the session store the controller depends on.
type Sessions interface {
	GetSession(ctx context.Context) (*domain.Session, error)
	OnChange(fn session.Listener) (dispose func())
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password string) (*domain.Session, error)
	SignOutSession(ctx context.Context, sess *domain.Session) error
	ResetPassword(ctx context.Context, email string) error
	Restore(ctx context.Context, sess *domain.Session) (*domain.Session, error)
}

// Generator produces the images of a photoshoot.
type Generator interface {
	Synthesize(ctx context.Context, req *domain.PhotoshootRequest) ([]domain.ImagePayload, error)
}

// Options wires a Controller.
type Options struct {
	ClientID string
	Sessions Sessions
	Gateway  Generator
	Ledger   *ledger.Ledger
	Draft    *photoshoot.Draft
	Logger   *zerolog.Logger
	// SynthesisTimeout bounds how long a photoshoot may stay in Processing.
	SynthesisTimeout time.Duration
	Now              func() time.Time
}

// SignUpResult reports the state after a sign-up and whether the account
// still has to be confirmed by email.
type SignUpResult struct {
	State                State
	ConfirmationRequired bool
}

type envelope struct {
	ev    Event
	reply chan reply
}

type reply struct {
	state State
	err   error
}

// Controller owns the State of one client. A single goroutine applies
// events one at a time; all other methods talk to it through the mailbox.
type Controller struct {
	clientID string
	sessions Sessions
	gateway  Generator
	ledger   *ledger.Ledger
	draft    *photoshoot.Draft
	logger   zerolog.Logger
	timeout  time.Duration
	now      func() time.Time

	mailbox chan envelope
	quit    chan struct{}
	done    chan struct{}
	closed  atomic.Bool

	// runCtx is cancelled on Close and parents every synthesis.
	runCtx    context.Context
	runCancel context.CancelFunc

	snapMu   sync.RWMutex
	snapshot State

	obsMu     sync.Mutex
	observers map[int]func(State)
	nextObs   int

	lifeMu         sync.Mutex
	started        bool
	disposeSession func()
	closeOnce      sync.Once

	// owned by the run goroutine
	state           State
	cancelSynthesis context.CancelFunc
}

// New creates a controller and starts its event loop. Call Start to attach
// it to the session store and Close to release it.
func New(opts Options) *Controller {
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().Str("client_id", opts.ClientID).Logger()

	draft := opts.Draft
	if draft == nil {
		draft = photoshoot.NewDraft()
	}
	led := opts.Ledger
	if led == nil {
		led = ledger.New()
	}
	timeout := opts.SynthesisTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	c := &Controller{
		clientID:  opts.ClientID,
		sessions:  opts.Sessions,
		gateway:   opts.Gateway,
		ledger:    led,
		draft:     draft,
		logger:    logger,
		timeout:   timeout,
		now:       now,
		mailbox:   make(chan envelope, 64),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		runCtx:    runCtx,
		runCancel: runCancel,
		observers: make(map[int]func(State)),
		state:     Initial(),
		snapshot:  Initial(),
	}
	go c.run()
	return c
}

// ClientID returns the identifier the controller was created with.
func (c *Controller) ClientID() string { return c.clientID }

// Draft exposes the reference image set of the Configure view.
func (c *Controller) Draft() *photoshoot.Draft { return c.draft }

// Ledger exposes the project list shown on the dashboard.
func (c *Controller) Ledger() *ledger.Ledger { return c.ledger }

// Start subscribes to session changes and looks the current session up in
// the background. Cancelling ctx closes the controller.
func (c *Controller) Start(ctx context.Context) {
	c.lifeMu.Lock()
	if c.started || c.closed.Load() {
		c.lifeMu.Unlock()
		return
	}
	c.started = true
	if c.sessions != nil {
		c.disposeSession = c.sessions.OnChange(func(ch session.Change) {
			c.Post(SessionChanged{Kind: ch.Kind, Session: ch.Session})
		})
	}
	c.lifeMu.Unlock()

	go func() {
		var sess *domain.Session
		if c.sessions != nil {
			var err error
			sess, err = c.sessions.GetSession(ctx)
			if err != nil && !errors.Is(err, domain.ErrSessionUnconfigured) {
				c.logger.Warn().Err(err).Msg("viewstate: session lookup failed")
			}
		}
		c.Post(SessionRestored{Session: sess})
	}()

	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-c.quit:
		}
	}()
}

// Close stops the event loop, disposes the session listener and cancels any
// synthesis in flight. Events arriving afterwards are dropped. Close waits for
// the loop to exit, so an OnChange observer must call it as go c.Close().
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.lifeMu.Lock()
		dispose := c.disposeSession
		c.disposeSession = nil
		c.lifeMu.Unlock()
		if dispose != nil {
			dispose()
		}
		c.runCancel()
		close(c.quit)
	})
	<-c.done
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool { return c.closed.Load() }

// State returns the latest snapshot.
func (c *Controller) State() State {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return c.snapshot
}

// OnChange registers fn to be called from the event loop after every
// applied event. fn must not block or call Dispatch, and must not call Close
// synchronously.
func (c *Controller) OnChange(fn func(State)) (dispose func()) {
	c.obsMu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.obsMu.Lock()
			delete(c.observers, id)
			c.obsMu.Unlock()
		})
	}
}

// Dispatch applies ev and returns the resulting state. Events that are not
// legal on the current view fail with domain.ErrInvalidTransition.
func (c *Controller) Dispatch(ctx context.Context, ev Event) (State, error) {
	if c.closed.Load() {
		return c.State(), domain.ErrClosed
	}
	env := envelope{ev: ev, reply: make(chan reply, 1)}
	select {
	case c.mailbox <- env:
	case <-ctx.Done():
		return c.State(), ctx.Err()
	case <-c.quit:
		return c.State(), domain.ErrClosed
	}
	select {
	case r := <-env.reply:
		return r.state, r.err
	case <-ctx.Done():
		return c.State(), ctx.Err()
	case <-c.quit:
		return c.State(), domain.ErrClosed
	}
}

// Post enqueues ev without waiting for it to be applied.
func (c *Controller) Post(ev Event) {
	if c.closed.Load() {
		return
	}
	env := envelope{ev: ev}
	select {
	case c.mailbox <- env:
	case <-c.quit:
	default:
		go func() {
			select {
			case c.mailbox <- env:
			case <-c.quit:
			}
		}()
	}
}

// Submit builds a request from the draft and the given tags and dispatches
// it. A build failure is recorded as a notice and also returned.
func (c *Controller) Submit(ctx context.Context, placement, style, directive string) (State, error) {
	req, buildErr := photoshoot.ValidateTags(c.draft.Images(), placement, style, directive)
	st, err := c.Dispatch(ctx, Submitted{Request: req, Err: buildErr})
	if err != nil {
		return st, err
	}
	return st, buildErr
}

// SignIn authenticates and moves Auth to Dashboard.
func (c *Controller) SignIn(ctx context.Context, email, password string) (State, error) {
	if c.sessions == nil {
		return c.State(), domain.ErrSessionUnconfigured
	}
	sess, err := c.sessions.SignIn(ctx, email, password)
	if err != nil {
		return c.State(), err
	}
	return c.Dispatch(ctx, LoginSucceeded{Session: sess})
}

// SignUp registers an account and signs in when the provider returns a
// session right away.
func (c *Controller) SignUp(ctx context.Context, email, password string) (SignUpResult, error) {
	if c.sessions == nil {
		return SignUpResult{State: c.State()}, domain.ErrSessionUnconfigured
	}
	sess, err := c.sessions.SignUp(ctx, email, password)
	if err != nil {
		return SignUpResult{State: c.State()}, err
	}
	if sess == nil {
		return SignUpResult{State: c.State(), ConfirmationRequired: true}, nil
	}
	st, err := c.Dispatch(ctx, LoginSucceeded{Session: sess})
	return SignUpResult{State: st}, err
}

// Restore adopts a session the client already holds.
func (c *Controller) Restore(ctx context.Context, sess *domain.Session) (State, error) {
	if c.sessions == nil {
		return c.State(), domain.ErrSessionUnconfigured
	}
	restored, err := c.sessions.Restore(ctx, sess)
	if err != nil {
		return c.State(), err
	}
	return c.Dispatch(ctx, LoginSucceeded{Session: restored})
}

// SignOut returns to Auth immediately; the provider is told in the background.
func (c *Controller) SignOut(ctx context.Context) (State, error) {
	return c.Dispatch(ctx, LogoutRequested{})
}

// ResetPassword asks the provider to send a recovery email.
func (c *Controller) ResetPassword(ctx context.Context, email string) error {
	if c.sessions == nil {
		return domain.ErrSessionUnconfigured
	}
	return c.sessions.ResetPassword(ctx, email)
}

func (c *Controller) run() {
	defer close(c.done)
	for {
		select {
		case <-c.quit:
			if c.cancelSynthesis != nil {
				c.cancelSynthesis()
			}
			return
		case env := <-c.mailbox:
			if c.closed.Load() {
				if env.reply != nil {
					env.reply <- reply{state: c.state, err: domain.ErrClosed}
				}
				continue
			}
			st, err := c.apply(env.ev)
			if env.reply != nil {
				env.reply <- reply{state: st, err: err}
			}
		}
	}
}

func (c *Controller) apply(ev Event) (State, error) {
	prev := c.state
	if !Allowed(prev.View, ev) {
		c.logger.Debug().
			Str("event", EventName(ev)).
			Str("view", prev.View.String()).
			Msg("viewstate: rejected event")
		return prev, fmt.Errorf("%w: %s on %s", domain.ErrInvalidTransition, EventName(ev), prev.View)
	}

	next, effects := Reduce(prev, ev)
	if next.Epoch != prev.Epoch && c.cancelSynthesis != nil {
		c.cancelSynthesis()
		c.cancelSynthesis = nil
	}
	c.state = next

	c.snapMu.Lock()
	c.snapshot = next
	c.snapMu.Unlock()

	if next.View != prev.View {
		c.logger.Info().
			Str("event", EventName(ev)).
			Str("from", prev.View.String()).
			Str("to", next.View.String()).
			Uint64("epoch", next.Epoch).
			Msg("viewstate: transition")
	}

	for _, eff := range effects {
		c.runEffect(eff)
	}
	c.notify(next)
	return next, nil
}

func (c *Controller) runEffect(eff Effect) {
	switch e := eff.(type) {
	case StartSynthesis:
		c.startSynthesis(e)
	case RecordProject:
		if e.Request == nil {
			return
		}
		p := ledger.NewProject(e.Request.Placement(), e.Images, c.ledger.Len()+1, c.now())
		c.ledger.Append(p)
		c.logger.Info().Str("project_id", p.ID).Int("renders", p.RenderCount).Msg("viewstate: project recorded")
	case SignOut:
		if c.sessions == nil || e.Session == nil {
			return
		}
		sess := e.Session
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := c.sessions.SignOutSession(ctx, sess); err != nil && !errors.Is(err, domain.ErrSessionUnconfigured) {
				c.logger.Warn().Err(err).Msg("viewstate: provider sign out failed")
			}
		}()
	case ResetDraft:
		c.draft.Reset()
	}
}

func (c *Controller) startSynthesis(e StartSynthesis) {
	ctx, cancel := context.WithTimeout(c.runCtx, c.timeout)
	c.cancelSynthesis = cancel
	if c.gateway == nil {
		cancel()
		c.Post(SynthesisFailed{Epoch: e.Epoch, Err: domain.ErrMissingCredential})
		return
	}
	go func() {
		defer cancel()
		images, err := c.gateway.Synthesize(ctx, e.Request)
		if c.closed.Load() {
			return
		}
		if err != nil {
			c.Post(SynthesisFailed{Epoch: e.Epoch, Err: err})
			return
		}
		c.Post(SynthesisSucceeded{Epoch: e.Epoch, Images: images})
	}()
}

func (c *Controller) notify(s State) {
	c.obsMu.Lock()
	fns := make([]func(State), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.obsMu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}
