// Package session holds the signed-in state of one client and notifies
// observers when it changes.
package session

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"jewelshot/internal/domain"
)

// Provider is the remote authentication service.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
	// SignUp returns a nil session when the account needs email confirmation.
	SignUp(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	ResetPasswordForEmail(ctx context.Context, email string) error
	User(ctx context.Context, accessToken string) (*domain.Session, error)
}

// ChangeKind identifies a session notification.
type ChangeKind int

const (
	InitialSession ChangeKind = iota
	SignedIn
	SignedOut
)

func (k ChangeKind) String() string {
	switch k {
	case InitialSession:
		return "INITIAL_SESSION"
	case SignedIn:
		return "SIGNED_IN"
	case SignedOut:
		return "SIGNED_OUT"
	default:
		return "UNKNOWN"
	}
}

// Change is delivered to listeners. Session is nil when nobody is signed in.
type Change struct {
	Kind    ChangeKind
	Session *domain.Session
}

// Listener receives session changes. It must not block.
type Listener func(Change)

// Store keeps the current session in memory. A Store without a provider
// is unconfigured and every operation returns domain.ErrSessionUnconfigured.
type Store struct {
	provider Provider
	logger   zerolog.Logger
	now      func() time.Time

	// emitMu orders state changes with their notifications.
	emitMu sync.Mutex

	mu        sync.Mutex
	current   *domain.Session
	listeners map[int]Listener
	nextID    int
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store backed by provider, which may be nil.
func NewStore(provider Provider, opts ...Option) *Store {
	s := &Store{
		provider:  provider,
		logger:    zerolog.New(io.Discard),
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether a provider is wired.
func (s *Store) Configured() bool {
	return s.provider != nil
}

// GetSession returns a copy of the current session, or nil when signed out.
// An expired session is dropped.
func (s *Store) GetSession(ctx context.Context) (*domain.Session, error) {
	if !s.Configured() {
		return nil, domain.ErrSessionUnconfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, nil
	}
	if s.current.Expired(s.now()) {
		s.current = nil
		return nil, nil
	}
	return cloneSession(s.current), nil
}

// OnChange registers fn and immediately delivers an InitialSession change
// carrying the current session. The returned function unregisters fn and
// is safe to call more than once.
func (s *Store) OnChange(fn Listener) (dispose func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	initial := cloneSession(s.current)
	s.mu.Unlock()

	fn(Change{Kind: InitialSession, Session: initial})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// SignIn authenticates with email and password.
func (s *Store) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	if !s.Configured() {
		return nil, domain.ErrSessionUnconfigured
	}
	sess, err := s.provider.SignInWithPassword(ctx, normalizeEmail(email), password)
	if err != nil {
		s.logger.Debug().Err(err).Msg("session: sign in failed")
		return nil, err
	}
	s.set(sess, SignedIn)
	return cloneSession(sess), nil
}

// SignUp registers a new account. A nil session with no error means the
// user has to confirm their email first.
func (s *Store) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	if !s.Configured() {
		return nil, domain.ErrSessionUnconfigured
	}
	sess, err := s.provider.SignUp(ctx, normalizeEmail(email), password)
	if err != nil {
		s.logger.Debug().Err(err).Msg("session: sign up failed")
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	s.set(sess, SignedIn)
	return cloneSession(sess), nil
}

// SignOut clears the current session and revokes it at the provider.
func (s *Store) SignOut(ctx context.Context) error {
	if !s.Configured() {
		return domain.ErrSessionUnconfigured
	}
	s.mu.Lock()
	prev := cloneSession(s.current)
	s.mu.Unlock()
	if prev == nil {
		s.set(nil, SignedOut)
		return nil
	}
	return s.SignOutSession(ctx, prev)
}

// SignOutSession ends sess. The local session is cleared only while it is
// still sess, so a later sign-in survives a slow logout. Only sess's token is
// revoked, and the local session is cleared even when revocation fails.
func (s *Store) SignOutSession(ctx context.Context, sess *domain.Session) error {
	if !s.Configured() {
		return domain.ErrSessionUnconfigured
	}
	if sess == nil || sess.AccessToken == "" {
		return nil
	}

	if !s.clearIf(sess.AccessToken) {
		s.logger.Debug().Msg("session: sign out of a replaced session")
	}

	if err := s.provider.SignOut(ctx, sess.AccessToken); err != nil {
		s.logger.Warn().Err(err).Msg("session: remote sign out failed")
		return err
	}
	return nil
}

// ResetPassword asks the provider to email a recovery link.
func (s *Store) ResetPassword(ctx context.Context, email string) error {
	if !s.Configured() {
		return domain.ErrSessionUnconfigured
	}
	return s.provider.ResetPasswordForEmail(ctx, normalizeEmail(email))
}

// Restore adopts a session the client already holds after checking the
// access token with the provider.
func (s *Store) Restore(ctx context.Context, sess *domain.Session) (*domain.Session, error) {
	if !s.Configured() {
		return nil, domain.ErrSessionUnconfigured
	}
	if sess == nil || strings.TrimSpace(sess.AccessToken) == "" {
		return nil, &domain.AuthError{Message: "missing access token"}
	}
	user, err := s.provider.User(ctx, sess.AccessToken)
	if err != nil {
		return nil, err
	}
	restored := cloneSession(sess)
	restored.UserID = user.UserID
	restored.Email = user.Email
	s.set(restored, SignedIn)
	return cloneSession(restored), nil
}

// clearIf drops the current session if it still carries token and reports
// whether it did.
func (s *Store) clearIf(token string) bool {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.current == nil || s.current.AccessToken != token {
		s.mu.Unlock()
		return false
	}
	s.current = nil
	listeners := s.listenersLocked()
	s.mu.Unlock()

	s.emit(listeners, Change{Kind: SignedOut})
	return true
}

func (s *Store) set(sess *domain.Session, kind ChangeKind) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.current = cloneSession(sess)
	listeners := s.listenersLocked()
	s.mu.Unlock()

	s.emit(listeners, Change{Kind: kind, Session: sess})
}

func (s *Store) listenersLocked() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func (s *Store) emit(listeners []Listener, ch Change) {
	s.logger.Debug().Str("event", ch.Kind.String()).Msg("session: state changed")
	for _, fn := range listeners {
		fn(Change{Kind: ch.Kind, Session: cloneSession(ch.Session)})
	}
}

func cloneSession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
