// Package services contains the application services of the gophchat client:
// the session manager, the stores that depend on it (users, channels,
// messages) and the active channel selection.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/client"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

// CredentialStore persists the credential set between runs. Load returns
// (nil, nil) when nothing is stored.
type CredentialStore interface {
	Load(ctx context.Context) (*models.Credentials, error)
	Save(ctx context.Context, c models.Credentials) error
	Clear(ctx context.Context) error
}

// SessionProvider is the view of the session the stores depend on.
type SessionProvider interface {
	IsAuthenticated() bool
	Credentials() (models.Credentials, bool)
	EndSession(ctx context.Context, reason string)
	Subscribe(fn Listener)
}

type State int

const (
	StateUnauthenticated State = iota
	StateValidating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateValidating:
		return "validating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

type SessionOption func(*Session)

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// Session owns the credential set and the current user profile. It is the
// only place that decides whether the client is authenticated.
//
// Invariant: credentials and profile are installed together and cleared
// together; the profile is never present without credentials.
type Session struct {
	client client.Client
	store  CredentialStore
	log    logging.Logger
	now    func() time.Time

	mu         sync.Mutex
	creds      *models.Credentials
	user       *models.User
	gen        uint64
	loading    int
	validating int
	err        string
	listeners  []Listener
}

func NewSession(c client.Client, store CredentialStore, logger logging.Logger, opts ...SessionOption) *Session {
	s := &Session{
		client: c,
		store:  store,
		log:    logger.With("module", "session"),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Subscribe registers fn for session events. Listeners run in
// subscription order.
func (s *Session) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Session) notify(ctx context.Context, e Event) {
	s.mu.Lock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.log.Debug(ctx, "session event", "event", e.String())
	for _, fn := range listeners {
		fn(ctx, e)
	}
}

func (s *Session) isAuthenticatedLocked() bool {
	return s.creds != nil && s.user != nil
}

func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isAuthenticatedLocked()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.creds == nil:
		return StateUnauthenticated
	case s.validating > 0 || s.user == nil:
		return StateValidating
	default:
		return StateAuthenticated
	}
}

// CurrentUser returns a copy of the profile, if any.
func (s *Session) CurrentUser() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Session) Credentials() (models.Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds == nil {
		return models.Credentials{}, false
	}
	return *s.creds, true
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading > 0
}

// Err is the last human-readable session error, empty if none.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

func (s *Session) begin() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
}

func (s *Session) end() {
	s.mu.Lock()
	s.loading--
	s.mu.Unlock()
}

// Login authenticates with email and password. On failure the previous
// session, if any, is left as it was.
func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	s.begin()
	defer s.end()
	s.ClearError()

	creds, user, err := s.client.SignIn(ctx, email, password)
	if err != nil {
		return nil, s.authFailed(ctx, "login", err, "Invalid credentials")
	}

	s.log.Info(ctx, "logged in", "uid", creds.UID)
	return s.install(ctx, *creds, *user)
}

// Signup registers a new account and logs into it.
func (s *Session) Signup(ctx context.Context, email, password, confirmation string) (*models.User, error) {
	if password != confirmation {
		return nil, ErrPasswordMismatch
	}

	s.begin()
	defer s.end()
	s.ClearError()

	creds, user, err := s.client.SignUp(ctx, email, password, confirmation)
	if err != nil {
		return nil, s.authFailed(ctx, "signup", err, "Error creating account")
	}

	s.log.Info(ctx, "signed up", "uid", creds.UID)
	return s.install(ctx, *creds, *user)
}

func (s *Session) authFailed(ctx context.Context, op string, err error, fallback string) error {
	msg := userMessage(err, fallback)

	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()

	s.log.Warn(ctx, op+" failed", "error", err)
	return &AuthError{Message: msg, Err: err}
}

// install replaces the whole session with a freshly issued one, then
// validates it.
func (s *Session) install(ctx context.Context, creds models.Credentials, user models.User) (*models.User, error) {
	s.mu.Lock()
	replaced := s.creds != nil
	s.creds = &creds
	s.user = &user
	s.gen++
	s.err = ""
	s.mu.Unlock()

	s.persist(ctx, creds)

	if replaced {
		s.notify(ctx, EventEnded)
	}
	s.notify(ctx, EventEstablished)

	if err := s.ValidateSession(ctx); err != nil {
		if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, ErrSessionExpired) {
			return nil, err
		}
	}

	u, ok := s.CurrentUser()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return &u, nil
}

func (s *Session) persist(ctx context.Context, creds models.Credentials) {
	if err := s.store.Save(ctx, creds); err != nil {
		s.log.Error(ctx, "failed to persist credentials", "error", err)
	}
}

// Logout drops the session locally and in storage. It is idempotent.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	had := s.creds != nil || s.user != nil
	s.creds = nil
	s.user = nil
	s.gen++
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		s.log.Error(ctx, "failed to clear stored credentials", "error", err)
	}

	if had {
		s.log.Info(ctx, "logged out")
		s.notify(ctx, EventEnded)
	}
}

// EndSession is the logout path taken when a dependent call was rejected.
func (s *Session) EndSession(ctx context.Context, reason string) {
	s.log.Warn(ctx, "ending session", "reason", reason)
	s.Logout(ctx)
}

// Restore reinstalls persisted credentials at startup and validates them.
func (s *Session) Restore(ctx context.Context) error {
	creds, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to load stored credentials", "error", err)
		return fmt.Errorf("restore session: %w", err)
	}
	if creds == nil {
		return nil
	}

	s.mu.Lock()
	s.creds = creds
	s.user = nil
	s.gen++
	s.mu.Unlock()

	return s.ValidateSession(ctx)
}

// ValidateSession checks the installed credentials: locally for expiry,
// then against the server. Only an expired or rejected token ends the
// session; any other failure is recorded in Err and the session is kept.
func (s *Session) ValidateSession(ctx context.Context) error {
	s.mu.Lock()
	if s.creds == nil {
		s.mu.Unlock()
		return nil
	}
	creds := *s.creds
	gen := s.gen
	s.validating++
	s.loading++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.validating--
		s.loading--
		s.mu.Unlock()
	}()

	if creds.Expired(s.now()) {
		s.log.Info(ctx, "stored session expired", "expiry", creds.Expiry)
		s.Logout(ctx)
		return ErrSessionExpired
	}

	user, err := s.client.ValidateToken(ctx, creds)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			if s.isCurrent(gen) {
				s.EndSession(ctx, "token rejected")
			}
			return err
		}

		s.mu.Lock()
		if s.gen == gen {
			s.err = err.Error()
		}
		s.mu.Unlock()
		s.log.Warn(ctx, "session validation failed", "error", err)
		return fmt.Errorf("validate session: %w", err)
	}

	return s.setUser(ctx, gen, *user)
}

// RefreshUser re-reads the profile. Failures other than a rejected token
// are only logged.
func (s *Session) RefreshUser(ctx context.Context) error {
	s.mu.Lock()
	if s.creds == nil {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	creds := *s.creds
	gen := s.gen
	s.mu.Unlock()

	user, err := s.client.CurrentUser(ctx, creds)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			if s.isCurrent(gen) {
				s.EndSession(ctx, "profile refresh rejected")
			}
			return err
		}
		s.log.Warn(ctx, "profile refresh failed", "error", err)
		return nil
	}

	return s.setUser(ctx, gen, *user)
}

// setUser installs a fetched profile unless the session changed meanwhile,
// and announces the session when this completes it.
func (s *Session) setUser(ctx context.Context, gen uint64, user models.User) error {
	s.mu.Lock()
	if s.gen != gen || s.creds == nil {
		s.mu.Unlock()
		return nil
	}
	was := s.isAuthenticatedLocked()
	s.user = &user
	s.err = ""
	s.mu.Unlock()

	if !was {
		s.log.Info(ctx, "session established", "uid", user.UID)
		s.notify(ctx, EventEstablished)
	}
	return nil
}

func (s *Session) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}
