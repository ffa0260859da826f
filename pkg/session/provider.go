// Package session owns the client's authentication state. A single Provider
// is constructed at application start, resolves the persisted credential
// once, and is the only writer of session state for the life of the process.
// Guards, views, and feature clients read snapshots from it or subscribe to
// changes.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/loopline-dev/loopline/pkg/api"
	"github.com/loopline-dev/loopline/pkg/credential"
	"github.com/loopline-dev/loopline/pkg/nav"
	"github.com/loopline-dev/loopline/pkg/token"
)

// Status is the session lifecycle state.
type Status int

const (
	// StatusInitializing is the entry state, before the persisted
	// credential has been checked.
	StatusInitializing Status = iota

	// StatusAuthenticated holds a user and implies a non-expired token was
	// present in the credential store when last checked.
	StatusAuthenticated

	// StatusUnauthenticated holds no user; reachable from everywhere,
	// left only by a successful login or registration.
	StatusUnauthenticated
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent view of the session at one point in time.
type Snapshot struct {
	Status Status
	User   *api.User
}

// IsAuthenticated reports whether the snapshot is in the authenticated state.
func (s Snapshot) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated
}

// ErrSuperseded is returned when an auth operation completed but its result
// was discarded because the stored token changed while it was in flight,
// typically a logout racing a slow login. The newer operation wins.
var ErrSuperseded = errors.New("session: result superseded by a newer operation")

// Authenticator performs the credential-changing backend operations.
// *auth.Service satisfies this.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.Credentials, error)
	Register(ctx context.Context, reg api.Registration) (*api.Credentials, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*api.User, error)
}

// Config configures a Provider.
type Config struct {
	// Ops performs the backend auth operations.
	Ops Authenticator

	// Store is the credential store the session is derived from.
	Store *credential.Store

	// Navigator receives the forced navigation to the login view on a 401.
	// Optional; without one the state still flips, only no navigation is
	// signalled.
	Navigator nav.Navigator

	// LoginPath is the login view path. Default: nav.DefaultLoginPath.
	LoginPath string

	// Logger receives session logs. Default: slog.Default().
	Logger *slog.Logger

	// Now is the clock used for expiry checks; overrideable for tests.
	Now func() time.Time
}

// Provider is the process-wide session authority.
type Provider struct {
	mu sync.RWMutex

	ops       Authenticator
	store     *credential.Store
	navigator nav.Navigator
	loginPath string
	logger    *slog.Logger
	now       func() time.Time

	status Status
	user   *api.User

	subs    map[int]func(Snapshot)
	nextSub int
	closed  bool
}

// NewProvider creates a Provider in the Initializing state. Call Init to
// resolve it.
func NewProvider(config Config) *Provider {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loginPath := config.LoginPath
	if loginPath == "" {
		loginPath = nav.DefaultLoginPath
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &Provider{
		ops:       config.Ops,
		store:     config.Store,
		navigator: config.Navigator,
		loginPath: loginPath,
		logger:    logger.With("component", "session"),
		now:       now,
		status:    StatusInitializing,
		subs:      make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current session state.
func (p *Provider) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Snapshot{Status: p.status, User: p.user}
}

// Subscribe registers fn to be called after every state change, with the
// snapshot that resulted. Returns a cancel function.
func (p *Provider) Subscribe(fn func(Snapshot)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// Init resolves the Initializing state from the persisted credential: a
// stored, unexpired token is confirmed against the backend by fetching the
// profile; anything less leaves the session unauthenticated with the store
// cleared. Safe to call once at startup; returns the resolved snapshot.
func (p *Provider) Init(ctx context.Context) Snapshot {
	tok, err := p.store.Load()
	if err != nil {
		p.logger.Warn("credential load failed", "error", err)
		p.setState(StatusUnauthenticated, nil)
		return p.Snapshot()
	}
	if tok == "" {
		p.setState(StatusUnauthenticated, nil)
		return p.Snapshot()
	}

	if !token.Active(tok, p.now()) {
		p.logger.Info("stored token expired or unreadable, clearing")
		if err := p.store.Clear(); err != nil {
			p.logger.Warn("credential clear failed", "error", err)
		}
		p.setState(StatusUnauthenticated, nil)
		return p.Snapshot()
	}

	user, err := p.ops.CurrentUser(ctx)
	if err != nil {
		p.logger.Warn("session restore rejected", "error", err)
		if err := p.store.Clear(); err != nil {
			p.logger.Warn("credential clear failed", "error", err)
		}
		p.setState(StatusUnauthenticated, nil)
		return p.Snapshot()
	}

	// A logout or re-login may have landed while the profile fetch was in
	// flight; the result only applies if the token it belongs to is still
	// the stored one.
	if current, _ := p.store.Load(); current != tok {
		p.logger.Info("discarding stale session restore")
		return p.Snapshot()
	}

	p.setState(StatusAuthenticated, user)
	return p.Snapshot()
}

// Login authenticates and, on success, moves the session to Authenticated
// with the returned user. On failure the session state is untouched.
func (p *Provider) Login(ctx context.Context, email, password string) (*api.User, error) {
	creds, err := p.ops.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return p.applyCredentials(ctx, creds)
}

// Register creates an account and logs in with it.
func (p *Provider) Register(ctx context.Context, reg api.Registration) (*api.User, error) {
	creds, err := p.ops.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return p.applyCredentials(ctx, creds)
}

func (p *Provider) applyCredentials(ctx context.Context, creds *api.Credentials) (*api.User, error) {
	if current, err := p.store.Load(); err == nil && current != creds.Token {
		p.logger.Info("discarding superseded login result")
		return nil, ErrSuperseded
	}

	user := creds.User
	if user == nil {
		fetched, err := p.ops.CurrentUser(ctx)
		if err != nil {
			p.logger.Warn("profile fetch after login failed", "error", err)
		} else {
			user = fetched
		}
	}

	p.setState(StatusAuthenticated, user)
	return user, nil
}

// Logout ends the session. The credential store is empty and the session
// Unauthenticated when this returns, regardless of whether the backend
// call succeeded.
func (p *Provider) Logout(ctx context.Context) error {
	err := p.ops.Logout(ctx)
	p.setState(StatusUnauthenticated, nil)
	return err
}

// HandleUnauthorized is the forced-logout path, wired as the HTTP layer's
// 401 hook. It clears every stored copy of the credential, flips the
// session to Unauthenticated, and signals navigation to the login view with
// the originating path as the return destination. No error surfaces to the
// user: an expired session lapses silently.
func (p *Provider) HandleUnauthorized(origin string) {
	if err := p.store.Clear(); err != nil {
		p.logger.Warn("credential clear failed", "error", err)
	}
	p.setState(StatusUnauthenticated, nil)

	if p.navigator != nil {
		p.navigator.Navigate(nav.Request{
			Path:    nav.LoginRedirect(p.loginPath, origin),
			Replace: true,
		})
	}
}

// Watch polls the stored token and calls fn when it will expire within
// window. Expiry is otherwise detected reactively, on the next rejected
// call; Watch exists for hosts that want to warn or renew ahead of time.
// Blocks until ctx is done.
func (p *Provider) Watch(ctx context.Context, every, window time.Duration, fn func(remaining time.Duration)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tok, err := p.store.Load()
			if err != nil || tok == "" {
				continue
			}
			if token.ExpiringSoon(tok, p.now(), window) {
				remaining, _ := token.Remaining(tok, p.now())
				fn(remaining)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close tears the provider down: subscribers are dropped and further state
// changes are not delivered.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.subs = make(map[int]func(Snapshot))
}

func (p *Provider) setState(status Status, user *api.User) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.status = status
	p.user = user

	snap := Snapshot{Status: status, User: user}
	subs := make([]func(Snapshot), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
