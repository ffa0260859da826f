// Package guard decides whether a view may be shown for the current session
// state. Guards never inspect tokens themselves; the session provider is the
// single authority and guards only read its snapshots.
package guard

import (
	"net/url"

	"github.com/loopline-dev/loopline/pkg/nav"
	"github.com/loopline-dev/loopline/pkg/session"
)

// Action is the outcome of a guard check.
type Action int

const (
	// ActionPending means the session is still resolving; the host should
	// render a neutral placeholder and re-check on the next state change.
	ActionPending Action = iota

	// ActionAllow means the guarded view may be rendered.
	ActionAllow

	// ActionRedirect means the user must be sent elsewhere first.
	ActionRedirect
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionPending:
		return "pending"
	case ActionAllow:
		return "allow"
	case ActionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the result of checking a guard against the session state.
type Decision struct {
	Action Action

	// Redirect is the navigation to perform when Action is ActionRedirect.
	Redirect nav.Request
}

// Allowed reports whether the guarded view may be rendered.
func (d Decision) Allowed() bool { return d.Action == ActionAllow }

// Apply sends the decision's redirect through the navigator, when there is
// one. Returns Allowed for convenience in render loops.
func (d Decision) Apply(navigator nav.Navigator) bool {
	if d.Action == ActionRedirect && navigator != nil {
		navigator.Navigate(d.Redirect)
	}
	return d.Allowed()
}

// SnapshotSource supplies the current session snapshot. *session.Provider
// satisfies this.
type SnapshotSource interface {
	Snapshot() session.Snapshot
}

// Protected guards views that require an authenticated session.
type Protected struct {
	source    SnapshotSource
	loginPath string
}

// NewProtected creates a guard that redirects unauthenticated users to
// loginPath, carrying the blocked path as the redirect parameter. An empty
// loginPath means nav.DefaultLoginPath.
func NewProtected(source SnapshotSource, loginPath string) *Protected {
	if loginPath == "" {
		loginPath = nav.DefaultLoginPath
	}
	return &Protected{source: source, loginPath: loginPath}
}

// Check evaluates the guard for a navigation to path. While the session is
// initializing the decision is Pending, never Allow, so protected content is
// not flashed before the restore resolves.
func (g *Protected) Check(path string) Decision {
	switch snap := g.source.Snapshot(); snap.Status {
	case session.StatusInitializing:
		return Decision{Action: ActionPending}
	case session.StatusAuthenticated:
		return Decision{Action: ActionAllow}
	default:
		return Decision{
			Action:   ActionRedirect,
			Redirect: nav.Request{Path: nav.LoginRedirect(g.loginPath, path), Replace: true},
		}
	}
}

// Public guards views meant for signed-out users, such as login and signup.
type Public struct {
	source   SnapshotSource
	homePath string
}

// NewPublic creates a guard that redirects authenticated users away, to the
// destination named by the redirect query parameter when it is a safe local
// path, otherwise to homePath. An empty homePath means nav.DefaultHomePath.
func NewPublic(source SnapshotSource, homePath string) *Public {
	if homePath == "" {
		homePath = nav.DefaultHomePath
	}
	return &Public{source: source, homePath: homePath}
}

// Check evaluates the guard. query carries the current view's query string,
// so a login view reached via "?redirect=/todos" bounces straight back to
// /todos once the session is authenticated.
func (g *Public) Check(query url.Values) Decision {
	switch snap := g.source.Snapshot(); snap.Status {
	case session.StatusInitializing:
		return Decision{Action: ActionPending}
	case session.StatusAuthenticated:
		return Decision{
			Action:   ActionRedirect,
			Redirect: nav.Request{Path: nav.ResolveRedirect(query, g.homePath), Replace: true},
		}
	default:
		return Decision{Action: ActionAllow}
	}
}
