// Package nav carries the navigation contract between session handling and
// route guards: where to send the user, and how the original destination
// survives the detour through the login view.
package nav

import (
	"net/url"
	"strings"
)

// Default view paths.
const (
	// DefaultLoginPath is where unauthenticated users are sent.
	DefaultLoginPath = "/login"

	// DefaultHomePath is where authenticated users land by default.
	DefaultHomePath = "/dashboard"

	// RedirectParam is the query parameter carrying the original path
	// through a login redirect.
	RedirectParam = "redirect"
)

// Request is a pending navigation.
type Request struct {
	// Path is the destination, including any query string.
	Path string

	// Replace replaces the current history entry instead of pushing.
	Replace bool
}

// Navigator performs view navigation for the host UI.
type Navigator interface {
	// Navigate moves the user to the given path.
	Navigate(req Request)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(req Request)

// Navigate calls the function.
func (f NavigatorFunc) Navigate(req Request) { f(req) }

// Recorder is a Navigator that records requests. Intended for tests and
// headless hosts that apply navigation themselves.
type Recorder struct {
	Requests []Request
}

// Navigate appends the request.
func (r *Recorder) Navigate(req Request) {
	r.Requests = append(r.Requests, req)
}

// Last returns the most recent request, or a zero Request when none were
// recorded.
func (r *Recorder) Last() Request {
	if len(r.Requests) == 0 {
		return Request{}
	}
	return r.Requests[len(r.Requests)-1]
}

// LoginRedirect builds the login path with the original destination encoded
// as the redirect parameter: "/login?redirect=%2Fdashboard".
func LoginRedirect(loginPath, origin string) string {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	if origin == "" {
		return loginPath
	}
	return loginPath + "?" + RedirectParam + "=" + url.QueryEscape(origin)
}

// ResolveRedirect returns the post-login destination: the redirect query
// parameter when it names a safe local path, otherwise the fallback. Only
// absolute local paths are honored, so a crafted link cannot bounce a fresh
// login to another site.
func ResolveRedirect(query url.Values, fallback string) string {
	if fallback == "" {
		fallback = DefaultHomePath
	}
	target := query.Get(RedirectParam)
	if target == "" {
		return fallback
	}
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return fallback
	}
	return target
}
