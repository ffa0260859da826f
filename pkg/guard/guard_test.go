package guard_test

import (
	"net/url"
	"testing"

	"github.com/loopline-dev/loopline/pkg/api"
	"github.com/loopline-dev/loopline/pkg/guard"
	"github.com/loopline-dev/loopline/pkg/nav"
	"github.com/loopline-dev/loopline/pkg/session"
)

type fixedSource struct {
	snap session.Snapshot
}

func (f fixedSource) Snapshot() session.Snapshot { return f.snap }

func initializing() fixedSource {
	return fixedSource{snap: session.Snapshot{Status: session.StatusInitializing}}
}

func authenticated() fixedSource {
	return fixedSource{snap: session.Snapshot{
		Status: session.StatusAuthenticated,
		User:   &api.User{ID: "u1"},
	}}
}

func unauthenticated() fixedSource {
	return fixedSource{snap: session.Snapshot{Status: session.StatusUnauthenticated}}
}

func TestProtected_PendingWhileInitializing(t *testing.T) {
	g := guard.NewProtected(initializing(), "")
	d := g.Check("/dashboard")
	if d.Action != guard.ActionPending {
		t.Errorf("expected pending, got %s", d.Action)
	}
	if d.Allowed() {
		t.Error("protected content must not render while initializing")
	}
}

func TestProtected_AllowsAuthenticated(t *testing.T) {
	g := guard.NewProtected(authenticated(), "")
	if d := g.Check("/dashboard"); !d.Allowed() {
		t.Errorf("expected allow, got %s", d.Action)
	}
}

func TestProtected_RedirectsUnauthenticated(t *testing.T) {
	g := guard.NewProtected(unauthenticated(), "")
	d := g.Check("/dashboard")
	if d.Action != guard.ActionRedirect {
		t.Fatalf("expected redirect, got %s", d.Action)
	}
	if d.Redirect.Path != "/login?redirect=%2Fdashboard" {
		t.Errorf("unexpected redirect target: %q", d.Redirect.Path)
	}
	if !d.Redirect.Replace {
		t.Error("guard redirects should replace history")
	}
}

func TestProtected_CustomLoginPath(t *testing.T) {
	g := guard.NewProtected(unauthenticated(), "/signin")
	d := g.Check("/todos")
	if d.Redirect.Path != "/signin?redirect=%2Ftodos" {
		t.Errorf("unexpected redirect target: %q", d.Redirect.Path)
	}
}

func TestPublic_PendingWhileInitializing(t *testing.T) {
	g := guard.NewPublic(initializing(), "")
	if d := g.Check(nil); d.Action != guard.ActionPending {
		t.Errorf("expected pending, got %s", d.Action)
	}
}

func TestPublic_AllowsUnauthenticated(t *testing.T) {
	g := guard.NewPublic(unauthenticated(), "")
	if d := g.Check(nil); !d.Allowed() {
		t.Errorf("expected allow, got %s", d.Action)
	}
}

func TestPublic_RedirectsAuthenticatedHome(t *testing.T) {
	g := guard.NewPublic(authenticated(), "")
	d := g.Check(nil)
	if d.Action != guard.ActionRedirect {
		t.Fatalf("expected redirect, got %s", d.Action)
	}
	if d.Redirect.Path != nav.DefaultHomePath {
		t.Errorf("expected default home, got %q", d.Redirect.Path)
	}
}

func TestPublic_HonorsRedirectParam(t *testing.T) {
	g := guard.NewPublic(authenticated(), "")
	query := url.Values{"redirect": {"/todos"}}
	if d := g.Check(query); d.Redirect.Path != "/todos" {
		t.Errorf("expected /todos, got %q", d.Redirect.Path)
	}
}

func TestPublic_RejectsUnsafeRedirectParam(t *testing.T) {
	g := guard.NewPublic(authenticated(), "/home")
	query := url.Values{"redirect": {"https://evil.test/"}}
	if d := g.Check(query); d.Redirect.Path != "/home" {
		t.Errorf("expected fallback home, got %q", d.Redirect.Path)
	}
}

func TestDecision_Apply(t *testing.T) {
	recorder := &nav.Recorder{}

	g := guard.NewProtected(unauthenticated(), "")
	if allowed := g.Check("/dashboard").Apply(recorder); allowed {
		t.Error("redirect decision must not report allowed")
	}
	if recorder.Last().Path != "/login?redirect=%2Fdashboard" {
		t.Errorf("expected redirect navigation, got %+v", recorder.Last())
	}

	recorder = &nav.Recorder{}
	g2 := guard.NewProtected(authenticated(), "")
	if allowed := g2.Check("/dashboard").Apply(recorder); !allowed {
		t.Error("allow decision must report allowed")
	}
	if len(recorder.Requests) != 0 {
		t.Errorf("allow must not navigate, got %+v", recorder.Requests)
	}
}
