package tasks_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loopline-dev/loopline/pkg/api"
	"github.com/loopline-dev/loopline/pkg/credential"
	"github.com/loopline-dev/loopline/pkg/tasks"
)

func newClient(t *testing.T, handler http.Handler) (*tasks.Client, *credential.Store, *[]string) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := credential.NewStore(credential.NewMemoryStorage())
	if err := store.Save("tok-tasks"); err != nil {
		t.Fatalf("save: %v", err)
	}

	var unauthorized []string
	apiClient, err := api.NewClient(api.Config{
		BaseURL: srv.URL,
		Tokens:  store,
		OnUnauthorized: func(path string) {
			unauthorized = append(unauthorized, path)
		},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return tasks.NewClient(apiClient), store, &unauthorized
}

func TestList(t *testing.T) {
	client, _, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok-tasks" {
			t.Errorf("expected bearer header, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"t1","title":"write tests","completed":false}]`))
	}))

	got, err := client.List(context.Background(), tasks.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Title != "write tests" {
		t.Errorf("unexpected tasks: %+v", got)
	}
}

func TestList_Filter(t *testing.T) {
	client, _, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("completed") != "true" {
			t.Errorf("expected completed=true, got %q", r.URL.RawQuery)
		}
		if r.URL.Query().Get("search") != "tests" {
			t.Errorf("expected search=tests, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))

	done := true
	if _, err := client.List(context.Background(), tasks.Filter{Completed: &done, Search: "tests"}); err != nil {
		t.Fatalf("list: %v", err)
	}
}

func TestCreate(t *testing.T) {
	client, _, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tasks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"t2","title":"new","completed":false}`))
	}))

	task, err := client.Create(context.Background(), tasks.Draft{Title: "new"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID != "t2" {
		t.Errorf("unexpected task: %+v", task)
	}
}

func TestToggle(t *testing.T) {
	client, _, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/tasks/t1/toggle" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"t1","title":"write tests","completed":true}`))
	}))

	task, err := client.Toggle(context.Background(), "t1")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !task.Completed {
		t.Error("expected toggled task to be completed")
	}
}

func TestDelete(t *testing.T) {
	client, _, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/tasks/t1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.Delete(context.Background(), "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestUnauthorizedFiresHook(t *testing.T) {
	client, _, unauthorized := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))

	_, err := client.List(context.Background(), tasks.Filter{})
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(*unauthorized) != 1 || (*unauthorized)[0] != "/tasks" {
		t.Errorf("expected forced-logout hook with path, got %v", *unauthorized)
	}
}
