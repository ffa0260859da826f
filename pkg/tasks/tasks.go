// Package tasks is a thin client for the todo endpoints. It carries no auth
// logic of its own: every call goes through the shared HTTP client, which
// attaches the bearer header and forces a logout on 401.
package tasks

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/loopline-dev/loopline/pkg/api"
)

// Task is a todo item as the backend returns it.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Draft holds the writable task fields for create and update calls.
type Draft struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// Filter narrows List results. The zero value lists everything.
type Filter struct {
	// Completed filters by completion state when non-nil.
	Completed *bool

	// Search matches against title and description.
	Search string
}

func (f Filter) query() string {
	values := url.Values{}
	if f.Completed != nil {
		values.Set("completed", fmt.Sprintf("%t", *f.Completed))
	}
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// Client calls the task endpoints.
type Client struct {
	api *api.Client
}

// NewClient wraps the shared HTTP client.
func NewClient(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

// List returns the caller's tasks, narrowed by filter.
func (c *Client) List(ctx context.Context, filter Filter) ([]Task, error) {
	var out []Task
	if err := c.api.Get(ctx, "/tasks"+filter.query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one task by id.
func (c *Client) Get(ctx context.Context, id string) (*Task, error) {
	var out Task
	if err := c.api.Get(ctx, "/tasks/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds a task and returns it as stored.
func (c *Client) Create(ctx context.Context, draft Draft) (*Task, error) {
	var out Task
	if err := c.api.Post(ctx, "/tasks", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces a task's writable fields.
func (c *Client) Update(ctx context.Context, id string, draft Draft) (*Task, error) {
	var out Task
	if err := c.api.Put(ctx, "/tasks/"+url.PathEscape(id), draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Toggle flips a task's completion state.
func (c *Client) Toggle(ctx context.Context, id string) (*Task, error) {
	var out Task
	if err := c.api.Put(ctx, "/tasks/"+url.PathEscape(id)+"/toggle", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a task.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.api.Delete(ctx, "/tasks/"+url.PathEscape(id))
}
