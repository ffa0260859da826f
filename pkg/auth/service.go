// Package auth implements the credential-changing operations against the
// backend: login, register, logout, and current-user lookup. It is the only
// code that writes to the credential store, so the stored token and the
// backend's view of the session cannot drift apart between operations.
package auth

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/loopline-dev/loopline/pkg/api"
	"github.com/loopline-dev/loopline/pkg/credential"
)

// Service performs the auth operations.
type Service struct {
	client *api.Client
	store  *credential.Store
	logger *slog.Logger
}

// NewService creates a Service. logger may be nil.
func NewService(client *api.Client, store *credential.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: client,
		store:  store,
		logger: logger.With("component", "auth"),
	}
}

// Login exchanges credentials for a token. On success the token is saved to
// the credential store before returning. On failure nothing is stored and
// the typed backend error is returned as-is.
func (s *Service) Login(ctx context.Context, email, password string) (*api.Credentials, error) {
	body := map[string]string{"email": email, "password": password}

	var raw json.RawMessage
	if err := s.client.Post(ctx, "/auth/login", body, &raw, api.WithoutAuth()); err != nil {
		return nil, err
	}

	creds, err := normalizeCredentials(raw)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(creds.Token); err != nil {
		return nil, err
	}

	s.logger.Info("login succeeded", "user_id", userID(creds))
	return creds, nil
}

// Register creates an account. A successful registration behaves like an
// implicit login: the returned token is saved immediately.
func (s *Service) Register(ctx context.Context, reg api.Registration) (*api.Credentials, error) {
	var raw json.RawMessage
	if err := s.client.Post(ctx, "/auth/register", reg, &raw, api.WithoutAuth()); err != nil {
		return nil, err
	}

	creds, err := normalizeCredentials(raw)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(creds.Token); err != nil {
		return nil, err
	}

	s.logger.Info("registration succeeded", "user_id", userID(creds))
	return creds, nil
}

// Logout tells the backend to invalidate the session, then clears the
// credential store. The server call is best effort: a bearer token has no
// server-side session to revoke, so a failed or timed-out request is logged
// and the local clear still runs. The store is empty when Logout returns,
// no matter what the network did.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.client.Post(ctx, "/auth/logout", nil, nil, api.WithOptionalAuth()); err != nil {
		s.logger.Warn("logout request failed, clearing local state anyway", "error", err)
	}
	return s.store.Clear()
}

// CurrentUser fetches the profile for the stored token. Returns ErrNoToken
// without a network round-trip when the store is empty.
func (s *Service) CurrentUser(ctx context.Context) (*api.User, error) {
	tok, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, api.ErrNoToken
	}

	var user api.User
	if err := s.client.Get(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func userID(creds *api.Credentials) string {
	if creds.User == nil {
		return ""
	}
	return creds.User.ID
}
