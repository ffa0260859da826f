package credential

import (
	"errors"
	"log/slog"
	"net/http"
)

// Storage keys. PrimaryKey is where the token lives; LegacyKey is written
// alongside it because earlier clients read from there, and Load falls back
// to it so sessions survive an upgrade.
const (
	PrimaryKey = "access_token"
	LegacyKey  = "token"

	// CookieName is the cookie used to mirror the token for server-rendered
	// route checks.
	CookieName = "access_token"

	// DefaultCookieMaxAge caps the mirror cookie lifetime in seconds.
	DefaultCookieMaxAge = 3600
)

// Mirror receives cookie writes when the store is configured to mirror the
// token into a cookie. A nil mirror disables mirroring.
type Mirror interface {
	SetCookie(cookie *http.Cookie)
}

// Store owns the persisted bearer token. All reads and writes of the
// credential go through it so that the primary key, the legacy duplicate,
// and the cookie mirror never disagree for longer than a single call.
type Store struct {
	storage Storage
	mirror  Mirror
	maxAge  int
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMirror mirrors token writes into a cookie via the given Mirror.
func WithMirror(m Mirror) Option {
	return func(s *Store) {
		s.mirror = m
	}
}

// WithCookieMaxAge overrides the mirror cookie lifetime in seconds.
func WithCookieMaxAge(seconds int) Option {
	return func(s *Store) {
		s.maxAge = seconds
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store backed by the given Storage.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		maxAge:  DefaultCookieMaxAge,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "credential_store")
	return s
}

// Save persists the token under the primary key, duplicates it under the
// legacy key, and refreshes the cookie mirror.
func (s *Store) Save(tok string) error {
	if tok == "" {
		return errors.New("credential: refusing to save empty token")
	}
	if err := s.storage.Set(PrimaryKey, tok); err != nil {
		return err
	}
	if err := s.storage.Set(LegacyKey, tok); err != nil {
		return err
	}
	if s.mirror != nil {
		s.mirror.SetCookie(s.cookie(tok, s.maxAge))
	}
	return nil
}

// Load returns the stored token, preferring the primary key and falling
// back to the legacy key. Returns "" when neither is set.
func (s *Store) Load() (string, error) {
	tok, err := s.storage.Get(PrimaryKey)
	if err != nil {
		return "", err
	}
	if tok != "" {
		return tok, nil
	}
	return s.storage.Get(LegacyKey)
}

// Clear removes every copy of the token: primary key, legacy key, and the
// cookie mirror. All removals are attempted even when one fails, so a
// partial clear cannot leave a live copy behind silently. Idempotent.
func (s *Store) Clear() error {
	err := errors.Join(
		s.storage.Delete(PrimaryKey),
		s.storage.Delete(LegacyKey),
	)
	if s.mirror != nil {
		s.mirror.SetCookie(s.cookie("", -1))
	}
	if err != nil {
		s.logger.Warn("credential clear incomplete", "error", err)
	}
	return err
}

func (s *Store) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		SameSite: http.SameSiteLaxMode,
	}
}
