// Package devserver is a self-contained stub backend for local development.
// It speaks the same wire contract as the production Loopline API: bearer
// tokens, the {detail} error envelope, and the auth and task endpoints, so
// the client packages can be exercised without a real deployment.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is how long issued dev tokens live.
const DefaultTokenTTL = time.Hour

// Config configures a dev server.
type Config struct {
	// Secret signs issued tokens. Required.
	Secret string

	// TokenTTL is the issued token lifetime. Default: DefaultTokenTTL.
	TokenTTL time.Duration

	// Logger receives request logs. Default: slog.Default().
	Logger *slog.Logger
}

type user struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	IsActive  bool   `json:"is_active"`

	password string
}

type task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	owner string
}

// Server is the stub backend. All state is in memory and lost on exit.
type Server struct {
	secret   []byte
	tokenTTL time.Duration
	logger   *slog.Logger

	mu      sync.RWMutex
	users   map[string]*user // keyed by email
	byID    map[string]*user
	tasks   map[string]*task
	revoked map[string]bool // tokens invalidated by logout
}

// New creates a dev server.
func New(config Config) (*Server, error) {
	if config.Secret == "" {
		return nil, errors.New("devserver: secret is required")
	}
	tokenTTL := config.TokenTTL
	if tokenTTL == 0 {
		tokenTTL = DefaultTokenTTL
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		secret:   []byte(config.Secret),
		tokenTTL: tokenTTL,
		logger:   logger.With("component", "devserver"),
		users:    make(map[string]*user),
		byID:     make(map[string]*user),
		tasks:    make(map[string]*task),
		revoked:  make(map[string]bool),
	}, nil
}

// Handler returns the HTTP handler, rooted at /api/v1.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/auth/me", s.handleMe)
			r.Get("/tasks", s.handleListTasks)
			r.Post("/tasks", s.handleCreateTask)
			r.Get("/tasks/{id}", s.handleGetTask)
			r.Put("/tasks/{id}", s.handleUpdateTask)
			r.Put("/tasks/{id}/toggle", s.handleToggleTask)
			r.Delete("/tasks/{id}", s.handleDeleteTask)
		})
	})

	return r
}

// ListenAndServe runs the server on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dev server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Seed creates a user account directly, bypassing the register endpoint.
func (s *Server) Seed(email, password, username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user{
		ID:       uuid.NewString(),
		Email:    email,
		Username: username,
		IsActive: true,
		password: password,
	}
	s.users[email] = u
	s.byID[u.ID] = u
	return u.ID
}

func (s *Server) issueToken(u *user) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": u.ID,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
		"user": map[string]any{
			"id":        u.ID,
			"email":     u.Email,
			"username":  u.Username,
			"is_active": u.IsActive,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) parseToken(raw string) (*user, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.revoked[raw] {
		return nil, errors.New("token revoked")
	}
	u, ok := s.byID[sub]
	if !ok {
		return nil, errors.New("unknown subject")
	}
	return u, nil
}

type ctxKey struct{}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		u, err := s.parseToken(raw)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	})
}

func currentUser(r *http.Request) *user {
	u, _ := r.Context().Value(ctxKey{}).(*user)
	return u
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Email == "" || len(body.Password) < 8 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": "Validation failed",
			"error": map[string]any{
				"code":    "invalid_fields",
				"message": "Validation failed",
				"details": map[string]string{"password": "minimum 8 characters"},
			},
		})
		return
	}

	s.mu.Lock()
	if _, exists := s.users[body.Email]; exists {
		s.mu.Unlock()
		writeDetail(w, http.StatusConflict, "Email already registered")
		return
	}
	u := &user{
		ID:        uuid.NewString(),
		Email:     body.Email,
		Username:  body.Username,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		IsActive:  true,
		password:  body.Password,
	}
	s.users[u.Email] = u
	s.byID[u.ID] = u
	s.mu.Unlock()

	tok, err := s.issueToken(u)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Token issue failed")
		return
	}
	s.logger.Info("registered user", "email", u.Email)
	writeJSON(w, http.StatusCreated, map[string]any{
		"access_token": tok,
		"token_type":   "bearer",
		"user":         u,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.RLock()
	u, ok := s.users[body.Email]
	s.mu.RUnlock()
	if !ok || u.password != body.Password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	tok, err := s.issueToken(u)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Token issue failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": tok,
		"token_type":   "bearer",
		"user":         u,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Best effort: a bearer token, if present, is revoked. Absence is fine.
	if raw := bearerToken(r); raw != "" {
		s.mu.Lock()
		s.revoked[raw] = true
		s.mu.Unlock()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	query := r.URL.Query()

	s.mu.RLock()
	out := make([]*task, 0)
	for _, tk := range s.tasks {
		if tk.owner != u.ID {
			continue
		}
		if c := query.Get("completed"); c != "" && c != boolString(tk.Completed) {
			continue
		}
		if search := query.Get("search"); search != "" &&
			!strings.Contains(strings.ToLower(tk.Title+" "+tk.Description), strings.ToLower(search)) {
			continue
		}
		out = append(out, tk)
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Completed   bool   `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Title == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": "Validation failed",
			"error": map[string]any{
				"code":    "invalid_fields",
				"message": "Validation failed",
				"details": map[string]string{"title": "required"},
			},
		})
		return
	}

	now := time.Now()
	tk := &task{
		ID:          uuid.NewString(),
		Title:       body.Title,
		Description: body.Description,
		Completed:   body.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
		owner:       u.ID,
	}
	s.mu.Lock()
	s.tasks[tk.ID] = tk
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, tk)
}

func (s *Server) taskFor(r *http.Request) (*task, int) {
	u := currentUser(r)
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	tk, ok := s.tasks[id]
	s.mu.RUnlock()
	if !ok {
		return nil, http.StatusNotFound
	}
	if tk.owner != u.ID {
		return nil, http.StatusForbidden
	}
	return tk, http.StatusOK
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	tk, status := s.taskFor(r)
	if status != http.StatusOK {
		writeDetail(w, status, http.StatusText(status))
		return
	}
	writeJSON(w, http.StatusOK, tk)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	tk, status := s.taskFor(r)
	if status != http.StatusOK {
		writeDetail(w, status, http.StatusText(status))
		return
	}

	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Completed   bool   `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Title == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Validation failed")
		return
	}

	s.mu.Lock()
	tk.Title = body.Title
	tk.Description = body.Description
	tk.Completed = body.Completed
	tk.UpdatedAt = time.Now()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, tk)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	tk, status := s.taskFor(r)
	if status != http.StatusOK {
		writeDetail(w, status, http.StatusText(status))
		return
	}

	s.mu.Lock()
	tk.Completed = !tk.Completed
	tk.UpdatedAt = time.Now()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, tk)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	tk, status := s.taskFor(r)
	if status != http.StatusOK {
		writeDetail(w, status, http.StatusText(status))
		return
	}

	s.mu.Lock()
	delete(s.tasks, tk.ID)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
