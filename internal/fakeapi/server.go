// Package fakeapi is an in-memory stand-in for the recipe API, used to
// exercise the client end to end. It keeps users, recipes and revoked tokens
// in maps and forgets everything when the process exits.
package fakeapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/recipelib/recipes-go/internal/model"
)

type user struct {
	ID       int64
	Username string
	Email    string
	AuthHash string
}

type recipe struct {
	OwnerID int64
	Detail  model.RecipeDetail
}

// Option configures the Server.
type Option func(*Server)

// WithSecret sets the HMAC key for issued tokens.
func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = []byte(secret) }
}

// WithTokenExpiry sets how long issued access tokens stay valid.
func WithTokenExpiry(d time.Duration) Option {
	return func(s *Server) { s.expiry = d }
}

// WithAuthRateLimit sets the per-IP limit on register and login.
func WithAuthRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.rps = rps
		s.burst = burst
	}
}

// WithClock overrides the time source used for token issue and validation.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the request logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// Server holds the fake API's state.
type Server struct {
	mu         sync.Mutex
	users      map[int64]*user
	recipes    map[int64]*recipe
	revoked    map[string]bool
	nextUserID int64
	nextRecID  int64

	secret []byte
	expiry time.Duration
	rps    float64
	burst  int
	hash   HashParams
	now    func() time.Time
	log    *zap.Logger
}

// New creates an empty fake API.
func New(opts ...Option) *Server {
	s := &Server{
		users:      make(map[int64]*user),
		recipes:    make(map[int64]*recipe),
		revoked:    make(map[string]bool),
		nextUserID: 1,
		nextRecID:  1,
		secret:     []byte("fakeapi-secret"),
		expiry:     time.Hour,
		rps:        5,
		burst:      10,
		hash:       TestHashParams(),
		now:        time.Now,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the API's routes mounted under /api/v1.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(s.rps, s.burst))
			r.Post("/users/register", s.handleRegister)
			r.Post("/users/login", s.handleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.bearerAuth)
			r.Post("/users/logout", s.handleLogout)
			r.Get("/recipes", s.handleListRecipes)
			r.Post("/recipes", s.handleCreateRecipe)
			r.Get("/recipes/{id}", s.handleGetRecipe)
		})
	})

	return r
}

// RevokeAll invalidates every token issued so far, as if they had expired.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := make([]byte, len(s.secret), len(s.secret)+1)
	copy(key, s.secret)
	s.secret = append(key, '!')
}

// RecipeCount returns the number of stored recipes.
func (s *Server) RecipeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recipes)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("fakeapi request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
