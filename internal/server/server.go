package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nzaccagnino/folio/internal/auth"
	"github.com/nzaccagnino/folio/internal/db"
	"github.com/nzaccagnino/folio/internal/logging"
)

const maxBodyBytes = 1 << 20

type Server struct {
	db     *db.ServerDB
	jwt    *auth.JWTManager
	log    logging.Logger
	router *chi.Mux

	authLimiter *RateLimiter
	apiLimiter  *RateLimiter

	mu      sync.Mutex
	revoked map[string]time.Time
}

type contextKey string

const (
	userContextKey   contextKey = "user"
	claimsContextKey contextKey = "claims"
)

func New(database *db.ServerDB, jwtManager *auth.JWTManager, log logging.Logger) *Server {
	s := &Server{
		db:          database,
		jwt:         jwtManager,
		log:         log,
		router:      chi.NewRouter(),
		authLimiter: NewAuthRateLimiter(),
		apiLimiter:  NewAPIRateLimiter(),
		revoked:     make(map[string]time.Time),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, "not found", http.StatusNotFound)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	s.router.Get("/health", s.healthHandler)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.apiLimiter.Middleware)

		r.Route("/auth", func(r chi.Router) {
			r.With(s.authLimiter.Middleware).Post("/login", s.loginHandler)
			r.With(s.authMiddleware).Post("/logout", s.logoutHandler)
			r.With(s.authMiddleware).Get("/user", s.userHandler)
		})

		mountTable(s, r, s.db.Notes())
		mountTable(s, r, s.db.Projects())
		mountTable(s, r, s.db.HomelabServices())
		mountTable(s, r, s.db.TrailGear())
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops the limiter cleanup loops.
func (s *Server) Close() {
	s.authLimiter.Close()
	s.apiLimiter.Close()
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			jsonError(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			jsonError(w, "invalid authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := s.jwt.Validate(parts[1])
		if err != nil || s.isRevoked(claims.ID) {
			jsonError(w, "invalid token", http.StatusUnauthorized)
			return
		}

		user, err := s.db.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			s.log.Error(r.Context(), "auth lookup failed", "error", err)
			jsonError(w, "internal error", http.StatusInternalServerError)
			return
		}
		if user == nil {
			jsonError(w, "user not found", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getUserFromContext(r *http.Request) *db.User {
	user, _ := r.Context().Value(userContextKey).(*db.User)
	return user
}

func getClaimsFromContext(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsContextKey).(*auth.Claims)
	return claims
}

// revoke remembers a signed-out token until it would have expired anyway.
func (s *Server) revoke(claims *auth.Claims) {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[claims.ID] = claims.ExpiresAt.Time
}

func (s *Server) isRevoked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[id]
	return ok
}

func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	jsonResponse(w, map[string]string{"error": message}, status)
}
