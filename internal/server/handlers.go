package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nzaccagnino/folio/internal/db"
	"github.com/nzaccagnino/folio/internal/model"
)

// Health check

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		jsonError(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	jsonResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// Auth handlers

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt int64      `json:"expires_at"`
	User      model.User `json:"user"`
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		jsonError(w, "email and password required", http.StatusBadRequest)
		return
	}

	user, err := s.db.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.log.Error(r.Context(), "login failed", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		jsonError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email)
	if err != nil {
		s.log.Error(r.Context(), "token generation failed", "error", err)
		jsonError(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	s.log.Info(r.Context(), "user signed in", "user_id", user.ID)
	jsonResponse(w, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		User:      user.Model(),
	}, http.StatusOK)
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	s.revoke(getClaimsFromContext(r))
	if u := getUserFromContext(r); u != nil {
		s.log.Info(r.Context(), "user signed out", "user_id", u.ID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) userHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, getUserFromContext(r).Model(), http.StatusOK)
}

// Table handlers

type record interface {
	model.Entity
	Validate() error
}

type ListResponse[T any] struct {
	Rows []T `json:"rows"`
}

func mountTable[T record](s *Server, r chi.Router, t *db.Table[T]) {
	h := tableHandlers[T]{s: s, t: t}
	r.Route("/"+t.Name(), func(r chi.Router) {
		r.Get("/", h.list)
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/", h.create)
			r.Patch("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})
}

type tableHandlers[T record] struct {
	s *Server
	t *db.Table[T]
}

func (h tableHandlers[T]) list(w http.ResponseWriter, r *http.Request) {
	var ascending bool
	switch r.URL.Query().Get("order") {
	case "", "created_at.desc":
	case "created_at.asc":
		ascending = true
	default:
		jsonError(w, "invalid order", http.StatusBadRequest)
		return
	}

	rows, err := h.t.List(r.Context(), ascending)
	if err != nil {
		h.s.log.Error(r.Context(), "list failed", "table", h.t.Name(), "error", err)
		jsonError(w, "failed to list rows", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, ListResponse[T]{Rows: rows}, http.StatusOK)
}

func (h tableHandlers[T]) create(w http.ResponseWriter, r *http.Request) {
	v, ok := h.decode(w, r)
	if !ok {
		return
	}

	row, err := h.t.Insert(r.Context(), v)
	if err != nil {
		h.s.log.Error(r.Context(), "insert failed", "table", h.t.Name(), "error", err)
		jsonError(w, "failed to create row", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, row, http.StatusCreated)
}

func (h tableHandlers[T]) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, ok := h.decode(w, r)
	if !ok {
		return
	}

	row, err := h.t.Update(r.Context(), id, v)
	if errors.Is(err, db.ErrNotFound) {
		jsonError(w, "row not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.s.log.Error(r.Context(), "update failed", "table", h.t.Name(), "id", id, "error", err)
		jsonError(w, "failed to update row", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, row, http.StatusOK)
}

func (h tableHandlers[T]) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.t.Delete(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		jsonError(w, "row not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.s.log.Error(r.Context(), "delete failed", "table", h.t.Name(), "id", id, "error", err)
		jsonError(w, "failed to delete row", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h tableHandlers[T]) decode(w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	if err := decodeBody(w, r, &v); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return v, false
	}
	if err := v.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return v, false
	}
	return v, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
