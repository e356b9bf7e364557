package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/nzaccagnino/folio/internal/logging"
	"github.com/nzaccagnino/folio/internal/model"
)

type memoryStore struct {
	mu  sync.Mutex
	tok *oauth2.Token
}

func (m *memoryStore) Token() (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tok, nil
}

func (m *memoryStore) SetToken(t *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = t
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestAnonymousRequestsCarryNoAuthorization(t *testing.T) {
	var gotAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"rows": nil})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &memoryStore{}, logging.Discard())
	rows, err := NewTable[model.Note](c, model.TableNotes).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Equal(t, []string{""}, gotAuth)
}

func TestSignInAttachesBearerAndPersists(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret123" {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, LoginResponse{
			Token:     "tok-1",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
			User:      model.User{ID: "u1", Email: req.Email},
		})
	})
	mux.HandleFunc("GET /api/auth/user", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, model.User{ID: "u1", Email: "me@example.com"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := &memoryStore{}
	c := NewClient(srv.URL, store, logging.Discard())

	var events []*model.User
	unsubscribe := c.OnAuthStateChange(func(u *model.User) { events = append(events, u) })
	defer unsubscribe()

	_, err := c.SignInWithPassword(context.Background(), "me@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid credentials")
	assert.Empty(t, events)

	u, err := c.SignInWithPassword(context.Background(), "me@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	require.Len(t, events, 1)
	assert.Equal(t, "me@example.com", events[0].Email)

	persisted, _ := store.Token()
	require.NotNil(t, persisted)
	assert.Equal(t, "tok-1", persisted.AccessToken)

	got, err := c.GetUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestStoredTokenIsRestored(t *testing.T) {
	store := &memoryStore{tok: &oauth2.Token{AccessToken: "saved", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}}
	c := NewClient("http://example.invalid", store, logging.Discard())
	assert.True(t, c.IsAuthenticated())

	expired := &memoryStore{tok: &oauth2.Token{AccessToken: "old", Expiry: time.Now().Add(-time.Hour)}}
	c = NewClient("http://example.invalid", expired, logging.Discard())
	assert.False(t, c.IsAuthenticated())
}

func TestGetUserWithoutSessionIsNil(t *testing.T) {
	c := NewClient("http://example.invalid", nil, logging.Discard())
	u, err := c.GetUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestRejectedTokenExpiresSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
	}))
	defer srv.Close()

	store := &memoryStore{tok: &oauth2.Token{AccessToken: "revoked", Expiry: time.Now().Add(time.Hour)}}
	c := NewClient(srv.URL, store, logging.Discard())

	var events []*model.User
	c.OnAuthStateChange(func(u *model.User) { events = append(events, u) })

	err := NewTable[model.Note](c, model.TableNotes).Delete(context.Background(), "n1")
	var werr *WriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, OpDelete, werr.Op)
	assert.Equal(t, "n1", werr.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.False(t, c.IsAuthenticated())
	require.Len(t, events, 1)
	assert.Nil(t, events[0])
	persisted, _ := store.Token()
	assert.Nil(t, persisted)
}

func TestSignOutClearsTokenEvenOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "boom"})
	}))
	defer srv.Close()

	store := &memoryStore{tok: &oauth2.Token{AccessToken: "t", Expiry: time.Now().Add(time.Hour)}}
	c := NewClient(srv.URL, store, logging.Discard())

	var events []*model.User
	c.OnAuthStateChange(func(u *model.User) { events = append(events, u) })

	err := c.SignOut(context.Background())
	assert.Error(t, err)
	assert.False(t, c.IsAuthenticated())
	require.Len(t, events, 1)
	assert.Nil(t, events[0])
}

func TestUnsubscribeStopsEvents(t *testing.T) {
	c := NewClient("http://example.invalid", nil, logging.Discard())
	calls := 0
	unsubscribe := c.OnAuthStateChange(func(*model.User) { calls++ })
	unsubscribe()
	unsubscribe()

	c.emit(nil)
	assert.Zero(t, calls)
}
