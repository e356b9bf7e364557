package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/nzaccagnino/folio/internal/logging"
	"github.com/nzaccagnino/folio/internal/model"
)

// TokenStore persists the session token between runs. Token returns nil when
// nothing is stored; SetToken(nil) clears it.
type TokenStore interface {
	Token() (*oauth2.Token, error)
	SetToken(*oauth2.Token) error
}

type Client struct {
	baseURL string
	store   TokenStore
	log     logging.Logger

	anon   *http.Client
	authed *http.Client

	mu        sync.Mutex
	token     *oauth2.Token
	listeners map[int]func(*model.User)
	nextID    int
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt int64      `json:"expires_at"`
	User      model.User `json:"user"`
}

func NewClient(baseURL string, store TokenStore, log logging.Logger) *Client {
	base := &http.Client{Timeout: 30 * time.Second}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		store:     store,
		log:       log,
		anon:      base,
		listeners: make(map[int]func(*model.User)),
	}
	c.authed = &http.Client{
		Timeout:   base.Timeout,
		Transport: &oauth2.Transport{Source: c, Base: http.DefaultTransport},
	}

	if store != nil {
		tok, err := store.Token()
		if err != nil {
			log.Warn(context.Background(), "failed to load stored session", "error", err)
		} else if tok.Valid() {
			c.token = tok
		}
	}
	return c
}

func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

func (c *Client) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token.Valid()
}

// Token implements oauth2.TokenSource for the authenticated transport.
func (c *Client) Token() (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.token.Valid() {
		return nil, ErrUnauthorized
	}
	return c.token, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/health", nil)
}

// Identity

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*model.User, error) {
	var resp LoginResponse
	err := c.post(ctx, "/api/auth/login", LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	tok := &oauth2.Token{
		AccessToken: resp.Token,
		TokenType:   "Bearer",
		Expiry:      time.Unix(resp.ExpiresAt, 0),
	}
	c.setToken(ctx, tok)

	user := resp.User
	c.emit(&user)
	return &user, nil
}

// SignOut ends the server session and always drops the local token.
func (c *Client) SignOut(ctx context.Context) error {
	var err error
	if c.IsAuthenticated() {
		err = c.post(ctx, "/api/auth/logout", nil, nil)
	}
	c.setToken(ctx, nil)
	c.emit(nil)
	return err
}

// GetUser returns the signed-in user, or nil when there is no valid session.
func (c *Client) GetUser(ctx context.Context) (*model.User, error) {
	if !c.IsAuthenticated() {
		return nil, nil
	}

	var user model.User
	err := c.get(ctx, "/api/auth/user", &user)
	if errors.Is(err, ErrUnauthorized) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// OnAuthStateChange registers fn for sign-in, sign-out and session expiry.
func (c *Client) OnAuthStateChange(fn func(*model.User)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

func (c *Client) emit(u *model.User) {
	c.mu.Lock()
	fns := make([]func(*model.User), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}

func (c *Client) setToken(ctx context.Context, tok *oauth2.Token) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	if err := c.store.SetToken(tok); err != nil {
		c.log.Warn(ctx, "failed to persist session", "error", err)
	}
}

// expire drops a token the server no longer accepts.
func (c *Client) expire(ctx context.Context) {
	c.log.Info(ctx, "session expired")
	c.setToken(ctx, nil)
	c.emit(nil)
}

// HTTP helpers

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.doRequest(req, result)
}

func (c *Client) doRequest(req *http.Request, result interface{}) error {
	client := c.anon
	authed := c.IsAuthenticated()
	if authed {
		client = c.authed
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		serr := &StatusError{Code: resp.StatusCode}
		var errResp ErrorResponse
		if json.Unmarshal(body, &errResp) == nil {
			serr.Message = errResp.Error
		}
		if authed && resp.StatusCode == http.StatusUnauthorized {
			c.expire(req.Context())
		}
		return serr
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
