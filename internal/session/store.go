// Package session holds the reactive "who is signed in" value shared by every
// view of the client.
package session

import (
	"context"
	"sync"

	"github.com/nzaccagnino/folio/internal/logging"
	"github.com/nzaccagnino/folio/internal/model"
)

// Provider is the identity service behind the store.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*model.User, error)
	SignOut(ctx context.Context) error
	GetUser(ctx context.Context) (*model.User, error)
	OnAuthStateChange(fn func(*model.User)) (unsubscribe func())
}

type Store struct {
	provider Provider
	log      logging.Logger

	mu          sync.RWMutex
	user        *model.User
	resolved    bool
	changed     bool
	started     bool
	closed      bool
	ready       chan struct{}
	unsubscribe func()
	cancel      context.CancelFunc
	subs        map[int]func(*model.User)
	nextSub     int
}

func New(provider Provider, log logging.Logger) *Store {
	return &Store{
		provider: provider,
		log:      log,
		ready:    make(chan struct{}),
		subs:     make(map[int]func(*model.User)),
	}
}

// Start subscribes to identity changes and resolves the current identity in
// the background. Later calls do nothing.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	unsubscribe := s.provider.OnAuthStateChange(s.apply)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		unsubscribe()
		return
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	go func() {
		u, err := s.provider.GetUser(ctx)
		if err != nil {
			s.log.Warn(ctx, "identity check failed", "error", err)
			u = nil
		}
		s.resolve(u)
	}()
}

// resolve records the initial identity check unless a change notification
// already superseded it.
func (s *Store) resolve(u *model.User) {
	s.mu.Lock()
	if s.closed || s.changed {
		s.mu.Unlock()
		return
	}
	s.user = u
	s.markResolved()
	fns := s.snapshotSubs()
	s.mu.Unlock()

	notify(fns, u)
}

func (s *Store) apply(u *model.User) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.user = u
	s.changed = true
	s.markResolved()
	fns := s.snapshotSubs()
	s.mu.Unlock()

	notify(fns, u)
}

func (s *Store) markResolved() {
	if !s.resolved {
		s.resolved = true
		close(s.ready)
	}
}

func (s *Store) snapshotSubs() []func(*model.User) {
	fns := make([]func(*model.User), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func(*model.User), u *model.User) {
	for _, fn := range fns {
		fn(copyUser(u))
	}
}

func copyUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// SignIn returns the provider error unchanged; on success the current user
// changes through the subscription, not here.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	if _, err := s.provider.SignInWithPassword(ctx, email, password); err != nil {
		s.log.Info(ctx, "sign-in rejected", "error", err)
		return err
	}
	return nil
}

// SignOut is best-effort; failures are logged.
func (s *Store) SignOut(ctx context.Context) {
	if err := s.provider.SignOut(ctx); err != nil {
		s.log.Warn(ctx, "sign-out failed", "error", err)
	}
}

// Current is nil until the identity check resolves, then the signed-in user or nil.
func (s *Store) Current() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

func (s *Store) Authorized() bool {
	return s.Current() != nil
}

func (s *Store) Resolved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolved
}

// Ready is closed once the first identity value is known.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Subscribe calls fn with every identity change until cancel is called.
func (s *Store) Subscribe(fn func(*model.User)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Close releases the provider subscription and drops late results.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsubscribe, cancel := s.unsubscribe, s.cancel
	s.subs = make(map[int]func(*model.User))
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
}
