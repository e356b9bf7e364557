// Package navorder keeps the user's preferred ordering of the sidebar.
package navorder

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nzaccagnino/folio/internal/logging"
)

// Key is the preference key holding the JSON array of hrefs.
const Key = "nav-order"

type Entry struct {
	Name string
	Href string
}

var Canonical = []Entry{
	{Name: "Home", Href: "/"},
	{Name: "Notes", Href: "/notes"},
	{Name: "Projets", Href: "/projects"},
	{Name: "Investing", Href: "/investing"},
	{Name: "Services", Href: "/services"},
	{Name: "Systm.re", Href: "/business"},
	{Name: "Goal.re", Href: "/goal"},
	{Name: "Trail", Href: "/trail"},
	{Name: "Homelab", Href: "/homelab"},
}

// KV is the local durable store.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Reconcile orders canonical by stored: known hrefs first in stored order
// (unknown and repeated ones dropped), then the missing canonical entries in
// canonical order.
func Reconcile(canonical []Entry, stored []string) []Entry {
	byHref := make(map[string]Entry, len(canonical))
	for _, e := range canonical {
		byHref[e.Href] = e
	}

	out := make([]Entry, 0, len(canonical))
	placed := make(map[string]bool, len(canonical))
	for _, href := range stored {
		e, ok := byHref[href]
		if !ok || placed[href] {
			continue
		}
		out = append(out, e)
		placed[href] = true
	}
	for _, e := range canonical {
		if !placed[e.Href] {
			out = append(out, e)
		}
	}
	return out
}

// Move returns a copy of items with the element at from moved to index to.
func Move[T any](items []T, from, to int) []T {
	out := make([]T, len(items))
	copy(out, items)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}

	v := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]T{v}, out[to:]...)...)
	return out
}

func Hrefs(entries []Entry) []string {
	hrefs := make([]string, len(entries))
	for i, e := range entries {
		hrefs[i] = e.Href
	}
	return hrefs
}

type Store struct {
	kv        KV
	log       logging.Logger
	canonical []Entry

	writeMu sync.Mutex
	mu      sync.RWMutex
	order   []Entry
}

func NewStore(kv KV, log logging.Logger) *Store {
	return &Store{
		kv:        kv,
		log:       log,
		canonical: Canonical,
		order:     append([]Entry(nil), Canonical...),
	}
}

// Load reads the stored order. Anything but a JSON array of strings is
// deleted and the canonical order is used. Reorders wait for it.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	raw, ok, err := s.kv.Get(ctx, Key)
	if err != nil {
		return fmt.Errorf("failed to read nav order: %w", err)
	}
	if !ok {
		return nil
	}

	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || stored == nil {
		s.log.Warn(ctx, "discarding invalid nav order", "value", raw)
		if err := s.kv.Delete(ctx, Key); err != nil {
			return fmt.Errorf("failed to discard nav order: %w", err)
		}
		return nil
	}

	order := Reconcile(s.canonical, stored)
	s.mu.Lock()
	s.order = order
	s.mu.Unlock()
	return nil
}

// Order returns a copy of the active order.
func (s *Store) Order() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.order...)
}

// Reorder drops activeHref onto overHref's position. The active order only
// changes after the new order is persisted.
func (s *Store) Reorder(ctx context.Context, activeHref, overHref string) error {
	if activeHref == overHref {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	current := s.order
	s.mu.RUnlock()

	from, to := indexOf(current, activeHref), indexOf(current, overHref)
	if from < 0 || to < 0 {
		return nil
	}

	next := Move(current, from, to)
	data, err := json.Marshal(Hrefs(next))
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, Key, string(data)); err != nil {
		return fmt.Errorf("failed to save nav order: %w", err)
	}

	s.mu.Lock()
	s.order = next
	s.mu.Unlock()
	return nil
}

func indexOf(entries []Entry, href string) int {
	for i, e := range entries {
		if e.Href == href {
			return i
		}
	}
	return -1
}
