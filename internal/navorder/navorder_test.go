package navorder

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzaccagnino/folio/internal/db"
	"github.com/nzaccagnino/folio/internal/logging"
)

func entries(hrefs ...string) []Entry {
	out := make([]Entry, len(hrefs))
	for i, h := range hrefs {
		out[i] = Entry{Name: h, Href: h}
	}
	return out
}

func TestReconcile(t *testing.T) {
	canonical := entries("A", "B", "C", "D")

	got := Reconcile(canonical, []string{"C", "Z", "A"})
	assert.Equal(t, []string{"C", "A", "B", "D"}, Hrefs(got))

	assert.Equal(t, []string{"A", "B", "C", "D"}, Hrefs(Reconcile(canonical, nil)))
	assert.Equal(t, []string{"B", "A", "C", "D"}, Hrefs(Reconcile(canonical, []string{"B", "B", "A"})))
}

func TestMove(t *testing.T) {
	items := []string{"a", "b", "c", "d"}

	assert.Equal(t, []string{"b", "c", "a", "d"}, Move(items, 0, 2))
	assert.Equal(t, []string{"d", "a", "b", "c"}, Move(items, 3, 0))
	assert.Equal(t, items, Move(items, 1, 1))
	assert.Equal(t, items, Move(items, 1, 9))
	assert.Equal(t, []string{"a", "b", "c", "d"}, items, "input is not mutated")
}

type memKV struct {
	data   map[string]string
	setErr error
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestLoadInvalidShapesAreDiscarded(t *testing.T) {
	for _, raw := range []string{`{"a":1}`, `[1,2]`, `not json`, `null`, `["/", 3]`} {
		t.Run(raw, func(t *testing.T) {
			kv := newMemKV()
			kv.data[Key] = raw
			s := NewStore(kv, logging.Discard())

			require.NoError(t, s.Load(context.Background()))
			assert.Equal(t, Hrefs(Canonical), Hrefs(s.Order()))
			_, ok := kv.data[Key]
			assert.False(t, ok)
		})
	}
}

func TestLoadReconcilesStoredOrder(t *testing.T) {
	kv := newMemKV()
	kv.data[Key] = `["/trail","/gone","/notes"]`
	s := NewStore(kv, logging.Discard())

	require.NoError(t, s.Load(context.Background()))
	order := Hrefs(s.Order())
	assert.Equal(t, []string{"/trail", "/notes", "/"}, order[:3])
	assert.Len(t, order, len(Canonical))
}

func TestReorderPersists(t *testing.T) {
	kv := newMemKV()
	s := NewStore(kv, logging.Discard())
	ctx := context.Background()

	require.NoError(t, s.Reorder(ctx, "/homelab", "/"))
	order := Hrefs(s.Order())
	assert.Equal(t, "/homelab", order[0])
	assert.Equal(t, "/", order[1])
	assert.JSONEq(t, `["/homelab","/","/notes","/projects","/investing","/services","/business","/goal","/trail"]`, kv.data[Key])

	// Same or unknown targets are no-ops.
	before := kv.data[Key]
	require.NoError(t, s.Reorder(ctx, "/notes", "/notes"))
	require.NoError(t, s.Reorder(ctx, "/unknown", "/notes"))
	assert.Equal(t, before, kv.data[Key])
}

func TestReorderFailureKeepsOrder(t *testing.T) {
	kv := newMemKV()
	kv.setErr = errors.New("disk full")
	s := NewStore(kv, logging.Discard())

	err := s.Reorder(context.Background(), "/", "/homelab")
	assert.Error(t, err)
	assert.Equal(t, Hrefs(Canonical), Hrefs(s.Order()))
}

func TestStoreOverLocalDB(t *testing.T) {
	local, err := db.New(":memory:")
	require.NoError(t, err)
	defer local.Close()
	ctx := context.Background()

	s := NewStore(local, logging.Discard())
	require.NoError(t, s.Reorder(ctx, "/trail", "/notes"))

	reloaded := NewStore(local, logging.Discard())
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, Hrefs(s.Order()), Hrefs(reloaded.Order()))
}

// gatedKV holds Get until release is closed.
type gatedKV struct {
	mu      sync.Mutex
	inner   *memKV
	started chan struct{}
	release chan struct{}
}

func (g *gatedKV) Get(ctx context.Context, key string) (string, bool, error) {
	close(g.started)
	<-g.release
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.Get(ctx, key)
}

func (g *gatedKV) Set(ctx context.Context, key, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.Set(ctx, key, value)
}

func (g *gatedKV) Delete(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.Delete(ctx, key)
}

func TestReorderWaitsForLoad(t *testing.T) {
	inner := newMemKV()
	inner.data[Key] = `["/projects"]`
	kv := &gatedKV{inner: inner, started: make(chan struct{}), release: make(chan struct{})}
	s := NewStore(kv, logging.Discard())
	ctx := context.Background()

	loadErr := make(chan error, 1)
	go func() { loadErr <- s.Load(ctx) }()
	<-kv.started

	reorderErr := make(chan error, 1)
	go func() { reorderErr <- s.Reorder(ctx, "/", "/notes") }()

	select {
	case <-reorderErr:
		t.Fatal("reorder finished while load was still reading")
	case <-time.After(50 * time.Millisecond):
	}

	close(kv.release)
	require.NoError(t, <-loadErr)
	require.NoError(t, <-reorderErr)

	order := Hrefs(s.Order())
	assert.Equal(t, []string{"/projects", "/notes", "/"}, order[:3])

	kv.mu.Lock()
	persisted := inner.data[Key]
	kv.mu.Unlock()
	var stored []string
	require.NoError(t, json.Unmarshal([]byte(persisted), &stored))
	assert.Equal(t, order, stored)
}
