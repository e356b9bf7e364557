package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzaccagnino/folio/internal/collection"
	"github.com/nzaccagnino/folio/internal/db"
	"github.com/nzaccagnino/folio/internal/i18n"
	"github.com/nzaccagnino/folio/internal/logging"
	"github.com/nzaccagnino/folio/internal/model"
	"github.com/nzaccagnino/folio/internal/navorder"
	"github.com/nzaccagnino/folio/internal/notify"
)

type memGateway struct {
	mu    sync.Mutex
	rows  []model.GearItem
	calls []string
	next  int
}

func (g *memGateway) List(ctx context.Context) ([]model.GearItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "list")
	return append([]model.GearItem(nil), g.rows...), nil
}

func (g *memGateway) Insert(ctx context.Context, fields model.GearItem) (model.GearItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "insert")
	g.next++
	fields.ID = "new-" + string(rune('0'+g.next))
	fields.CreatedAt = time.Now()
	g.rows = append([]model.GearItem{fields}, g.rows...)
	return fields, nil
}

func (g *memGateway) Update(ctx context.Context, id string, fields model.GearItem) (model.GearItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "update:"+id)
	fields.ID = id
	return fields, nil
}

func (g *memGateway) Delete(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "delete:"+id)
	return nil
}

type staticAuth bool

func (a staticAuth) Authorized() bool { return bool(a) }

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Enqueue(msg string, v notify.Variant) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return uint64(len(n.messages))
}

func newGearPage(t *testing.T, gw *memGateway, authorized bool) (*collectionPage[model.GearItem], *recordingNotifier) {
	t.Helper()
	msgs := i18n.T()
	notifier := &recordingNotifier{}
	ctrl := collection.New[model.GearItem](gw, model.GearPolicy, staticAuth(authorized), notifier,
		messagesFor(msgs.Gear, msgs, msgs.FieldName), logging.Discard())
	t.Cleanup(ctrl.Close)
	return newCollectionPage(context.Background(), "/trail", msgs.Gear, ctrl, gearFields(msgs), gearRow, notifier), notifier
}

// run executes cmd and feeds its message back, like the program loop would.
func run(p page, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(p, c)
		}
		return
	}
	if msg != nil {
		run(p, p.Update(msg))
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(p page, s string) {
	for _, r := range s {
		p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestCollectionPageCreateFlow(t *testing.T) {
	gw := &memGateway{}
	p, notifier := newGearPage(t, gw, true)

	run(p, p.Open())
	assert.Equal(t, collection.Loaded, p.ctrl.Snapshot().Phase)

	p.Update(keyRunes("n"))
	require.Equal(t, pageForm, p.mode)
	assert.True(t, p.Capturing())

	typeText(p, "Speedgoat 5")
	p.Update(tea.KeyMsg{Type: tea.KeyTab}) // brand
	p.Update(tea.KeyMsg{Type: tea.KeyTab}) // category
	p.Update(tea.KeyMsg{Type: tea.KeyRight})

	run(p, p.Update(tea.KeyMsg{Type: tea.KeyCtrlS}))

	assert.Equal(t, pageBrowse, p.mode)
	items := p.ctrl.Snapshot().Items
	require.Len(t, items, 1)
	assert.Equal(t, "Speedgoat 5", items[0].Name)
	assert.Equal(t, model.GearShoes, items[0].Category)
	assert.Equal(t, []string{i18n.T().Gear.Created}, notifier.messages)
}

func TestCollectionPageRequiredFieldKeepsFormOpen(t *testing.T) {
	gw := &memGateway{}
	p, _ := newGearPage(t, gw, true)
	run(p, p.Open())

	p.Update(keyRunes("n"))
	run(p, p.Update(tea.KeyMsg{Type: tea.KeyCtrlS}))

	st := p.ctrl.Snapshot()
	assert.Equal(t, pageForm, p.mode)
	assert.True(t, st.Form.Open())
	assert.NotEmpty(t, st.Form.Error)
	assert.NotContains(t, gw.calls, "insert")
}

func TestCollectionPageSignedOutCannotOpenForm(t *testing.T) {
	gw := &memGateway{rows: []model.GearItem{{ID: "g1", Name: "Vest", Category: model.GearHydration, Status: model.GearActive}}}
	p, notifier := newGearPage(t, gw, false)
	run(p, p.Open())

	p.Update(keyRunes("n"))
	p.Update(keyRunes("e"))
	p.Update(keyRunes("d"))

	assert.Equal(t, pageBrowse, p.mode)
	assert.Len(t, notifier.messages, 3)
	assert.Equal(t, []string{"list"}, gw.calls)
}

func TestCollectionPageDeleteConfirm(t *testing.T) {
	gw := &memGateway{rows: []model.GearItem{
		{ID: "g1", Name: "Vest", Category: model.GearHydration, Status: model.GearActive},
		{ID: "g2", Name: "Poles", Category: model.GearAccessories, Status: model.GearBackup},
	}}
	p, _ := newGearPage(t, gw, true)
	run(p, p.Open())

	p.Update(keyRunes("j"))
	p.Update(keyRunes("d"))
	require.Equal(t, pageConfirm, p.mode)
	assert.Equal(t, "g2", p.ctrl.Snapshot().PendingDelete)

	run(p, p.Update(keyRunes("n")))
	assert.Equal(t, pageBrowse, p.mode)
	assert.Empty(t, p.ctrl.Snapshot().PendingDelete)
	assert.NotContains(t, gw.calls, "delete:g2")

	p.Update(keyRunes("d"))
	run(p, p.Update(keyRunes("y")))

	assert.Empty(t, p.ctrl.Snapshot().PendingDelete)
	assert.Contains(t, gw.calls, "delete:g2")
	items := p.ctrl.Snapshot().Items
	require.Len(t, items, 1)
	assert.Equal(t, "g1", items[0].ID)
	assert.Equal(t, 0, p.cursor)
}

func TestCollectionPageFilterAndSearch(t *testing.T) {
	gw := &memGateway{rows: []model.GearItem{
		{ID: "g1", Name: "Vest", Brand: "Salomon", Category: model.GearHydration, Status: model.GearActive},
		{ID: "g2", Name: "Speedgoat", Brand: "Hoka", Category: model.GearShoes, Status: model.GearActive},
	}}
	p, _ := newGearPage(t, gw, false)
	run(p, p.Open())

	p.Update(keyRunes("f"))
	assert.Equal(t, string(model.GearShoes), p.ctrl.Snapshot().Criteria.Filter)
	require.Len(t, p.ctrl.Visible(), 1)

	p.Update(keyRunes("f"))
	p.Update(keyRunes("f"))
	p.Update(keyRunes("f"))
	p.Update(keyRunes("f"))
	p.Update(keyRunes("f"))
	p.Update(keyRunes("f"))
	assert.Equal(t, model.All, p.ctrl.Snapshot().Criteria.Filter)

	p.Update(keyRunes("/"))
	require.Equal(t, pageSearch, p.mode)
	typeText(p, "salo")
	visible := p.ctrl.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "g1", visible[0].ID)

	p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, pageBrowse, p.mode)
	assert.Len(t, p.ctrl.Visible(), 2)
}

func TestNextFilterCycles(t *testing.T) {
	values := []string{"a", "b"}
	assert.Equal(t, "a", nextFilter(values, ""))
	assert.Equal(t, "b", nextFilter(values, "a"))
	assert.Equal(t, model.All, nextFilter(values, "b"))
	assert.Equal(t, "a", nextFilter(values, model.All))
	assert.Equal(t, model.All, nextFilter(nil, ""))
}

func TestFieldCycleWraps(t *testing.T) {
	f := field[model.GearItem]{options: []string{"x", "y", "z"}}
	assert.Equal(t, "y", f.cycle("x", 1))
	assert.Equal(t, "z", f.cycle("x", -1))
	assert.Equal(t, "x", f.cycle("z", 1))
	assert.Equal(t, "y", f.cycle("unknown", 1))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "", truncate("abc", 0))
}

func TestMessagesForStripsRequiredMarker(t *testing.T) {
	i18n.SetLanguage(i18n.English)
	defer i18n.SetLanguage(i18n.French)

	msgs := i18n.T()
	m := messagesFor(msgs.Notes, msgs, msgs.FieldContent)
	assert.Equal(t, "The “Content” field is required.", m.Required)
	assert.Equal(t, msgs.Notes.Confirm, m.Confirm)
}

func newShell(t *testing.T, toasts *notify.Queue, nav *navorder.Store) Model {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return Model{
		ctx:    ctx,
		cancel: cancel,
		toasts: toasts,
		nav:    nav,
		log:    logging.Discard(),
		pages:  map[string]page{},
		active: "/",
		keys:   NewKeyMap(),
		help:   help.New(),
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestDismissKeyHidesOldestToast(t *testing.T) {
	q := notify.New()
	t.Cleanup(q.Close)
	first := q.Enqueue("first", notify.Default)
	second := q.Enqueue("second", notify.Error)
	m := newShell(t, q, nil)

	m, _ = update(t, m, keyRunes("x"))
	toasts := q.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, first, toasts[0].ID)
	assert.True(t, toasts[0].Leaving)
	assert.False(t, toasts[1].Leaving)

	update(t, m, keyRunes("x"))
	for _, toast := range q.Toasts() {
		if toast.ID == second {
			assert.True(t, toast.Leaving)
		}
	}
}

func TestSidebarReorderWaitsForStoredOrder(t *testing.T) {
	local, err := db.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })
	nav := navorder.NewStore(local, logging.Discard())

	m := newShell(t, nil, nav)
	m.cursor = 1

	m, cmd := update(t, m, keyRunes("K"))
	assert.Nil(t, cmd)
	assert.Equal(t, navorder.Hrefs(navorder.Canonical), navorder.Hrefs(nav.Order()))

	m, _ = update(t, m, m.loadNav()())
	m, cmd = update(t, m, keyRunes("K"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Equal(t, []string{"/notes", "/"}, navorder.Hrefs(nav.Order())[:2])
	assert.Equal(t, 0, m.cursor)
}
