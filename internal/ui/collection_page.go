package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nzaccagnino/folio/internal/collection"
	"github.com/nzaccagnino/folio/internal/i18n"
	"github.com/nzaccagnino/folio/internal/model"
	"github.com/nzaccagnino/folio/internal/notify"
)

type pageMode int

const (
	pageBrowse pageMode = iota
	pageSearch
	pageForm
	pageConfirm
)

// collectionPage renders a collection.Controller: a filter bar, a search
// box, the list, the create/edit form and the delete prompt.
type collectionPage[T model.Entity] struct {
	ctx      context.Context
	href     string
	text     i18n.Collection
	ctrl     *collection.Controller[T]
	fields   []field[T]
	row      func(T) string
	notifier collection.Notifier
	keys     KeyMap

	mode   pageMode
	cursor int
	offset int
	search textinput.Model

	inputs []textinput.Model
	focus  int
	values T
	prompt string
}

func newCollectionPage[T model.Entity](ctx context.Context, href string, text i18n.Collection, ctrl *collection.Controller[T], fields []field[T], row func(T) string, notifier collection.Notifier) *collectionPage[T] {
	si := textinput.New()
	si.Placeholder = i18n.T().Search
	si.CharLimit = 128

	return &collectionPage[T]{
		ctx:      ctx,
		href:     href,
		text:     text,
		ctrl:     ctrl,
		fields:   fields,
		row:      row,
		notifier: notifier,
		keys:     NewKeyMap(),
		search:   si,
	}
}

func (p *collectionPage[T]) Title() string {
	return p.text.Title
}

func (p *collectionPage[T]) Capturing() bool {
	return p.mode != pageBrowse
}

func (p *collectionPage[T]) Close() {
	p.ctrl.Close()
}

func (p *collectionPage[T]) Open() tea.Cmd {
	return p.load()
}

func (p *collectionPage[T]) load() tea.Cmd {
	ctrl, href, ctx := p.ctrl, p.href, p.ctx
	return func() tea.Msg {
		return pageOpMsg{href: href, op: opLoad, err: ctrl.Load(ctx)}
	}
}

func (p *collectionPage[T]) submit() tea.Cmd {
	ctrl, href, ctx := p.ctrl, p.href, p.ctx
	return func() tea.Msg {
		return pageOpMsg{href: href, op: opSubmit, err: ctrl.Submit(ctx)}
	}
}

func (p *collectionPage[T]) delete(id string) tea.Cmd {
	ctrl, href, ctx := p.ctrl, p.href, p.ctx
	return func() tea.Msg {
		return pageOpMsg{href: href, op: opDelete, err: ctrl.Delete(ctx, id)}
	}
}

func (p *collectionPage[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case pageOpMsg:
		if msg.href != p.href {
			return nil
		}
		p.handleOp(msg)
		return nil

	case tea.KeyMsg:
		switch p.mode {
		case pageSearch:
			return p.handleSearchKeys(msg)
		case pageForm:
			return p.handleFormKeys(msg)
		case pageConfirm:
			return p.handleConfirmKeys(msg)
		}
		return p.handleBrowseKeys(msg)
	}

	if p.mode == pageSearch {
		var cmd tea.Cmd
		p.search, cmd = p.search.Update(msg)
		return cmd
	}
	if p.mode == pageForm && p.focus < len(p.inputs) {
		var cmd tea.Cmd
		p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
		return cmd
	}
	return nil
}

func (p *collectionPage[T]) handleOp(msg pageOpMsg) {
	t := i18n.T()

	switch msg.op {
	case opSubmit:
		if errors.Is(msg.err, collection.ErrNotAuthorized) {
			p.notifier.Enqueue(t.ReadOnly, notify.Error)
		}
		if !p.ctrl.Snapshot().Form.Open() {
			p.closeForm()
		}
	case opDelete:
		if errors.Is(msg.err, collection.ErrNotAuthorized) {
			p.notifier.Enqueue(t.ReadOnly, notify.Error)
		}
	}
	p.clampCursor(len(p.ctrl.Visible()))
}

func (p *collectionPage[T]) handleBrowseKeys(msg tea.KeyMsg) tea.Cmd {
	t := i18n.T()
	visible := p.ctrl.Visible()

	switch {
	case key.Matches(msg, p.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}

	case key.Matches(msg, p.keys.Down):
		if p.cursor < len(visible)-1 {
			p.cursor++
		}

	case key.Matches(msg, p.keys.Reload):
		return p.load()

	case key.Matches(msg, p.keys.Filter):
		cr := p.criteria()
		cr.Filter = nextFilter(p.ctrl.Policy().FilterValues, cr.Filter)
		p.ctrl.SetCriteria(cr)
		p.cursor, p.offset = 0, 0

	case key.Matches(msg, p.keys.Search):
		if !p.ctrl.Policy().Searchable() {
			return nil
		}
		p.mode = pageSearch
		return p.search.Focus()

	case key.Matches(msg, p.keys.New):
		if err := p.ctrl.OpenCreate(); err != nil {
			p.notifier.Enqueue(t.ReadOnly, notify.Error)
			return nil
		}
		return p.openForm()

	case key.Matches(msg, p.keys.Edit):
		if p.cursor >= len(visible) {
			return nil
		}
		if !p.ctrl.OpenEdit(visible[p.cursor]) {
			p.notifier.Enqueue(t.ReadOnly, notify.Error)
			return nil
		}
		return p.openForm()

	case key.Matches(msg, p.keys.Delete):
		if p.cursor >= len(visible) {
			return nil
		}
		prompt, err := p.ctrl.AskDelete(visible[p.cursor].GetID())
		if err != nil {
			p.notifier.Enqueue(t.ReadOnly, notify.Error)
			return nil
		}
		p.prompt = prompt
		p.mode = pageConfirm
	}

	return nil
}

func (p *collectionPage[T]) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, p.keys.Escape):
		p.mode = pageBrowse
		p.search.Blur()
		p.search.SetValue("")

	case msg.Type == tea.KeyEnter:
		p.mode = pageBrowse
		p.search.Blur()
		return nil

	default:
		p.search, cmd = p.search.Update(msg)
	}

	cr := p.criteria()
	cr.Search = p.search.Value()
	p.ctrl.SetCriteria(cr)
	p.cursor, p.offset = 0, 0
	return cmd
}

func (p *collectionPage[T]) handleConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		// The prompt closes now; the id is deleted in the background.
		id := p.ctrl.TakePendingDelete()
		p.mode = pageBrowse
		p.prompt = ""
		if id == "" {
			return nil
		}
		return p.delete(id)
	case "n", "N", "esc":
		p.ctrl.CancelDelete()
		p.mode = pageBrowse
		p.prompt = ""
	}
	return nil
}

func (p *collectionPage[T]) openForm() tea.Cmd {
	p.values = p.ctrl.Snapshot().Form.Values
	p.inputs = make([]textinput.Model, len(p.fields))
	for i, f := range p.fields {
		ti := textinput.New()
		ti.CharLimit = 2000
		ti.Placeholder = f.hint
		ti.SetValue(f.get(p.values))
		p.inputs[i] = ti
	}
	p.mode = pageForm
	p.focus = 0
	return p.focusField(0)
}

func (p *collectionPage[T]) closeForm() {
	p.mode = pageBrowse
	p.inputs = nil
	p.focus = 0
}

func (p *collectionPage[T]) focusField(i int) tea.Cmd {
	for j := range p.inputs {
		p.inputs[j].Blur()
	}
	p.focus = i
	if p.fields[i].enum() {
		return nil
	}
	return p.inputs[i].Focus()
}

func (p *collectionPage[T]) handleFormKeys(msg tea.KeyMsg) tea.Cmd {
	form := p.ctrl.Snapshot().Form
	if !form.Open() {
		p.closeForm()
		return nil
	}

	switch {
	case key.Matches(msg, p.keys.Escape):
		p.ctrl.CloseForm()
		p.closeForm()
		return nil

	case key.Matches(msg, p.keys.Save):
		if form.Submitting {
			return nil
		}
		p.ctrl.SetForm(p.values)
		return p.submit()
	}

	if form.Submitting {
		return nil
	}

	n := len(p.fields)
	f := p.fields[p.focus]
	switch {
	case key.Matches(msg, p.keys.NextField):
		return p.focusField((p.focus + 1) % n)

	case key.Matches(msg, p.keys.PrevField):
		return p.focusField((p.focus - 1 + n) % n)

	case f.enum() && key.Matches(msg, p.keys.CycleNext):
		p.setValue(f.cycle(f.get(p.values), 1))

	case f.enum() && key.Matches(msg, p.keys.CyclePrev):
		p.setValue(f.cycle(f.get(p.values), -1))

	case msg.Type == tea.KeyEnter:
		return p.focusField((p.focus + 1) % n)

	case !f.enum():
		var cmd tea.Cmd
		p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
		p.setValue(p.inputs[p.focus].Value())
		return cmd
	}

	return nil
}

func (p *collectionPage[T]) setValue(v string) {
	p.values = p.fields[p.focus].set(p.values, v)
	p.ctrl.SetForm(p.values)
}

func (p *collectionPage[T]) criteria() collection.Criteria {
	return p.ctrl.Snapshot().Criteria
}

func (p *collectionPage[T]) clampCursor(n int) {
	if p.cursor >= n {
		p.cursor = max(n-1, 0)
	}
	if p.offset > p.cursor {
		p.offset = p.cursor
	}
}

// nextFilter steps through All followed by every enum value.
func nextFilter(values []string, current string) string {
	if current == "" || current == model.All {
		if len(values) == 0 {
			return model.All
		}
		return values[0]
	}
	for i, v := range values {
		if v == current && i+1 < len(values) {
			return values[i+1]
		}
	}
	return model.All
}

func (p *collectionPage[T]) View(width, height int) string {
	t := i18n.T()
	st := p.ctrl.Snapshot()

	var b strings.Builder
	b.WriteString(TitleStyle.Render(p.text.Title))
	if st.Authorized {
		b.WriteString("  " + MutedStyle.Render(p.writeHints()))
	} else {
		b.WriteString("  " + MutedStyle.Render(t.ReadOnly))
	}
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render(p.text.Subtitle))
	b.WriteString("\n\n")
	b.WriteString(p.renderFilterBar(st))
	b.WriteString("\n")
	if p.mode == pageSearch || st.Criteria.Search != "" {
		b.WriteString(LabelStyle.Render("/ ") + p.search.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	header := b.String()
	listHeight := height - lipgloss.Height(header)

	var body string
	switch p.mode {
	case pageForm:
		body = p.renderForm(st.Form, width)
	case pageConfirm:
		body = DialogStyle.Render(lipgloss.JoinVertical(
			lipgloss.Center,
			TitleStyle.Render(p.prompt),
			"",
			MutedStyle.Render("[Y] "+t.Yes+"  [N] "+t.No),
		))
	default:
		body = p.renderList(st, width, listHeight)
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(header + body)
}

// writeHints lists the write shortcuts; only shown to a signed-in owner.
func (p *collectionPage[T]) writeHints() string {
	hints := make([]string, 0, 3)
	for _, b := range []key.Binding{p.keys.New, p.keys.Edit, p.keys.Delete} {
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	return strings.Join(hints, " · ")
}

func (p *collectionPage[T]) renderFilterBar(st collection.State[T]) string {
	values := p.ctrl.Policy().FilterValues
	current := st.Criteria.Filter
	if current == "" {
		current = model.All
	}

	tags := make([]string, 0, len(values)+1)
	style := TagStyle
	if current == model.All {
		style = ActiveTagStyle
	}
	tags = append(tags, style.Render(fmt.Sprintf("%s %d", model.All, len(st.Items))))
	for _, v := range values {
		style := TagStyle
		if v == current {
			style = ActiveTagStyle
		}
		tags = append(tags, style.Render(fmt.Sprintf("%s %d", v, st.Counts[v])))
	}
	return strings.Join(tags, " ")
}

func (p *collectionPage[T]) renderList(st collection.State[T], width, height int) string {
	t := i18n.T()

	switch st.Phase {
	case collection.Loading:
		if len(st.Items) == 0 {
			return MutedStyle.Render(t.Loading)
		}
	case collection.LoadFailed:
		return ErrorStyle.Render(st.LoadError)
	}

	if len(st.Visible) == 0 {
		return MutedStyle.Render(p.text.EmptyState(st.Criteria.Filter, model.All, st.Criteria.Search))
	}

	if height < 1 {
		height = 1
	}
	p.clampCursor(len(st.Visible))
	if p.cursor >= p.offset+height {
		p.offset = p.cursor - height + 1
	}

	lines := make([]string, 0, height)
	for i := p.offset; i < len(st.Visible) && i < p.offset+height; i++ {
		v := st.Visible[i]
		line := truncate(p.row(v), width-4)
		switch {
		case st.Deleting[v.GetID()]:
			line = DeletingListItemStyle.Render(line)
		case i == p.cursor:
			line = SelectedListItemStyle.Width(width - 2).Render(line)
		default:
			line = ListItemStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (p *collectionPage[T]) renderForm(form collection.Form[T], width int) string {
	t := i18n.T()

	title := p.text.New
	if form.Mode == collection.FormEdit {
		title = p.text.Edit
	}

	rows := []string{TitleStyle.Render(title), ""}
	for i, f := range p.fields {
		label := f.label
		if i == p.focus {
			label = LabelStyle.Render("› " + label)
		} else {
			label = MutedStyle.Render("  " + label)
		}
		rows = append(rows, label)

		if f.enum() {
			v := "‹ " + f.get(p.values) + " ›"
			if i == p.focus {
				v = ActiveTagStyle.Render(v)
			} else {
				v = TagStyle.Render(v)
			}
			rows = append(rows, "  "+v, "")
			continue
		}
		if i < len(p.inputs) {
			rows = append(rows, "  "+p.inputs[i].View(), "")
		}
	}

	if form.Error != "" {
		rows = append(rows, ErrorStyle.Render(form.Error))
	}
	if form.Submitting {
		rows = append(rows, MutedStyle.Render(t.Saving))
	} else {
		rows = append(rows, MutedStyle.Render("[Ctrl+S] "+t.Save+"  [Esc] "+t.Cancel))
	}

	return DialogStyle.Width(min(width-2, 70)).Render(strings.Join(rows, "\n"))
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) > n-1 {
		r = r[:max(n-1, 0)]
	}
	return string(r) + "…"
}
