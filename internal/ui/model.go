package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nzaccagnino/folio/internal/api"
	"github.com/nzaccagnino/folio/internal/collection"
	"github.com/nzaccagnino/folio/internal/i18n"
	"github.com/nzaccagnino/folio/internal/logging"
	"github.com/nzaccagnino/folio/internal/model"
	"github.com/nzaccagnino/folio/internal/navorder"
	"github.com/nzaccagnino/folio/internal/notify"
	"github.com/nzaccagnino/folio/internal/session"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeLogin
)

type Focus int

const (
	FocusSidebar Focus = iota
	FocusPage
)

// Deps are the long-lived services the terminal client is built on.
type Deps struct {
	Client  *api.Client
	Session *session.Store
	Toasts  *notify.Queue
	Nav     *navorder.Store
	Log     logging.Logger
}

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	session *session.Store
	toasts  *notify.Queue
	nav     *navorder.Store
	log     logging.Logger

	pages       map[string]page
	sessionCh   chan *model.User
	unsubscribe func()

	user     *model.User
	navReady bool
	cursor   int
	active   string
	focus    Focus
	mode     Mode

	email     textinput.Model
	password  textinput.Model
	loginErr  string
	signingIn bool

	keys KeyMap
	help help.Model

	width  int
	height int
}

type navLoadedMsg struct{ err error }
type navSavedMsg struct {
	href string
	err  error
}
type toastsMsg struct{}
type sessionMsg struct{ user *model.User }
type loginResultMsg struct {
	email string
	err   error
}
type logoutMsg struct{}

func NewModel(deps Deps) Model {
	t := i18n.T()
	ctx, cancel := context.WithCancel(context.Background())

	email := textinput.New()
	email.Placeholder = t.Email
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = t.Password
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 256

	m := Model{
		ctx:       ctx,
		cancel:    cancel,
		session:   deps.Session,
		toasts:    deps.Toasts,
		nav:       deps.Nav,
		log:       deps.Log,
		sessionCh: make(chan *model.User, 1),
		user:      deps.Session.Current(),
		active:    "/",
		email:     email,
		password:  password,
		keys:      NewKeyMap(),
		help:      help.New(),
	}
	m.pages = buildPages(ctx, deps)

	ch := m.sessionCh
	m.unsubscribe = deps.Session.Subscribe(func(u *model.User) {
		// Keep only the latest identity.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
		}
	})

	return m
}

func buildPages(ctx context.Context, deps Deps) map[string]page {
	t := i18n.T()
	auth, toasts := deps.Session, deps.Toasts

	notes := collection.New[model.Note](
		api.NewTable[model.Note](deps.Client, model.TableNotes),
		model.NotePolicy, auth, toasts, messagesFor(t.Notes, t, t.FieldContent), deps.Log)
	projects := collection.New[model.Project](
		api.NewTable[model.Project](deps.Client, model.TableProjects),
		model.ProjectPolicy, auth, toasts, messagesFor(t.Projects, t, t.FieldName), deps.Log)
	services := collection.New[model.HomelabService](
		api.NewTable[model.HomelabService](deps.Client, model.TableHomelabServices),
		model.HomelabPolicy, auth, toasts, messagesFor(t.Services, t, t.FieldName), deps.Log)
	gear := collection.New[model.GearItem](
		api.NewTable[model.GearItem](deps.Client, model.TableTrailGear),
		model.GearPolicy, auth, toasts, messagesFor(t.Gear, t, t.FieldName), deps.Log)

	pages := map[string]page{
		"/notes":    newCollectionPage(ctx, "/notes", t.Notes, notes, noteFields(t), noteRow, toasts),
		"/projects": newCollectionPage(ctx, "/projects", t.Projects, projects, projectFields(t), projectRow, toasts),
		"/homelab":  newCollectionPage(ctx, "/homelab", t.Services, services, serviceFields(t), serviceRow, toasts),
		"/trail":    newCollectionPage(ctx, "/trail", t.Gear, gear, gearFields(t), gearRow, toasts),
	}
	for _, e := range navorder.Canonical {
		if _, ok := pages[e.Href]; ok {
			continue
		}
		if e.Href == "/" {
			pages[e.Href] = &staticPage{title: e.Name, body: t.HomeIntro}
			continue
		}
		pages[e.Href] = newStaticPage(e.Name)
	}
	return pages
}

func messagesFor(c i18n.Collection, t i18n.Messages, requiredLabel string) collection.Messages {
	required := strings.TrimSpace(strings.TrimSuffix(requiredLabel, "*"))
	return collection.Messages{
		LoadError:   c.LoadError,
		Required:    fmt.Sprintf(t.Required, required),
		CreateError: t.AddError,
		UpdateError: t.UpdateError,
		DeleteError: t.DeleteError,
		Created:     c.Created,
		Updated:     c.Updated,
		Deleted:     c.Deleted,
		Confirm:     c.Confirm,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadNav(),
		m.waitForToasts(),
		m.waitForSession(),
	)
}

// Close stops every controller and the background waits.
func (m Model) Close() {
	m.unsubscribe()
	for _, p := range m.pages {
		p.Close()
	}
	m.cancel()
}

func (m Model) loadNav() tea.Cmd {
	nav, ctx := m.nav, m.ctx
	return func() tea.Msg {
		return navLoadedMsg{err: nav.Load(ctx)}
	}
}

func (m Model) reorder(active, over string) tea.Cmd {
	nav, ctx := m.nav, m.ctx
	return func() tea.Msg {
		return navSavedMsg{href: active, err: nav.Reorder(ctx, active, over)}
	}
}

func (m Model) waitForToasts() tea.Cmd {
	changes, ctx := m.toasts.Changes(), m.ctx
	return func() tea.Msg {
		select {
		case <-changes:
			return toastsMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) waitForSession() tea.Cmd {
	ch, ctx := m.sessionCh, m.ctx
	return func() tea.Msg {
		select {
		case u := <-ch:
			return sessionMsg{user: u}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) signIn(email, password string) tea.Cmd {
	store, ctx := m.session, m.ctx
	return func() tea.Msg {
		return loginResultMsg{email: email, err: store.SignIn(ctx, email, password)}
	}
}

func (m Model) signOut() tea.Cmd {
	store, ctx := m.session, m.ctx
	return func() tea.Msg {
		store.SignOut(ctx)
		return logoutMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	t := i18n.T()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case navLoadedMsg:
		m.navReady = true
		if msg.err != nil {
			m.log.Warn(m.ctx, "nav order load failed", "error", msg.err)
		}
		return m, nil

	case navSavedMsg:
		if msg.err != nil {
			m.toasts.Enqueue(t.UpdateError, notify.Error)
		}
		for i, e := range m.nav.Order() {
			if e.Href == msg.href {
				m.cursor = i
			}
		}
		return m, nil

	case toastsMsg:
		return m, m.waitForToasts()

	case sessionMsg:
		m.user = msg.user
		return m, m.waitForSession()

	case loginResultMsg:
		m.signingIn = false
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthorized) {
				m.loginErr = t.InvalidCredentials
			} else {
				m.loginErr = t.SignInFailed
			}
			return m, nil
		}
		m.closeLogin()
		m.user = m.session.Current()
		m.toasts.Enqueue(fmt.Sprintf(t.SignedInAs, msg.email), notify.Success)
		return m, nil

	case logoutMsg:
		m.user = m.session.Current()
		m.toasts.Enqueue(t.SignedOut, notify.Default)
		return m, nil

	case pageOpMsg:
		if p, ok := m.pages[msg.href]; ok {
			return m, p.Update(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == ModeLogin {
			return m.handleLoginKeys(msg)
		}
		if m.focus == FocusPage {
			return m.handlePageKeys(msg)
		}
		return m.handleSidebarKeys(msg)
	}

	if m.mode == ModeLogin {
		var cmd tea.Cmd
		if m.password.Focused() {
			m.password, cmd = m.password.Update(msg)
		} else {
			m.email, cmd = m.email.Update(msg)
		}
		return m, cmd
	}
	if p, ok := m.pages[m.active]; ok && m.focus == FocusPage {
		return m, p.Update(msg)
	}
	return m, nil
}

// handleGlobalKeys covers the shortcuts available outside of text entry.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil, true

	case key.Matches(msg, m.keys.Login):
		if m.user != nil {
			return m, nil, true
		}
		cmd := m.openLogin()
		return m, cmd, true

	case key.Matches(msg, m.keys.Logout):
		if m.user == nil {
			return m, nil, true
		}
		return m, m.signOut(), true

	case key.Matches(msg, m.keys.Dismiss):
		m.dismissOldestToast()
		return m, nil, true
	}
	return m, nil, false
}

// dismissOldestToast hides the oldest toast that is not already leaving.
func (m Model) dismissOldestToast() {
	for _, toast := range m.toasts.Toasts() {
		if !toast.Leaving {
			m.toasts.Dismiss(toast.ID)
			return
		}
	}
}

func (m Model) handleSidebarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if next, cmd, ok := m.handleGlobalKeys(msg); ok {
		return next, cmd
	}

	order := m.nav.Order()
	switch {
	case key.Matches(msg, m.keys.MoveUp):
		// The stored order is not known before the first load.
		if !m.navReady {
			return m, nil
		}
		if m.cursor > 0 && m.cursor < len(order) {
			return m, m.reorder(order[m.cursor].Href, order[m.cursor-1].Href)
		}

	case key.Matches(msg, m.keys.MoveDown):
		if !m.navReady {
			return m, nil
		}
		if m.cursor < len(order)-1 {
			return m, m.reorder(order[m.cursor].Href, order[m.cursor+1].Href)
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(order)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Open):
		if m.cursor >= len(order) {
			return m, nil
		}
		m.active = order[m.cursor].Href
		m.focus = FocusPage
		if p, ok := m.pages[m.active]; ok {
			return m, p.Open()
		}
	}

	return m, nil
}

func (m Model) handlePageKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p, ok := m.pages[m.active]
	if !ok {
		m.focus = FocusSidebar
		return m, nil
	}

	if !p.Capturing() {
		if key.Matches(msg, m.keys.Escape) {
			m.focus = FocusSidebar
			return m, nil
		}
		if next, cmd, ok := m.handleGlobalKeys(msg); ok {
			return next, cmd
		}
	}
	return m, p.Update(msg)
}

func (m *Model) openLogin() tea.Cmd {
	m.mode = ModeLogin
	m.loginErr = ""
	m.email.SetValue("")
	m.password.SetValue("")
	m.password.Blur()
	return m.email.Focus()
}

func (m *Model) closeLogin() {
	m.mode = ModeNormal
	m.loginErr = ""
	m.password.SetValue("")
	m.email.Blur()
	m.password.Blur()
}

func (m Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := i18n.T()
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Escape):
		if !m.signingIn {
			m.closeLogin()
		}
		return m, nil

	case msg.Type == tea.KeyTab, msg.Type == tea.KeyShiftTab:
		if m.email.Focused() {
			m.email.Blur()
			cmd = m.password.Focus()
			return m, cmd
		}
		m.password.Blur()
		cmd = m.email.Focus()
		return m, cmd

	case msg.Type == tea.KeyEnter, key.Matches(msg, m.keys.Save):
		if m.signingIn {
			return m, nil
		}
		if m.email.Focused() && msg.Type == tea.KeyEnter {
			m.email.Blur()
			cmd = m.password.Focus()
			return m, cmd
		}
		email := strings.TrimSpace(m.email.Value())
		if email == "" || m.password.Value() == "" {
			m.loginErr = t.InvalidCredentials
			return m, nil
		}
		m.signingIn = true
		m.loginErr = ""
		return m, m.signIn(email, m.password.Value())
	}

	if m.signingIn {
		return m, nil
	}
	if m.password.Focused() {
		m.password, cmd = m.password.Update(msg)
	} else {
		m.email, cmd = m.email.Update(msg)
	}
	return m, cmd
}

func (m Model) sidebarWidth() int {
	return 22
}

func (m Model) contentHeight() int {
	return m.height - 6
}

func (m Model) View() string {
	t := i18n.T()

	if m.width == 0 {
		return t.Loading
	}

	if m.mode == ModeLogin {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderLoginDialog())
	}

	header := m.renderHeader()
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), m.renderPage())
	status := m.renderStatus()

	view := lipgloss.JoinVertical(lipgloss.Left, header, body, status)
	if toasts := m.renderToasts(); toasts != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, view,
			lipgloss.PlaceHorizontal(m.width, lipgloss.Right, toasts))
	}
	return view
}

func (m Model) renderHeader() string {
	t := i18n.T()

	right := MutedStyle.Render(t.ReadOnly)
	if m.user != nil {
		right = TagStyle.Render(fmt.Sprintf(t.SignedInAs, m.user.Email))
	}
	left := TitleStyle.Render("folio")

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 6
	if padding < 1 {
		padding = 1
	}
	return HeaderStyle.Width(m.width - 2).Render(left + strings.Repeat(" ", padding) + right)
}

func (m Model) renderSidebar() string {
	style := PanelStyle
	if m.focus == FocusSidebar {
		style = ActivePanelStyle
	}

	var items []string
	for i, e := range m.nav.Order() {
		name := e.Name
		if p, ok := m.pages[e.Href]; ok {
			name = p.Title()
		}
		line := truncate(name, m.sidebarWidth()-6)
		switch {
		case i == m.cursor && m.focus == FocusSidebar:
			line = SelectedListItemStyle.Width(m.sidebarWidth() - 4).Render(line)
		case e.Href == m.active:
			line = LabelStyle.Render(" " + line)
		default:
			line = ListItemStyle.Render(line)
		}
		items = append(items, line)
	}

	return style.Width(m.sidebarWidth() - 2).Height(m.contentHeight()).Render(strings.Join(items, "\n"))
}

func (m Model) renderPage() string {
	style := PanelStyle
	if m.focus == FocusPage {
		style = ActivePanelStyle
	}

	width := m.width - m.sidebarWidth() - 4
	p, ok := m.pages[m.active]
	if !ok {
		return style.Width(width).Height(m.contentHeight()).Render("")
	}
	return style.Width(width).Height(m.contentHeight()).Render(p.View(width-2, m.contentHeight()))
}

func (m Model) renderStatus() string {
	return StatusBarStyle.Render(m.help.View(m.keys))
}

func (m Model) renderToasts() string {
	toasts := m.toasts.Toasts()
	if len(toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(toasts))
	for _, toast := range toasts {
		rendered = append(rendered, toastStyleFor(toast).Render(toast.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

func (m Model) renderLoginDialog() string {
	t := i18n.T()

	rows := []string{
		TitleStyle.Render(t.SignIn),
		"",
		LabelStyle.Render(t.Email),
		m.email.View(),
		"",
		LabelStyle.Render(t.Password),
		m.password.View(),
		"",
	}
	if m.loginErr != "" {
		rows = append(rows, ErrorStyle.Render(m.loginErr), "")
	}
	if m.signingIn {
		rows = append(rows, MutedStyle.Render(t.SigningIn))
	} else {
		rows = append(rows, MutedStyle.Render("[Enter] "+t.SignInAction+"  [Esc] "+t.Cancel))
	}

	return DialogStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
