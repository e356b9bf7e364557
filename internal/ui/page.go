package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nzaccagnino/folio/internal/i18n"
)

// page is one screen reachable from the sidebar.
type page interface {
	Title() string
	// Open is called each time the page is shown.
	Open() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
	// Capturing reports whether the page wants every key (form, search,
	// prompt), including Esc and the global shortcuts.
	Capturing() bool
	Close()
}

// pageOpMsg is the result of a blocking controller call.
type pageOpMsg struct {
	href string
	op   string
	err  error
}

const (
	opLoad   = "load"
	opSubmit = "submit"
	opDelete = "delete"
)

// staticPage stands in for pages that only exist on the web site.
type staticPage struct {
	title string
	body  string
}

func (p *staticPage) Title() string          { return p.title }
func (p *staticPage) Open() tea.Cmd          { return nil }
func (p *staticPage) Update(tea.Msg) tea.Cmd { return nil }
func (p *staticPage) Capturing() bool        { return false }
func (p *staticPage) Close()                 {}

func (p *staticPage) View(width, height int) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(p.title))
	b.WriteString("\n\n")
	b.WriteString(MutedStyle.Width(width).Render(p.body))
	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}

func newStaticPage(title string) *staticPage {
	return &staticPage{title: title, body: i18n.T().StaticPlaceholder}
}
