package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/nzaccagnino/folio/internal/i18n"
)

type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Open      key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	New       key.Binding
	Edit      key.Binding
	Delete    key.Binding
	Filter    key.Binding
	Search    key.Binding
	NextField key.Binding
	PrevField key.Binding
	CycleNext key.Binding
	CyclePrev key.Binding
	Save      key.Binding
	Escape    key.Binding
	Login     key.Binding
	Logout    key.Binding
	Reload    key.Binding
	Dismiss   key.Binding
	Quit      key.Binding
	Help      key.Binding
}

func NewKeyMap() KeyMap {
	t := i18n.T()
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", t.KeyUp),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", t.KeyDown),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", t.KeyOpen),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", t.KeyMoveUp),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", t.KeyMoveDown),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", t.KeyNew),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("Enter/e", t.KeyEdit),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", t.KeyDelete),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", t.KeyFilter),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", t.KeySearch),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("Tab", t.KeyNextField),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
		),
		CycleNext: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("←/→", t.KeyCycle),
		),
		CyclePrev: key.NewBinding(
			key.WithKeys("left"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("Ctrl+S", t.KeySave),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", t.KeyEscape),
		),
		Login: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", t.KeyLogin),
		),
		Logout: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", t.KeyLogout),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", t.KeyDismiss),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c"),
			key.WithHelp("Ctrl+Q", t.KeyQuit),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", t.KeyHelp),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Login, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.MoveUp, k.MoveDown},
		{k.New, k.Edit, k.Delete, k.Filter, k.Search},
		{k.NextField, k.CycleNext, k.Save, k.Escape},
		{k.Login, k.Logout, k.Dismiss, k.Help, k.Quit},
	}
}
